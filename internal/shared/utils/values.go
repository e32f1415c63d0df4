package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ID is a record identifier. The backend sends ids as numbers or numeric
// strings; both decode to the same value so equality checks never miss.
type ID int64

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		n, ok := ParseID(s)
		if !ok && strings.TrimSpace(s) != "" {
			return fmt.Errorf("invalid id %q", s)
		}
		*id = ID(n)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = ID(int64(f))
	return nil
}

func (id ID) Int64() int64 {
	return int64(id)
}

func (id ID) IsZero() bool {
	return id == 0
}

func (id ID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseID parses a numeric identifier from user or backend input.
func ParseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == float64(int64(f)) {
		return int64(f), true
	}
	return 0, false
}

var truthy = regexp.MustCompile(`(?i)^(true|1|sí|si)$`)

// Flag is a boolean that the backend encodes as 0/1, "0"/"1" or true/false.
// It always encodes back as 0 or 1.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = false
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flag(ParseFlag(s))
	default:
		*f = Flag(ParseFlag(string(data)))
	}
	return nil
}

func (f Flag) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(f.Int())), nil
}

func (f Flag) Int() int {
	if f {
		return 1
	}
	return 0
}

// YesNo renders the flag for table cells.
func (f Flag) YesNo() string {
	if f {
		return "Sí"
	}
	return "No"
}

// ParseFlag interprets the boolean spellings accepted by the backend.
func ParseFlag(s string) bool {
	return truthy.MatchString(strings.TrimSpace(s))
}
