package gateway

import (
	"bytes"
	"encoding/json"

	"expopanel/internal/shared/errors"
)

// List is a decoded list response.
type List[T any] struct {
	Items []T
	Total int
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Row   json.RawMessage `json:"row"`
	Total json.RawMessage `json:"total"`
	Count json.RawMessage `json:"count"`
}

// DecodeList accepts a bare JSON array or an object {data, total?, count?}.
// Any other shape yields an empty list. Total falls back from total to count
// to the number of items, skipping zero and non-numeric values.
func DecodeList[T any](raw json.RawMessage) (List[T], error) {
	raw = bytes.TrimSpace(raw)

	var items json.RawMessage
	var env envelope
	switch {
	case isArray(raw):
		items = raw
	case isObject(raw):
		if err := json.Unmarshal(raw, &env); err != nil {
			return List[T]{}, nil
		}
		if isArray(bytes.TrimSpace(env.Data)) {
			items = env.Data
		}
	}

	if items == nil {
		return List[T]{Items: []T{}}, nil
	}

	var list []T
	if err := json.Unmarshal(items, &list); err != nil {
		return List[T]{}, errors.NewDecodeError("decode list items", err)
	}

	total := positiveNumber(env.Total)
	if total == 0 {
		total = positiveNumber(env.Count)
	}
	if total == 0 {
		total = len(list)
	}
	return List[T]{Items: list, Total: total}, nil
}

// DecodeRecord extracts the saved record from a mutation response, looking
// at "row", then "data". When neither holds an object, fallback is returned.
func DecodeRecord[T any](raw json.RawMessage, fallback T) T {
	raw = bytes.TrimSpace(raw)
	if !isObject(raw) {
		return fallback
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fallback
	}
	for _, candidate := range []json.RawMessage{env.Row, env.Data} {
		candidate = bytes.TrimSpace(candidate)
		if !isObject(candidate) {
			continue
		}
		var rec T
		if err := json.Unmarshal(candidate, &rec); err == nil {
			return rec
		}
	}
	return fallback
}

func isArray(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '['
}

func isObject(raw json.RawMessage) bool {
	return len(raw) > 0 && raw[0] == '{'
}

func positiveNumber(raw json.RawMessage) int {
	var n float64
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil || n <= 0 {
		return 0
	}
	return int(n)
}
