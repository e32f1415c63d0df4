package records

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"expopanel/internal/application/entity"
	"expopanel/internal/application/table"
	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/errors"
)

// parseAssignments turns repeated key=value flags into form values. Later
// assignments win.
func parseAssignments(sets []string) (entity.Values, error) {
	values := make(entity.Values, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid assignment %q", s), "expected key=value")
		}
		values[key] = value
	}
	return values, nil
}

// checkValues rejects unknown field names and choice values that are not
// among the loaded options.
func checkValues[T any](form *entity.Form[T], values entity.Values) error {
	fields := form.Fields()
	for key, value := range values {
		idx := slices.IndexFunc(fields, func(f entity.Field) bool { return f.Name == key })
		if idx < 0 {
			if key == constants.IDField {
				return errors.NewValidationError("the id cannot be set", "pass it as the command argument")
			}
			return errors.NewValidationError(fmt.Sprintf("unknown field %q", key))
		}
		f := fields[idx]
		if f.Kind != entity.KindChoice {
			continue
		}
		choices := form.Options(f.Options)
		if len(choices) == 0 {
			continue
		}
		if !slices.ContainsFunc(choices, func(c entity.Choice) bool { return c.Value == value }) {
			return errors.NewValidationError(fmt.Sprintf("%s: unknown option %q", f.Name, value))
		}
	}
	return nil
}

// readUpload loads the file named by path. An empty path means no file.
func readUpload(path string) (*entity.Upload, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return &entity.Upload{Filename: filepath.Base(path), Content: content}, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError(fmt.Sprintf("invalid id %q", arg))
	}
	return id, nil
}

// resolveColumn maps a header or accessor to the column accessor.
func resolveColumn(columns []table.Column, name string) (string, error) {
	for _, c := range columns {
		if strings.EqualFold(c.Accessor, name) || strings.EqualFold(c.Header, name) {
			return c.Accessor, nil
		}
	}
	names := make([]string, 0, len(columns))
	for _, c := range columns {
		names = append(names, c.Accessor)
	}
	return "", errors.NewValidationError(fmt.Sprintf("unknown column %q", name), "one of "+strings.Join(names, ", "))
}

// confirm asks a yes/no question. Anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
