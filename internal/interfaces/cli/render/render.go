// Package render writes table pages and records as text, YAML or JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"expopanel/internal/application/table"
)

type Format string

const (
	FormatTable Format = "table"
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
)

// ParseFormat accepts table, yaml and json. Empty means table.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// Page writes the rows of view. The table format adds the page indicator.
func Page[T any](w io.Writer, f Format, columns []table.Column, view table.PageView[T]) error {
	switch f {
	case FormatYAML, FormatJSON:
		return encode(w, f, records(columns, view.Rows))
	}

	if err := writeTable(w, columns, view.Rows); err != nil {
		return err
	}
	if view.Matches == 0 {
		_, err := fmt.Fprintln(w, "No records.")
		return err
	}
	_, err := fmt.Fprintf(w, "\nPage %s (%d records)\n", view.Indicator, view.Matches)
	return err
}

// Rows writes rows without paging, e.g. the result of a save.
func Rows[T any](w io.Writer, f Format, columns []table.Column, rows []table.Row[T]) error {
	switch f {
	case FormatYAML, FormatJSON:
		return encode(w, f, records(columns, rows))
	}
	return writeTable(w, columns, rows)
}

// Value encodes v as YAML or JSON. The table format falls back to YAML,
// which reads well for a single object.
func Value(w io.Writer, f Format, v any) error {
	if f == FormatJSON {
		return encode(w, FormatJSON, v)
	}
	return encode(w, FormatYAML, v)
}

func writeTable[T any](w io.Writer, columns []table.Column, rows []table.Row[T]) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c.Header)
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, r := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = singleLine(r.Text(c.Accessor))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func records[T any](columns []table.Column, rows []table.Row[T]) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		rec := make(map[string]any, len(columns))
		for _, c := range columns {
			rec[c.Accessor] = r.Cells[c.Accessor]
		}
		out = append(out, rec)
	}
	return out
}

func encode(w io.Writer, f Format, v any) error {
	if f == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
