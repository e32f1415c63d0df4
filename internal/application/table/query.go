package table

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Filter keeps rows where at least one column's text contains query,
// compared case-insensitively. A blank query keeps every row. The result
// shares no backing array with rows.
func Filter[T any](rows []Row[T], columns []Column, query string) []Row[T] {
	query = strings.TrimSpace(query)
	if query == "" {
		return slices.Clone(rows)
	}
	// a Caser is stateful, so each call gets its own
	folder := cases.Fold()
	needle := folder.String(query)

	out := make([]Row[T], 0, len(rows))
	for _, row := range rows {
		for _, col := range columns {
			if strings.Contains(folder.String(row.Text(col.Accessor)), needle) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Sort orders a copy of rows by one column. Numeric cells compare
// numerically, everything else compares as text. Equal rows keep their
// relative order in both directions.
func Sort[T any](rows []Row[T], accessor string, ascending bool) []Row[T] {
	out := slices.Clone(rows)
	if accessor == "" {
		return out
	}
	slices.SortStableFunc(out, func(a, b Row[T]) int {
		c := compareCells(a.Cell(accessor), b.Cell(accessor))
		if !ascending {
			return -c
		}
		return c
	})
	return out
}

func compareCells(a, b any) int {
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if aok && bok {
		return cmp.Compare(an, bn)
	}
	return cmp.Compare(textOf(a), textOf(b))
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// TotalPages is ceil(n / perPage), and 0 for no rows.
func TotalPages(n, perPage int) int {
	if n <= 0 {
		return 0
	}
	if perPage < 1 {
		perPage = 1
	}
	return (n + perPage - 1) / perPage
}

// ClampPage forces page into [0, max(0, totalPages-1)].
func ClampPage(page, totalPages int) int {
	return max(0, min(page, totalPages-1))
}

// RowsForViewport is the number of rows that fit height, never fewer than
// m.MinRows.
func RowsForViewport(height int, m Metrics) int {
	minRows := max(1, m.MinRows)
	if m.RowHeight <= 0 {
		return minRows
	}
	return max(minRows, (height-m.ChromeHeight)/m.RowHeight)
}
