package table

import (
	"fmt"
	"strings"

	"expopanel/internal/shared/constants"
)

// Column is one table column. Accessor names the cell shown under Header.
type Column struct {
	Header   string `json:"header" yaml:"header"`
	Accessor string `json:"accessor" yaml:"accessor"`
}

// Row is the display projection of a record. Cells hold pre-formatted
// values keyed by accessor; Raw keeps the record it was built from so edits
// never start from display text.
type Row[T any] struct {
	ID    int64
	Cells map[string]any
	Raw   T
}

// Cell returns the value under accessor, or the empty placeholder.
func (r Row[T]) Cell(accessor string) any {
	v, ok := r.Cells[accessor]
	if !ok || v == nil {
		return constants.EmptyCell
	}
	return v
}

// Text is the stringified cell used for filtering and rendering.
func (r Row[T]) Text(accessor string) string {
	return fmt.Sprint(r.Cell(accessor))
}

// Mode decides how row actions are revealed. It is fixed per table.
type Mode int

const (
	ModeHover Mode = iota
	ModeTouch
)

func (m Mode) String() string {
	if m == ModeTouch {
		return "touch"
	}
	return "hover"
}

// ParseMode maps "touch" to ModeTouch and anything else to ModeHover.
func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), "touch") {
		return ModeTouch
	}
	return ModeHover
}

// Metrics estimate how many rows fit a viewport.
type Metrics struct {
	RowHeight    int
	ChromeHeight int
	MinRows      int
}

// DefaultMetrics are pixel estimates for a browser-sized viewport.
var DefaultMetrics = Metrics{RowHeight: 40, ChromeHeight: 180, MinRows: 5}

// DefaultRowsPerPage applies until the first Resize.
const DefaultRowsPerPage = 20
