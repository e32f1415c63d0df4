package app

import (
	"io"
	"os"

	"golang.org/x/term"

	"expopanel/internal/application/table"
)

// NewTable builds a table sized to the terminal behind out. perPage > 0
// overrides the terminal estimate; output that is not a terminal keeps the
// default page size.
func NewTable[T any](a *App, columns []table.Column, out io.Writer, perPage int) *table.Table[T] {
	cfg := a.Config.Table
	tbl := table.New[T](columns,
		table.WithMode(table.ParseMode(cfg.Mode)),
		table.WithMetrics(table.Metrics{
			RowHeight:    cfg.RowHeight,
			ChromeHeight: cfg.ChromeHeight,
			MinRows:      cfg.MinRows,
		}),
	)

	switch {
	case perPage > 0:
		tbl.SetRowsPerPage(perPage)
	default:
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if _, height, err := term.GetSize(int(f.Fd())); err == nil {
				tbl.Resize(height)
			}
		}
	}
	return tbl
}
