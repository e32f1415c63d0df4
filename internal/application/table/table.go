// Package table is the generic data table: client-side search, single
// column sort, pagination sized to the viewport and per-row actions. It
// holds no business logic; row actions are delegated to callbacks.
package table

import (
	"fmt"
	"slices"
	"sync"
)

// QueryState is the table's ephemeral view state.
type QueryState struct {
	Search        string
	SortColumn    string
	SortAscending bool
	Page          int
	RowsPerPage   int
}

// PageView is what a renderer needs for the current page.
type PageView[T any] struct {
	Rows []Row[T]
	// Offset is the index of Rows[0] among the filtered, sorted rows.
	Offset     int
	Page       int
	TotalPages int
	Matches    int
	Indicator  string
	CanPrev    bool
	CanNext    bool
}

type settings struct {
	mode        Mode
	metrics     Metrics
	rowsPerPage int
}

type Option func(*settings)

func WithMode(m Mode) Option {
	return func(s *settings) {
		s.mode = m
	}
}

func WithMetrics(m Metrics) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

func WithRowsPerPage(n int) Option {
	return func(s *settings) {
		s.rowsPerPage = n
	}
}

// Table is safe for concurrent use. Callbacks run without the table lock
// held, so they may call back into the table.
type Table[T any] struct {
	mu      sync.Mutex
	columns []Column
	mode    Mode
	metrics Metrics

	rows  []Row[T]
	view  []Row[T]
	state QueryState

	hovered  int // page-relative, hover mode
	selected int // index into view, touch mode

	onEdit        func(Row[T])
	onDelete      func(Row[T])
	onDoubleClick func(Row[T])
}

func New[T any](columns []Column, opts ...Option) *Table[T] {
	s := settings{
		mode:        ModeHover,
		metrics:     DefaultMetrics,
		rowsPerPage: DefaultRowsPerPage,
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &Table[T]{
		columns:  slices.Clone(columns),
		mode:     s.mode,
		metrics:  s.metrics,
		state:    QueryState{SortAscending: true, RowsPerPage: max(1, s.rowsPerPage)},
		hovered:  -1,
		selected: -1,
	}
}

func (t *Table[T]) Columns() []Column {
	return slices.Clone(t.columns)
}

func (t *Table[T]) Mode() Mode {
	return t.mode
}

// SetRows replaces the row collection. The page is clamped so a shrinking
// collection never strands the view on an empty page.
func (t *Table[T]) SetRows(rows []Row[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows = slices.Clone(rows)
	t.hovered, t.selected = -1, -1
	t.recomputeLocked()
}

// Rows returns the full, unfiltered collection.
func (t *Table[T]) Rows() []Row[T] {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.rows)
}

// SetSearch filters rows and returns to the first page.
func (t *Table[T]) SetSearch(query string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Search = query
	t.state.Page = 0
	t.selected = -1
	t.recomputeLocked()
}

// SortBy toggles direction on the current column, or sorts a new column
// ascending. Either way the view returns to the first page.
func (t *Table[T]) SortBy(accessor string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state.SortColumn == accessor {
		t.state.SortAscending = !t.state.SortAscending
	} else {
		t.state.SortColumn = accessor
		t.state.SortAscending = true
	}
	t.state.Page = 0
	t.selected = -1
	t.recomputeLocked()
}

// SortState sets column and direction directly.
func (t *Table[T]) SortState(accessor string, ascending bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.SortColumn = accessor
	t.state.SortAscending = ascending
	t.state.Page = 0
	t.selected = -1
	t.recomputeLocked()
}

// Resize recomputes rows per page from the available height.
func (t *Table[T]) Resize(viewportHeight int) {
	t.SetRowsPerPage(RowsForViewport(viewportHeight, t.metrics))
}

func (t *Table[T]) SetRowsPerPage(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.RowsPerPage = max(1, n)
	t.recomputeLocked()
}

func (t *Table[T]) First() {
	t.goTo(func(int, int) int { return 0 })
}

func (t *Table[T]) Prev() {
	t.goTo(func(page, _ int) int { return page - 1 })
}

func (t *Table[T]) Next() {
	t.goTo(func(page, _ int) int { return page + 1 })
}

func (t *Table[T]) Last() {
	t.goTo(func(_, total int) int { return total - 1 })
}

// GoTo jumps to a zero-based page, clamped.
func (t *Table[T]) GoTo(page int) {
	t.goTo(func(int, int) int { return page })
}

func (t *Table[T]) goTo(next func(page, total int) int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := TotalPages(len(t.view), t.state.RowsPerPage)
	t.state.Page = ClampPage(next(t.state.Page, total), total)
	t.hovered = -1
}

func (t *Table[T]) State() QueryState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Table[T]) Page() PageView[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	total := TotalPages(len(t.view), t.state.RowsPerPage)
	start, end := t.boundsLocked()

	current := 0
	if total > 0 {
		current = t.state.Page + 1
	}
	return PageView[T]{
		Rows:       slices.Clone(t.view[start:end]),
		Offset:     start,
		Page:       t.state.Page,
		TotalPages: total,
		Matches:    len(t.view),
		Indicator:  fmt.Sprintf("%d of %d", current, total),
		CanPrev:    total > 1 && t.state.Page > 0,
		CanNext:    total > 1 && t.state.Page < total-1,
	}
}

// Hover marks a page-relative row as hovered. Ignored in touch mode.
func (t *Table[T]) Hover(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode != ModeHover {
		return
	}
	if _, ok := t.rowLocked(i); ok {
		t.hovered = i
	}
}

func (t *Table[T]) Leave() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == ModeHover {
		t.hovered = -1
	}
}

// Tap selects a page-relative row. Ignored in hover mode.
func (t *Table[T]) Tap(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode != ModeTouch {
		return
	}
	if _, ok := t.rowLocked(i); ok {
		start, _ := t.boundsLocked()
		t.selected = start + i
	}
}

// ActionsVisible reports whether edit/delete are revealed for a
// page-relative row.
func (t *Table[T]) ActionsVisible(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rowLocked(i); !ok {
		return false
	}
	if t.mode == ModeTouch {
		start, _ := t.boundsLocked()
		return t.selected == start+i
	}
	return t.hovered == i
}

func (t *Table[T]) OnEdit(fn func(Row[T])) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onEdit = fn
}

func (t *Table[T]) OnDelete(fn func(Row[T])) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDelete = fn
}

func (t *Table[T]) OnRowDoubleClick(fn func(Row[T])) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onDoubleClick = fn
}

// Edit fires the edit callback for a page-relative row. It reports whether
// a callback ran.
func (t *Table[T]) Edit(i int) bool {
	return t.fire(i, func() func(Row[T]) { return t.onEdit })
}

func (t *Table[T]) Delete(i int) bool {
	return t.fire(i, func() func(Row[T]) { return t.onDelete })
}

func (t *Table[T]) DoubleClick(i int) bool {
	return t.fire(i, func() func(Row[T]) { return t.onDoubleClick })
}

func (t *Table[T]) fire(i int, pick func() func(Row[T])) bool {
	t.mu.Lock()
	row, ok := t.rowLocked(i)
	fn := pick()
	t.mu.Unlock()

	if !ok || fn == nil {
		return false
	}
	fn(row)
	return true
}

func (t *Table[T]) rowLocked(i int) (Row[T], bool) {
	start, end := t.boundsLocked()
	if i < 0 || start+i >= end {
		return Row[T]{}, false
	}
	return t.view[start+i], true
}

func (t *Table[T]) boundsLocked() (int, int) {
	start := min(t.state.Page*t.state.RowsPerPage, len(t.view))
	end := min(start+t.state.RowsPerPage, len(t.view))
	return start, end
}

// recomputeLocked rebuilds the filtered, sorted view and clamps the page.
func (t *Table[T]) recomputeLocked() {
	filtered := Filter(t.rows, t.columns, t.state.Search)
	t.view = Sort(filtered, t.state.SortColumn, t.state.SortAscending)

	total := TotalPages(len(t.view), t.state.RowsPerPage)
	t.state.Page = ClampPage(t.state.Page, total)
	if t.selected >= len(t.view) {
		t.selected = -1
	}
	if start, end := t.boundsLocked(); t.hovered >= end-start {
		t.hovered = -1
	}
}
