package entity

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"expopanel/internal/application/loading"
	"expopanel/internal/application/modal"
	"expopanel/internal/application/table"
	"expopanel/internal/shared/logger"
	"expopanel/internal/shared/query"
)

// Status is the controller's load state.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Controller keeps one entity's rows consistent with the last known server
// state: a full load, then the results of each create, update and delete.
type Controller[T any] struct {
	spec     Spec[T]
	repo     Repository[T]
	modal    *modal.Host
	loading  *loading.Indicator
	notifier Notifier
	logger   logger.Interface

	mu     sync.Mutex
	alive  bool
	status Status
	rows   []table.Row[T]
	total  int
	err    error
	tables []*table.Table[T]
}

func NewController[T any](
	spec Spec[T],
	repo Repository[T],
	host *modal.Host,
	indicator *loading.Indicator,
	notifier Notifier,
	log logger.Interface,
) *Controller[T] {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if indicator == nil {
		indicator = loading.New()
	}
	return &Controller[T]{
		spec:     spec,
		repo:     repo,
		modal:    host,
		loading:  indicator,
		notifier: notifier,
		logger:   log.Named(spec.Name),
	}
}

func (c *Controller[T]) Spec() Spec[T] {
	return c.spec
}

// Mount marks the view live and loads the first page.
func (c *Controller[T]) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
	return c.Load(ctx)
}

// Unmount stops in-flight operations from touching state. The requests
// themselves are left to finish.
func (c *Controller[T]) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
}

func (c *Controller[T]) Alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alive
}

// Reload re-runs the load transition, e.g. after a related entity changed.
func (c *Controller[T]) Reload(ctx context.Context) error {
	return c.Load(ctx)
}

// Load fetches page one and replaces the whole row collection. On failure
// the rows are left as they were and the error is kept for display.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return nil
	}
	c.status = StatusLoading
	c.mu.Unlock()

	var (
		records []T
		total   int
	)
	err := c.loading.Track(ctx, func(ctx context.Context) error {
		var err error
		records, total, err = c.repo.List(ctx, query.NewListQuery(c.spec.PageSize))
		return err
	})

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		c.logger.Debugw("dropping load result for unmounted view")
		return nil
	}
	if err != nil {
		c.status = StatusFailed
		c.err = err
		c.mu.Unlock()
		c.logger.Errorw("failed to load rows", "error", err)
		return err
	}

	rows := make([]table.Row[T], 0, len(records))
	for _, rec := range records {
		rows = append(rows, c.spec.Map(rec))
	}
	c.rows = rows
	c.total = total
	c.status = StatusReady
	c.err = nil
	c.mu.Unlock()

	c.logger.Debugw("rows loaded", "count", len(rows), "total", total)
	c.publish()
	return nil
}

func (c *Controller[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err is the last load error, shown as a dismissable banner.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Controller[T]) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}

func (c *Controller[T]) Rows() []table.Row[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rows)
}

// Total is the server-reported total of the last load.
func (c *Controller[T]) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// Find returns the row with the given id.
func (c *Controller[T]) Find(id int64) (table.Row[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range c.rows {
		if r.ID == id {
			return r, true
		}
	}
	return table.Row[T]{}, false
}

// Bind feeds rows to tbl and routes its row events to this controller.
// Double-click opens the edit form like the edit action does.
func (c *Controller[T]) Bind(ctx context.Context, tbl *table.Table[T]) {
	tbl.OnEdit(func(r table.Row[T]) { c.OpenEdit(ctx, r) })
	tbl.OnRowDoubleClick(func(r table.Row[T]) { c.OpenEdit(ctx, r) })
	tbl.OnDelete(func(r table.Row[T]) { c.OpenDelete(r) })

	c.mu.Lock()
	c.tables = append(c.tables, tbl)
	rows := slices.Clone(c.rows)
	c.mu.Unlock()

	tbl.SetRows(rows)
}

// OpenCreate opens an empty form.
func (c *Controller[T]) OpenCreate(ctx context.Context) *Form[T] {
	form := newForm(c, FormCreate, 0, c.spec.Defaults.Clone())
	c.loadOptions(ctx, form)
	c.modal.OpenFunc(func(close func()) modal.Content {
		form.close = close
		return form
	}, c.spec.SizeClass)
	return form
}

// OpenEdit opens a form pre-filled from the row's raw record, never from
// its display cells.
func (c *Controller[T]) OpenEdit(ctx context.Context, row table.Row[T]) *Form[T] {
	values := c.spec.Values(row.Raw)
	form := newForm(c, FormEdit, row.ID, values)
	c.loadOptions(ctx, form)
	c.modal.OpenFunc(func(close func()) modal.Content {
		form.close = close
		return form
	}, c.spec.SizeClass)
	return form
}

// OpenDelete asks for confirmation naming the record.
func (c *Controller[T]) OpenDelete(row table.Row[T]) *Confirm {
	label := c.spec.Describe(row.Raw)
	confirm := &Confirm{
		title:    fmt.Sprintf("Delete %s", c.spec.Name),
		message:  fmt.Sprintf("Delete %s %q? This cannot be undone.", c.spec.Name, label),
		notifier: c.notifier,
		close:    func() {},
	}
	confirm.onConfirm = func(ctx context.Context) error {
		return c.delete(ctx, row)
	}
	c.modal.OpenFunc(func(close func()) modal.Content {
		confirm.close = close
		return confirm
	})
	return confirm
}

func (c *Controller[T]) loadOptions(ctx context.Context, form *Form[T]) {
	if c.spec.Options == nil {
		return
	}
	opts, err := c.spec.Options(ctx)
	if err != nil {
		c.logger.Warnw("failed to load form options", "error", err)
		c.notifier.Alert(fmt.Sprintf("Could not load options: %v", err))
		return
	}
	form.setOptions(opts)
}

// save runs after a form passed validation.
func (c *Controller[T]) save(ctx context.Context, mode FormMode, id int64, rec T, file *Upload) error {
	var saved T
	err := c.loading.Track(ctx, func(ctx context.Context) error {
		var err error
		if mode == FormCreate {
			saved, err = c.repo.Create(ctx, rec, file)
		} else {
			saved, err = c.repo.Update(ctx, rec, file)
		}
		return err
	})
	if err != nil {
		c.logger.Errorw("failed to save", "mode", mode, "id", id, "error", err)
		return err
	}

	row := c.spec.Map(saved)
	if mode == FormEdit && row.ID == 0 {
		row.ID = id
	}

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return nil
	}
	if mode == FormCreate {
		c.rows = append([]table.Row[T]{row}, c.rows...)
	} else {
		c.rows = replaceByID(c.rows, id, row)
	}
	c.mu.Unlock()

	c.logger.Infow("saved", "mode", mode, "id", row.ID)
	c.publish()
	return nil
}

func (c *Controller[T]) delete(ctx context.Context, row table.Row[T]) error {
	err := c.loading.Track(ctx, func(ctx context.Context) error {
		return c.repo.Delete(ctx, row.ID)
	})
	if err != nil {
		c.logger.Errorw("failed to delete", "id", row.ID, "error", err)
		return err
	}

	c.mu.Lock()
	if !c.alive {
		c.mu.Unlock()
		return nil
	}
	c.rows = removeByID(c.rows, row.ID)
	c.mu.Unlock()

	c.logger.Infow("deleted", "id", row.ID)
	c.publish()
	c.notifier.Notify(fmt.Sprintf("%s deleted", c.spec.Name))
	return nil
}

// publish pushes the current rows to every bound table.
func (c *Controller[T]) publish() {
	c.mu.Lock()
	rows := slices.Clone(c.rows)
	tables := slices.Clone(c.tables)
	c.mu.Unlock()

	for _, tbl := range tables {
		tbl.SetRows(rows)
	}
}

// replaceByID swaps the first row with id for row, leaving every other row
// in place. A missing id leaves rows unchanged.
func replaceByID[T any](rows []table.Row[T], id int64, row table.Row[T]) []table.Row[T] {
	out := slices.Clone(rows)
	for i := range out {
		if out[i].ID == id {
			out[i] = row
			return out
		}
	}
	return out
}

func removeByID[T any](rows []table.Row[T], id int64) []table.Row[T] {
	return slices.DeleteFunc(slices.Clone(rows), func(r table.Row[T]) bool {
		return r.ID == id
	})
}
