// Package approval resolves pending visitor requests to join an exhibitor's
// staff.
package approval

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"expopanel/internal/application/entity"
	"expopanel/internal/application/loading"
	"expopanel/internal/application/table"
	"expopanel/internal/domain/visitorrequest"
	"expopanel/internal/shared/logger"
	"expopanel/internal/shared/mapper"
)

// Repository is the backend of the approval workflow.
type Repository interface {
	List(ctx context.Context) ([]visitorrequest.Request, error)
	Approve(ctx context.Context, id int64, asAdmin bool) (visitorrequest.Status, error)
	Delete(ctx context.Context, id int64) error
}

var Columns = []table.Column{
	{Header: "ID", Accessor: "_id"},
	{Header: "Visitor", Accessor: "nombreyapellido"},
	{Header: "Email", Accessor: "email"},
	{Header: "Exhibitor", Accessor: "expositor"},
	{Header: "Requested", Accessor: "fecha_solicitud"},
	{Header: "App", Accessor: "app"},
}

type Row = table.Row[visitorrequest.Request]

// Controller lists pending requests and approves or deletes them. Both
// remove the request locally; approvals also fire the change hook so the
// exhibitor users view can reload.
type Controller struct {
	repo     Repository
	loading  *loading.Indicator
	notifier entity.Notifier
	logger   logger.Interface

	mu       sync.Mutex
	alive    bool
	rows     []Row
	err      error
	onChange func(ctx context.Context) error
}

func NewController(repo Repository, indicator *loading.Indicator, notifier entity.Notifier, log logger.Interface) *Controller {
	if indicator == nil {
		indicator = loading.New()
	}
	if notifier == nil {
		notifier = entity.NopNotifier()
	}
	return &Controller{
		repo:     repo,
		loading:  indicator,
		notifier: notifier,
		logger:   log.Named("approval"),
	}
}

// OnChange registers the hook run after a successful approval.
func (c *Controller) OnChange(fn func(ctx context.Context) error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	c.alive = true
	c.mu.Unlock()
	return c.Load(ctx)
}

func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alive = false
}

func (c *Controller) Load(ctx context.Context) error {
	var items []visitorrequest.Request
	err := c.loading.Track(ctx, func(ctx context.Context) error {
		var err error
		items, err = c.repo.List(ctx)
		return err
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive {
		return nil
	}
	if err != nil {
		c.err = err
		c.logger.Errorw("failed to load visitor requests", "error", err)
		return err
	}
	c.rows = mapper.MapSlice(items, toRow)
	c.err = nil
	return nil
}

func (c *Controller) Rows() []Row {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.rows)
}

func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Approve grants the visitor access, as an admin of the exhibitor when
// asAdmin is set.
func (c *Controller) Approve(ctx context.Context, id int64, asAdmin bool) error {
	var status visitorrequest.Status
	err := c.loading.Track(ctx, func(ctx context.Context) error {
		var err error
		status, err = c.repo.Approve(ctx, id, asAdmin)
		return err
	})
	if err != nil {
		c.logger.Errorw("failed to approve visitor request", "id", id, "error", err)
		c.notifier.Alert(fmt.Sprintf("Could not approve the request: %v", err))
		return err
	}

	c.mu.Lock()
	c.removeLocked(id)
	hook := c.onChange
	c.mu.Unlock()

	if hook != nil {
		if err := hook(ctx); err != nil {
			c.logger.Warnw("change hook failed after approval", "id", id, "error", err)
		}
	}
	c.notifier.Notify(status.Message())
	return nil
}

// Delete drops the request without approving it.
func (c *Controller) Delete(ctx context.Context, id int64) error {
	err := c.loading.Track(ctx, func(ctx context.Context) error {
		return c.repo.Delete(ctx, id)
	})
	if err != nil {
		c.logger.Errorw("failed to delete visitor request", "id", id, "error", err)
		c.notifier.Alert(fmt.Sprintf("Could not delete the request: %v", err))
		return err
	}

	c.mu.Lock()
	c.removeLocked(id)
	c.mu.Unlock()
	c.notifier.Notify("Request deleted.")
	return nil
}

func (c *Controller) removeLocked(id int64) {
	if !c.alive {
		return
	}
	c.rows = slices.DeleteFunc(c.rows, func(r Row) bool { return r.ID == id })
}

func toRow(r visitorrequest.Request) Row {
	return Row{ID: r.ID.Int64(), Cells: r.Cells(), Raw: r}
}
