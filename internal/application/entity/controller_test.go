package entity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"expopanel/internal/application/loading"
	"expopanel/internal/application/modal"
	"expopanel/internal/application/table"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
	"expopanel/internal/shared/query"
)

type harness struct {
	ctrl     *Controller[item]
	repo     *mockRepository
	notifier *mockNotifier
	host     *modal.Host
	loading  *loading.Indicator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:     new(mockRepository),
		notifier: new(mockNotifier),
		host:     modal.NewHost(nil),
		loading:  loading.New(),
	}
	h.ctrl = NewController(itemSpec(), h.repo, h.host, h.loading, h.notifier, logger.NewNop())
	return h
}

func seedItems() []item {
	return []item{
		{ID: 1, Nombre: "Apertura", Lugar: "Sala A", Activo: true},
		{ID: 2, Nombre: "Charla", Lugar: "Sala B"},
		{ID: 3, Nombre: "Cierre", Lugar: "Auditorio", Activo: true},
	}
}

func (h *harness) mount(t *testing.T) {
	t.Helper()
	h.repo.On("List", mock.Anything, query.NewListQuery(300)).Return(seedItems(), 3, nil).Once()
	require.NoError(t, h.ctrl.Mount(context.Background()))
}

func ids(rows []table.Row[item]) []int64 {
	out := make([]int64, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestController_MountLoads(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, StatusIdle, h.ctrl.Status())

	h.mount(t)

	assert.Equal(t, StatusReady, h.ctrl.Status())
	assert.Equal(t, []int64{1, 2, 3}, ids(h.ctrl.Rows()))
	assert.Equal(t, 3, h.ctrl.Total())
	assert.False(t, h.loading.Visible())
	h.repo.AssertExpectations(t)
}

func TestController_LoadFailureKeepsRows(t *testing.T) {
	h := newHarness(t)
	h.mount(t)

	boom := &errors.TransportError{Method: "GET", Path: "eventos/TODOS_PANEL/", Status: 502, Body: "bad gateway"}
	h.repo.On("List", mock.Anything, mock.Anything).Return(nil, 0, boom).Once()

	err := h.ctrl.Reload(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, h.ctrl.Status())
	assert.Equal(t, boom, h.ctrl.Err())
	assert.Equal(t, []int64{1, 2, 3}, ids(h.ctrl.Rows()), "rows unchanged")
	assert.False(t, h.loading.Visible(), "indicator cleared on failure")

	h.ctrl.DismissError()
	assert.NoError(t, h.ctrl.Err())
}

func TestController_UnmountDropsLateResult(t *testing.T) {
	h := newHarness(t)

	release := make(chan struct{})
	started := make(chan struct{})
	h.repo.On("List", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(seedItems(), 3, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = h.ctrl.Mount(context.Background())
	}()

	<-started
	h.ctrl.Unmount()
	close(release)
	wg.Wait()

	assert.Empty(t, h.ctrl.Rows())
	assert.Equal(t, StatusLoading, h.ctrl.Status())
	assert.False(t, h.loading.Visible(), "indicator cleared even when unmounted")
	h.repo.AssertExpectations(t)
}

func TestController_ReloadWhileUnmountedIsNoop(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.ctrl.Reload(context.Background()))
	h.repo.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestController_CreatePrepends(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	form := h.ctrl.OpenCreate(ctx)
	require.True(t, h.host.IsOpen())
	assert.Equal(t, "New event", h.host.State().Content.Title())
	assert.Equal(t, "1", form.Get("activo"), "defaults applied")

	form.Set("nombre", "Taller")
	form.Set("lugar", "Sala C")

	payload := item{Nombre: "Taller", Lugar: "Sala C", Activo: true}
	h.repo.On("Create", mock.Anything, payload, (*Upload)(nil)).
		Return(item{ID: 10, Nombre: "Taller", Lugar: "Sala C", Activo: true}, nil).Once()
	h.notifier.On("Notify", "event created").Once()

	require.NoError(t, form.Submit(ctx))

	assert.Equal(t, []int64{10, 1, 2, 3}, ids(h.ctrl.Rows()))
	assert.False(t, h.host.IsOpen())
	h.repo.AssertExpectations(t)
	h.notifier.AssertExpectations(t)
}

func TestController_CreateThenEditRoundTrip(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	input := Values{"nombre": "Taller de envases", "lugar": "Sala C", "activo": "1"}

	h.repo.On("Create", mock.Anything, item{Nombre: "Taller de envases", Lugar: "Sala C", Activo: true}, (*Upload)(nil)).
		Return(item{ID: 11, Nombre: "Taller de envases", Lugar: "Sala C", Activo: true}, nil).Once()
	h.notifier.On("Notify", mock.Anything)

	form := h.ctrl.OpenCreate(ctx)
	form.Merge(input)
	require.NoError(t, form.Submit(ctx))

	created, ok := h.ctrl.Find(11)
	require.True(t, ok)

	edit := h.ctrl.OpenEdit(ctx, created)
	got := edit.Values()
	for k, v := range input {
		assert.Equal(t, v, got[k], "field %s survives the round trip", k)
	}
	assert.Equal(t, "11", got["_id"])
}

func TestController_UpdateReplacesExactlyOneRow(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	row, ok := h.ctrl.Find(2)
	require.True(t, ok)

	form := h.ctrl.OpenEdit(ctx, row)
	assert.Equal(t, "Edit event", form.Title())
	assert.Equal(t, "Charla", form.Get("nombre"), "pre-filled from the raw record")

	// the id is dropped from the values to make sure the row id is used
	form.Set("_id", "")
	form.Set("nombre", "Charla técnica")

	want := item{ID: 2, Nombre: "Charla técnica", Lugar: "Sala B"}
	h.repo.On("Update", mock.Anything, want, (*Upload)(nil)).Return(want, nil).Once()
	h.notifier.On("Notify", "event updated").Once()

	require.NoError(t, form.Submit(ctx))

	rows := h.ctrl.Rows()
	assert.Equal(t, []int64{1, 2, 3}, ids(rows), "order unchanged, no duplicate")
	assert.Equal(t, "Charla técnica", rows[1].Cells["nombre"])
	assert.Equal(t, "Apertura", rows[0].Cells["nombre"])
	h.repo.AssertExpectations(t)
}

func TestController_UpdateResponseWithoutID(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	row, _ := h.ctrl.Find(3)
	form := h.ctrl.OpenEdit(ctx, row)
	form.Set("lugar", "Hall")

	// backend answered without a row; the saved record has no id
	h.repo.On("Update", mock.Anything, mock.Anything, mock.Anything).
		Return(item{Nombre: "Cierre", Lugar: "Hall"}, nil).Once()
	h.notifier.On("Notify", mock.Anything)

	require.NoError(t, form.Submit(ctx))
	assert.Equal(t, []int64{1, 2, 3}, ids(h.ctrl.Rows()))
	assert.Equal(t, "Hall", h.ctrl.Rows()[2].Cells["lugar"])
}

func TestController_ValidationSkipsNetwork(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	form := h.ctrl.OpenCreate(ctx)
	form.Set("nombre", "   ")
	h.notifier.On("Alert", "Validation failed (nombre is required)").Once()

	err := form.Submit(ctx)
	assert.True(t, errors.IsValidationError(err))
	assert.True(t, h.host.IsOpen(), "form stays open")
	h.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	h.notifier.AssertExpectations(t)
}

func TestController_SaveFailureKeepsFormOpen(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	form := h.ctrl.OpenCreate(ctx)
	form.Set("nombre", "Taller")

	boom := &errors.TransportError{Method: "POST", Path: "eventos/", Status: 500, Body: "db down"}
	h.repo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(item{}, boom).Once()
	h.notifier.On("Alert", "Could not save event: POST eventos/ 500: db down").Once()

	err := form.Submit(ctx)
	assert.ErrorIs(t, err, boom)
	assert.True(t, h.host.IsOpen())
	assert.Equal(t, "Taller", form.Get("nombre"), "input kept for retry")
	assert.Equal(t, []int64{1, 2, 3}, ids(h.ctrl.Rows()))
	assert.False(t, form.Submitting())
	assert.False(t, h.loading.Visible())

	// retry succeeds
	h.repo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(item{ID: 12, Nombre: "Taller"}, nil).Once()
	h.notifier.On("Notify", mock.Anything).Once()
	require.NoError(t, form.Submit(ctx))
	assert.False(t, h.host.IsOpen())
	assert.Equal(t, []int64{12, 1, 2, 3}, ids(h.ctrl.Rows()))
}

func TestController_DoubleSubmitRejected(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	form := h.ctrl.OpenCreate(ctx)
	form.Set("nombre", "Taller")

	release := make(chan struct{})
	started := make(chan struct{})
	h.repo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(item{ID: 13, Nombre: "Taller"}, nil).Once()
	h.notifier.On("Notify", mock.Anything)

	done := make(chan error, 1)
	go func() { done <- form.Submit(ctx) }()

	<-started
	assert.True(t, form.Submitting())
	assert.ErrorIs(t, form.Submit(ctx), ErrSubmitInProgress)

	close(release)
	require.NoError(t, <-done)
	h.repo.AssertNumberOfCalls(t, "Create", 1)
}

func TestController_Delete(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	row, _ := h.ctrl.Find(2)

	t.Run("cancel changes nothing", func(t *testing.T) {
		confirm := h.ctrl.OpenDelete(row)
		assert.Contains(t, confirm.Message(), `"Charla"`)
		confirm.Cancel()
		assert.False(t, h.host.IsOpen())
		assert.Equal(t, []int64{1, 2, 3}, ids(h.ctrl.Rows()))
	})

	t.Run("failure keeps confirmation open", func(t *testing.T) {
		h.repo.On("Delete", mock.Anything, int64(2)).Return(errors.New("locked")).Once()
		h.notifier.On("Alert", "Could not delete: locked").Once()

		confirm := h.ctrl.OpenDelete(row)
		assert.Error(t, confirm.Accept(ctx))
		assert.True(t, h.host.IsOpen())
		assert.Equal(t, []int64{1, 2, 3}, ids(h.ctrl.Rows()))
		confirm.Cancel()
	})

	t.Run("confirm removes by id", func(t *testing.T) {
		h.repo.On("Delete", mock.Anything, int64(2)).Return(nil).Once()
		h.notifier.On("Notify", "event deleted").Once()

		confirm := h.ctrl.OpenDelete(row)
		require.NoError(t, confirm.Accept(ctx))
		assert.False(t, h.host.IsOpen())
		assert.Equal(t, []int64{1, 3}, ids(h.ctrl.Rows()))
	})

	h.repo.AssertExpectations(t)
	h.notifier.AssertExpectations(t)
}

func TestController_BindRoutesTableEvents(t *testing.T) {
	h := newHarness(t)
	h.mount(t)
	ctx := context.Background()

	tbl := table.New[item](itemSpec().Columns, table.WithRowsPerPage(10))
	h.ctrl.Bind(ctx, tbl)
	require.Len(t, tbl.Rows(), 3)

	require.True(t, tbl.DoubleClick(1))
	form, ok := h.host.State().Content.(*Form[item])
	require.True(t, ok, "double-click opens the edit form")
	assert.Equal(t, FormEdit, form.Mode())
	assert.Equal(t, int64(2), form.ID())

	require.True(t, tbl.Delete(0))
	_, ok = h.host.State().Content.(*Confirm)
	assert.True(t, ok, "delete replaces the open form with a confirmation")

	// a saved record flows back into the bound table
	h.host.Close()
	h.repo.On("Create", mock.Anything, mock.Anything, mock.Anything).
		Return(item{ID: 20, Nombre: "Nuevo"}, nil).Once()
	h.notifier.On("Notify", mock.Anything)

	create := h.ctrl.OpenCreate(ctx)
	create.Set("nombre", "Nuevo")
	require.NoError(t, create.Submit(ctx))

	assert.Len(t, tbl.Rows(), 4)
	assert.Equal(t, int64(20), tbl.Page().Rows[0].ID)
}

func TestController_OptionsLoadedIntoForm(t *testing.T) {
	h := newHarness(t)
	spec := itemSpec()
	spec.Options = func(context.Context) (map[string][]Choice, error) {
		return map[string][]Choice{"expositores": {{Value: "5", Label: "Envases SA"}}}, nil
	}
	ctrl := NewController(spec, h.repo, h.host, h.loading, h.notifier, logger.NewNop())

	form := ctrl.OpenCreate(context.Background())
	assert.Equal(t, []Choice{{Value: "5", Label: "Envases SA"}}, form.Options("expositores"))

	spec.Options = func(context.Context) (map[string][]Choice, error) {
		return nil, errors.New("offline")
	}
	ctrl = NewController(spec, h.repo, h.host, h.loading, h.notifier, logger.NewNop())
	h.notifier.On("Alert", "Could not load options: offline").Once()

	form = ctrl.OpenCreate(context.Background())
	assert.Empty(t, form.Options("expositores"))
	assert.True(t, h.host.IsOpen(), "form opens without options")
	h.notifier.AssertExpectations(t)
}
