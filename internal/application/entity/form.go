package entity

import (
	"context"
	"fmt"
	"sync"

	"expopanel/internal/shared/errors"
)

// ErrSubmitInProgress is returned by a second Submit while the first is in
// flight.
var ErrSubmitInProgress = errors.New("submit already in progress")

type FormMode int

const (
	FormCreate FormMode = iota
	FormEdit
)

func (m FormMode) String() string {
	if m == FormEdit {
		return "edit"
	}
	return "create"
}

// Form is the modal content for creating or editing one record.
type Form[T any] struct {
	ctrl  *Controller[T]
	mode  FormMode
	id    int64
	close func()

	mu         sync.Mutex
	values     Values
	file       *Upload
	options    map[string][]Choice
	submitting bool
}

func newForm[T any](c *Controller[T], mode FormMode, id int64, values Values) *Form[T] {
	if values == nil {
		values = Values{}
	}
	return &Form[T]{ctrl: c, mode: mode, id: id, values: values, close: func() {}}
}

func (f *Form[T]) Title() string {
	if f.mode == FormEdit {
		return "Edit " + f.ctrl.spec.Name
	}
	return "New " + f.ctrl.spec.Name
}

func (f *Form[T]) Mode() FormMode {
	return f.mode
}

// ID is the record being edited, 0 for create.
func (f *Form[T]) ID() int64 {
	return f.id
}

func (f *Form[T]) Fields() []Field {
	return f.ctrl.spec.Fields
}

func (f *Form[T]) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values.Clone()
}

func (f *Form[T]) Get(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[name]
}

func (f *Form[T]) Set(name, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[name] = value
}

// Merge overwrites the given fields and keeps the rest.
func (f *Form[T]) Merge(values Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range values {
		f.values[k] = v
	}
}

// Attach sets or clears (nil) the file sent with the record.
func (f *Form[T]) Attach(file *Upload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.file = file
}

// Options returns the choices for a choice field's list.
func (f *Form[T]) Options(list string) []Choice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.options[list]
}

func (f *Form[T]) setOptions(opts map[string][]Choice) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.options = opts
}

// Submitting reports whether a submit is in flight; the submit control is
// disabled meanwhile.
func (f *Form[T]) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// Submit validates, saves and merges the result into the controller's
// rows, then closes the modal. Validation failures never reach the
// network. Any failure is alerted and leaves the form open with its input
// intact so the user can retry.
func (f *Form[T]) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrSubmitInProgress
	}
	f.submitting = true
	values := f.values.Clone()
	file := f.file
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	spec := f.ctrl.spec
	rec, err := spec.Build(values)
	if err != nil {
		f.ctrl.notifier.Alert(err.Error())
		return err
	}
	if f.mode == FormEdit && spec.ID(rec) == 0 {
		rec = spec.SetID(rec, f.id)
	}
	if err := spec.validate(rec); err != nil {
		f.ctrl.notifier.Alert(err.Error())
		return err
	}

	if err := f.ctrl.save(ctx, f.mode, f.id, rec, file); err != nil {
		f.ctrl.notifier.Alert(fmt.Sprintf("Could not save %s: %v", spec.Name, err))
		return err
	}

	f.close()
	if f.mode == FormEdit {
		f.ctrl.notifier.Notify(fmt.Sprintf("%s updated", spec.Name))
	} else {
		f.ctrl.notifier.Notify(fmt.Sprintf("%s created", spec.Name))
	}
	return nil
}

// Cancel closes the form without saving.
func (f *Form[T]) Cancel() {
	f.close()
}
