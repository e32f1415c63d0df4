// Package entity is the generic CRUD controller shared by every managed
// record type. A concrete entity is a Spec value, not a new controller.
package entity

import (
	"context"

	"expopanel/internal/application/table"
	"expopanel/internal/shared/query"
	"expopanel/internal/shared/utils"
)

// Values is form input keyed by backend field name.
type Values map[string]string

// Clone returns an independent copy.
func (v Values) Clone() Values {
	out := make(Values, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

type FieldKind int

const (
	KindText FieldKind = iota
	KindTextArea
	KindEmail
	KindBool
	KindDateTime
	KindChoice
	KindURL
)

func (k FieldKind) String() string {
	switch k {
	case KindTextArea:
		return "textarea"
	case KindEmail:
		return "email"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindChoice:
		return "choice"
	case KindURL:
		return "url"
	default:
		return "text"
	}
}

// Field describes one form input.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
	// Options names the choice list a KindChoice field reads from.
	Options string
}

// Choice is one option of a select input.
type Choice struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Upload is a file attached to a form. Content is held in memory so a
// failed submit can be retried without reopening the file.
type Upload struct {
	Filename string
	Content  []byte
}

// Repository is the remote collection behind a controller.
type Repository[T any] interface {
	List(ctx context.Context, q query.ListQuery) ([]T, int, error)
	Create(ctx context.Context, rec T, file *Upload) (T, error)
	Update(ctx context.Context, rec T, file *Upload) (T, error)
	Delete(ctx context.Context, id int64) error
}

// Spec parameterizes a Controller for one record type.
type Spec[T any] struct {
	// Name is the singular label used in titles and confirmations.
	Name     string
	PageSize int
	Columns  []table.Column
	Fields   []Field
	Defaults Values
	// SizeClass is passed to the modal host for forms.
	SizeClass string

	// Map projects a record into a table row.
	Map func(T) table.Row[T]
	// Values pre-fills an edit form from a record.
	Values func(T) Values
	// Build turns form input into a record.
	Build func(Values) (T, error)
	// Validate checks required fields before any network call. Defaults to
	// the record's validate struct tags.
	Validate func(T) error
	// Describe names a record in the delete confirmation.
	Describe func(T) string
	ID       func(T) int64
	SetID    func(T, int64) T
	// Options loads choice lists for the form. Optional.
	Options func(ctx context.Context) (map[string][]Choice, error)
}

func (s Spec[T]) validate(rec T) error {
	if s.Validate != nil {
		return s.Validate(rec)
	}
	return utils.ValidateStruct(rec)
}
