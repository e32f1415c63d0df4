package entity

import (
	"context"
	"strconv"
	"strings"

	"github.com/stretchr/testify/mock"

	"expopanel/internal/application/table"
	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/query"
	"expopanel/internal/shared/utils"
)

type item struct {
	ID     utils.ID   `json:"_id"`
	Nombre string     `json:"nombre" validate:"notblank"`
	Lugar  string     `json:"lugar"`
	Activo utils.Flag `json:"activo"`
}

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) List(ctx context.Context, q query.ListQuery) ([]item, int, error) {
	args := m.Called(ctx, q)
	var items []item
	if v := args.Get(0); v != nil {
		items = v.([]item)
	}
	return items, args.Int(1), args.Error(2)
}

func (m *mockRepository) Create(ctx context.Context, rec item, file *Upload) (item, error) {
	args := m.Called(ctx, rec, file)
	return args.Get(0).(item), args.Error(1)
}

func (m *mockRepository) Update(ctx context.Context, rec item, file *Upload) (item, error) {
	args := m.Called(ctx, rec, file)
	return args.Get(0).(item), args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Alert(msg string) {
	m.Called(msg)
}

func (m *mockNotifier) Notify(msg string) {
	m.Called(msg)
}

func itemSpec() Spec[item] {
	return Spec[item]{
		Name:     "event",
		PageSize: 300,
		Columns: []table.Column{
			{Header: "Nombre", Accessor: "nombre"},
			{Header: "Lugar", Accessor: "lugar"},
			{Header: "Activo", Accessor: "activo"},
		},
		Fields: []Field{
			{Name: "nombre", Label: "Nombre", Kind: KindText},
			{Name: "lugar", Label: "Lugar", Kind: KindText},
			{Name: "activo", Label: "Activo", Kind: KindBool},
		},
		Defaults: Values{"activo": "1"},
		Map: func(it item) table.Row[item] {
			return table.Row[item]{
				ID: it.ID.Int64(),
				Cells: map[string]any{
					constants.IDField: it.ID.Int64(),
					"nombre":          utils.Display(it.Nombre),
					"lugar":           utils.Display(it.Lugar),
					"activo":          it.Activo.YesNo(),
				},
				Raw: it,
			}
		},
		Values: func(it item) Values {
			return Values{
				constants.IDField: it.ID.String(),
				"nombre":          it.Nombre,
				"lugar":           it.Lugar,
				"activo":          strconv.Itoa(it.Activo.Int()),
			}
		},
		Build: func(v Values) (item, error) {
			id, _ := utils.ParseID(v[constants.IDField])
			return item{
				ID:     utils.ID(id),
				Nombre: strings.TrimSpace(v["nombre"]),
				Lugar:  strings.TrimSpace(v["lugar"]),
				Activo: utils.Flag(utils.ParseFlag(v["activo"])),
			}, nil
		},
		Describe: func(it item) string { return it.Nombre },
		ID:       func(it item) int64 { return it.ID.Int64() },
		SetID: func(it item, id int64) item {
			it.ID = utils.ID(id)
			return it
		},
	}
}
