// Package catalog configures the generic entity controller for each
// managed record type.
package catalog

import (
	"context"

	"expopanel/internal/application/entity"
	"expopanel/internal/application/table"
	"expopanel/internal/domain/agenda"
	"expopanel/internal/domain/banner"
	"expopanel/internal/domain/exhibitor"
	"expopanel/internal/domain/exhibitoruser"
	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/mapper"
	"expopanel/internal/shared/utils"
)

// Page sizes requested on the first load of each view.
const (
	ExhibitorsPageSize     = 100
	ExhibitorUsersPageSize = 200
	AgendaPageSize         = 300
	BannersPageSize        = 200
)

// ExhibitorChoices is the option list name of the exhibitor picker.
const ExhibitorChoices = "expositores"

func Exhibitors(imageBase string) entity.Spec[exhibitor.Exhibitor] {
	return entity.Spec[exhibitor.Exhibitor]{
		Name:     "exhibitor",
		PageSize: ExhibitorsPageSize,
		Columns: []table.Column{
			{Header: "ID", Accessor: constants.IDField},
			{Header: "Name", Accessor: "name"},
			{Header: "Email", Accessor: "email"},
			{Header: "Phone", Accessor: "telefono"},
			{Header: "City", Accessor: "localidad"},
			{Header: "Province", Accessor: "provincia"},
			{Header: "Active", Accessor: "activo"},
		},
		Fields: []entity.Field{
			{Name: "nombre", Label: "Name", Kind: entity.KindText},
			{Name: "email", Label: "Email", Kind: entity.KindEmail},
			{Name: "telefono", Label: "Phone", Kind: entity.KindText},
			{Name: "web", Label: "Website", Kind: entity.KindURL},
			{Name: "marcas", Label: "Brands", Kind: entity.KindText},
			{Name: "domicilio", Label: "Address", Kind: entity.KindText},
			{Name: "cp", Label: "Postal code", Kind: entity.KindText},
			{Name: "localidad", Label: "City", Kind: entity.KindText},
			{Name: "provincia", Label: "Province", Kind: entity.KindText},
			{Name: "pais", Label: "Country", Kind: entity.KindText},
			{Name: "descripcion", Label: "Description", Kind: entity.KindTextArea},
			{Name: "descripcion_i", Label: "Description (English)", Kind: entity.KindTextArea},
			{Name: "activo", Label: "Active", Kind: entity.KindBool},
		},
		Defaults:  entity.Values{"activo": "1"},
		SizeClass: "max-w-4xl",
		Map: func(e exhibitor.Exhibitor) table.Row[exhibitor.Exhibitor] {
			return table.Row[exhibitor.Exhibitor]{ID: e.ID.Int64(), Cells: e.Cells(imageBase), Raw: e}
		},
		Values:   func(e exhibitor.Exhibitor) entity.Values { return e.Values() },
		Build:    func(v entity.Values) (exhibitor.Exhibitor, error) { return exhibitor.FromValues(v), nil },
		Describe: exhibitor.Exhibitor.Label,
		ID:       func(e exhibitor.Exhibitor) int64 { return e.ID.Int64() },
		SetID: func(e exhibitor.Exhibitor, id int64) exhibitor.Exhibitor {
			e.ID = utils.ID(id)
			return e
		},
	}
}

// ExhibitorOptions loads the exhibitor picker entries.
type ExhibitorOptions func(ctx context.Context) ([]exhibitoruser.ExhibitorOption, error)

func ExhibitorUsers(options ExhibitorOptions) entity.Spec[exhibitoruser.User] {
	spec := entity.Spec[exhibitoruser.User]{
		Name:     "exhibitor user",
		PageSize: ExhibitorUsersPageSize,
		Columns: []table.Column{
			{Header: "ID", Accessor: constants.IDField},
			{Header: "Exhibitor", Accessor: "nombre_expositor"},
			{Header: "Email", Accessor: "email"},
			{Header: "Name", Accessor: "nombre"},
			{Header: "Admin", Accessor: "admin"},
			{Header: "Code", Accessor: "codigo"},
			{Header: "Code date", Accessor: "fecha_codigo"},
		},
		Fields: []entity.Field{
			{Name: "id_expositor", Label: "Exhibitor", Kind: entity.KindChoice, Options: ExhibitorChoices},
			{Name: "admin", Label: "Admin", Kind: entity.KindBool},
			{Name: "email", Label: "Email", Kind: entity.KindEmail},
			{Name: "nombre", Label: "Name", Kind: entity.KindText},
			{Name: "codigo", Label: "Code", Kind: entity.KindText},
			{Name: "fecha_codigo", Label: "Code date", Kind: entity.KindDateTime},
		},
		Defaults: entity.Values{"admin": "0"},
		Map: func(u exhibitoruser.User) table.Row[exhibitoruser.User] {
			return table.Row[exhibitoruser.User]{ID: u.ID.Int64(), Cells: u.Cells(), Raw: u}
		},
		Values:   func(u exhibitoruser.User) entity.Values { return u.Values() },
		Build:    func(v entity.Values) (exhibitoruser.User, error) { return exhibitoruser.FromValues(v), nil },
		Describe: exhibitoruser.User.Label,
		ID:       func(u exhibitoruser.User) int64 { return u.ID.Int64() },
		SetID: func(u exhibitoruser.User, id int64) exhibitoruser.User {
			u.ID = utils.ID(id)
			return u
		},
	}
	if options != nil {
		spec.Options = func(ctx context.Context) (map[string][]entity.Choice, error) {
			opts, err := options(ctx)
			if err != nil {
				return nil, err
			}
			choices := mapper.MapSlice(exhibitoruser.ValidOptions(opts), func(o exhibitoruser.ExhibitorOption) entity.Choice {
				return entity.Choice{Value: o.Value(), Label: o.Name}
			})
			return map[string][]entity.Choice{ExhibitorChoices: choices}, nil
		}
	}
	return spec
}

func Agenda() entity.Spec[agenda.Item] {
	return entity.Spec[agenda.Item]{
		Name:     "agenda item",
		PageSize: AgendaPageSize,
		Columns: []table.Column{
			{Header: "ID", Accessor: constants.IDField},
			{Header: "Name", Accessor: "nombre"},
			{Header: "Speaker", Accessor: "orador"},
			{Header: "Place", Accessor: "lugar"},
			{Header: "Date", Accessor: "fecha_hora"},
			{Header: "Active", Accessor: "activo"},
		},
		Fields: []entity.Field{
			{Name: "nombre", Label: "Name", Kind: entity.KindText},
			{Name: "orador", Label: "Speaker", Kind: entity.KindText},
			{Name: "lugar", Label: "Place", Kind: entity.KindText},
			{Name: "descripcion", Label: "Description", Kind: entity.KindTextArea},
			{Name: "fecha_hora", Label: "Date and time", Kind: entity.KindDateTime},
			{Name: "activo", Label: "Active", Kind: entity.KindBool},
		},
		Defaults: entity.Values{"activo": "1"},
		Map: func(it agenda.Item) table.Row[agenda.Item] {
			return table.Row[agenda.Item]{ID: it.ID.Int64(), Cells: it.Cells(), Raw: it}
		},
		Values:   func(it agenda.Item) entity.Values { return it.Values() },
		Build:    func(v entity.Values) (agenda.Item, error) { return agenda.FromValues(v), nil },
		Describe: agenda.Item.Label,
		ID:       func(it agenda.Item) int64 { return it.ID.Int64() },
		SetID: func(it agenda.Item, id int64) agenda.Item {
			it.ID = utils.ID(id)
			return it
		},
	}
}

func Banners(imageBase string) entity.Spec[banner.Banner] {
	return entity.Spec[banner.Banner]{
		Name:     "banner",
		PageSize: BannersPageSize,
		Columns: []table.Column{
			{Header: "ID", Accessor: constants.IDField},
			{Header: "Name", Accessor: "nombre"},
			{Header: "Link", Accessor: "link"},
			{Header: "Image", Accessor: "imagen"},
			{Header: "Active", Accessor: "activo"},
		},
		Fields: []entity.Field{
			{Name: "nombre", Label: "Name", Kind: entity.KindText},
			{Name: "link", Label: "Link", Kind: entity.KindURL},
			{Name: "activo", Label: "Active", Kind: entity.KindBool},
			{Name: "app", Label: "Show in app", Kind: entity.KindBool},
		},
		Defaults: entity.Values{"activo": "1", "app": "0"},
		Map: func(b banner.Banner) table.Row[banner.Banner] {
			return table.Row[banner.Banner]{ID: b.ID.Int64(), Cells: b.Cells(imageBase), Raw: b}
		},
		Values:   func(b banner.Banner) entity.Values { return b.Values() },
		Build:    func(v entity.Values) (banner.Banner, error) { return banner.FromValues(v), nil },
		Describe: banner.Banner.Label,
		ID:       func(b banner.Banner) int64 { return b.ID.Int64() },
		SetID: func(b banner.Banner, id int64) banner.Banner {
			b.ID = utils.ID(id)
			return b
		},
	}
}
