// Package exhibitoruser defines the staff accounts of an exhibitor and the
// exhibitor options offered when creating one.
package exhibitoruser

import (
	"encoding/json"
	"strconv"
	"strings"

	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/mapper"
	"expopanel/internal/shared/utils"
)

type User struct {
	ID            utils.ID   `json:"_id"`
	ExhibitorID   utils.ID   `json:"id_expositor" validate:"gt=0"`
	ExhibitorName string     `json:"nombre_expositor"`
	Email         string     `json:"email" validate:"notblank,email"`
	Name          string     `json:"nombre"`
	Admin         utils.Flag `json:"admin"`
	Code          string     `json:"codigo"`
	CodeDate      string     `json:"fecha_codigo"`
}

type nested struct {
	Nombre string `json:"nombre"`
	Name   string `json:"name"`
}

// UnmarshalJSON accepts the alternative field names older endpoints use.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		AltID            utils.ID `json:"id"`
		ExpositorID      utils.ID `json:"expositor_id"`
		ExpositorIDCamel utils.ID `json:"expositorId"`
		ExpositorNombre  string   `json:"expositor_nombre"`
		Expositor        *nested  `json:"expositor"`
		AltName          string   `json:"name"`
		FechaCodigo      string   `json:"fechaCodigo"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if u.ID == 0 {
		u.ID = aux.AltID
	}
	if u.ExhibitorID == 0 {
		u.ExhibitorID = aux.ExpositorID
	}
	if u.ExhibitorID == 0 {
		u.ExhibitorID = aux.ExpositorIDCamel
	}
	if u.ExhibitorName == "" {
		var fromNested []string
		if aux.Expositor != nil {
			fromNested = []string{aux.Expositor.Nombre, aux.Expositor.Name}
		}
		u.ExhibitorName = utils.FirstNonEmpty(append([]string{aux.ExpositorNombre}, fromNested...)...)
	}
	if u.Name == "" {
		u.Name = aux.AltName
	}
	if u.CodeDate == "" {
		u.CodeDate = aux.FechaCodigo
	}
	return nil
}

func (u User) Label() string {
	return utils.FirstNonEmpty(u.Name, u.Email, "#"+u.ID.String())
}

func (u User) Cells() map[string]any {
	var exhibitorID any
	if u.ExhibitorID != 0 {
		exhibitorID = u.ExhibitorID.Int64()
	}
	return map[string]any{
		constants.IDField:  u.ID.Int64(),
		"id_expositor":     exhibitorID,
		"nombre_expositor": utils.Display(u.ExhibitorName),
		"email":            utils.Display(u.Email),
		"nombre":           utils.Display(u.Name),
		"admin":            u.Admin.YesNo(),
		"codigo":           utils.Display(u.Code),
		"fecha_codigo":     utils.Display(u.CodeDate),
	}
}

func (u User) Values() map[string]string {
	v := map[string]string{
		"email":        u.Email,
		"nombre":       u.Name,
		"admin":        strconv.Itoa(u.Admin.Int()),
		"codigo":       u.Code,
		"fecha_codigo": u.CodeDate,
	}
	if u.ExhibitorID != 0 {
		v["id_expositor"] = u.ExhibitorID.String()
	}
	if u.ID != 0 {
		v[constants.IDField] = u.ID.String()
	}
	return v
}

func FromValues(v map[string]string) User {
	id, _ := utils.ParseID(v[constants.IDField])
	exhibitorID, _ := utils.ParseID(v["id_expositor"])
	return User{
		ID:          utils.ID(id),
		ExhibitorID: utils.ID(exhibitorID),
		Email:       strings.ToLower(strings.TrimSpace(v["email"])),
		Name:        strings.TrimSpace(v["nombre"]),
		Admin:       utils.Flag(utils.ParseFlag(v["admin"])),
		Code:        strings.TrimSpace(v["codigo"]),
		CodeDate:    strings.TrimSpace(v["fecha_codigo"]),
	}
}

// Payload omits an empty code and code date so the backend keeps its own.
func (u User) Payload() map[string]any {
	p := map[string]any{
		"id_expositor": u.ExhibitorID.Int64(),
		"email":        u.Email,
		"nombre":       u.Name,
		"admin":        u.Admin.Int(),
	}
	if u.Code != "" {
		p["codigo"] = u.Code
	}
	if u.CodeDate != "" {
		p["fecha_codigo"] = u.CodeDate
	}
	if u.ID != 0 {
		p[constants.IDField] = u.ID.Int64()
	}
	return p
}

// ExhibitorOption is one entry of the exhibitor picker.
type ExhibitorOption struct {
	ID   int64
	Name string
}

func (o *ExhibitorOption) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              utils.ID `json:"_id"`
		AltID           utils.ID `json:"id"`
		IDExpositor     utils.ID `json:"id_expositor"`
		ExpositorID     utils.ID `json:"expositor_id"`
		Nombre          string   `json:"nombre"`
		NombreExpositor string   `json:"nombre_expositor"`
		ExpositorNombre string   `json:"expositor_nombre"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, id := range []utils.ID{raw.ID, raw.AltID, raw.IDExpositor, raw.ExpositorID} {
		if id != 0 {
			o.ID = id.Int64()
			break
		}
	}
	o.Name = utils.FirstNonEmpty(raw.Nombre, raw.NombreExpositor, raw.ExpositorNombre,
		"Expositor #"+strconv.FormatInt(o.ID, 10))
	return nil
}

// Value is the option value submitted as id_expositor.
func (o ExhibitorOption) Value() string {
	return strconv.FormatInt(o.ID, 10)
}

// ValidOptions drops entries without a usable id.
func ValidOptions(opts []ExhibitorOption) []ExhibitorOption {
	return mapper.Filter(opts, func(o ExhibitorOption) bool { return o.ID > 0 })
}
