// Package exhibitor defines the exhibiting company record.
package exhibitor

import (
	"encoding/json"
	"strconv"
	"strings"

	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/utils"
)

// LogoField is the multipart field the logo file is sent under.
const LogoField = "logo"

// DescriptionClip is how many characters of a description a table cell shows.
const DescriptionClip = 140

type Exhibitor struct {
	ID           utils.ID   `json:"_id"`
	Name         string     `json:"nombre" validate:"notblank"`
	Email        string     `json:"email" validate:"omitempty,email"`
	Phone        string     `json:"telefono"`
	Web          string     `json:"web"`
	Brands       string     `json:"marcas"`
	Address      string     `json:"domicilio"`
	PostalCode   string     `json:"cp"`
	City         string     `json:"localidad"`
	Province     string     `json:"provincia"`
	Country      string     `json:"pais"`
	Description  string     `json:"descripcion"`
	DescriptionI string     `json:"descripcion_i"`
	Logo         string     `json:"logo"`
	Active       utils.Flag `json:"activo"`
}

func (e *Exhibitor) UnmarshalJSON(data []byte) error {
	type alias Exhibitor
	aux := struct {
		*alias
		AltID utils.ID `json:"id"`
	}{alias: (*alias)(e)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if e.ID == 0 {
		e.ID = aux.AltID
	}
	return nil
}

// Label names the exhibitor in confirmations.
func (e Exhibitor) Label() string {
	return utils.FirstNonEmpty(e.Name, e.Email, "#"+e.ID.String())
}

// LogoURL resolves the stored logo file name against base. Absolute URLs
// are returned unchanged.
func (e Exhibitor) LogoURL(base string) string {
	return utils.ImageURL(base, e.Logo)
}

// Cells is the display projection used by the table.
func (e Exhibitor) Cells(imageBase string) map[string]any {
	return map[string]any{
		constants.IDField: e.ID.Int64(),
		"name":            utils.Display(e.Name),
		"email":           utils.Display(e.Email),
		"telefono":        utils.Display(e.Phone),
		"web":             utils.Display(e.Web),
		"marcas":          utils.Display(e.Brands),
		"domicilio":       utils.Display(e.Address),
		"cp":              utils.Display(e.PostalCode),
		"localidad":       utils.Display(e.City),
		"provincia":       utils.Display(e.Province),
		"pais":            utils.Display(e.Country),
		"descripcion":     utils.Clip(e.Description, DescriptionClip),
		"descripcion_i":   utils.Clip(e.DescriptionI, DescriptionClip),
		"activo":          e.Active.YesNo(),
		"logo":            e.LogoURL(imageBase),
	}
}

// Values are the unformatted form values of the record.
func (e Exhibitor) Values() map[string]string {
	v := map[string]string{
		"nombre":        e.Name,
		"email":         e.Email,
		"telefono":      e.Phone,
		"web":           e.Web,
		"marcas":        e.Brands,
		"domicilio":     e.Address,
		"cp":            e.PostalCode,
		"localidad":     e.City,
		"provincia":     e.Province,
		"pais":          e.Country,
		"descripcion":   e.Description,
		"descripcion_i": e.DescriptionI,
		"logo":          e.Logo,
		"activo":        strconv.Itoa(e.Active.Int()),
	}
	if e.ID != 0 {
		v[constants.IDField] = e.ID.String()
	}
	return v
}

// FromValues builds a record from form values.
func FromValues(v map[string]string) Exhibitor {
	id, _ := utils.ParseID(v[constants.IDField])
	return Exhibitor{
		ID:           utils.ID(id),
		Name:         strings.TrimSpace(v["nombre"]),
		Email:        strings.TrimSpace(v["email"]),
		Phone:        strings.TrimSpace(v["telefono"]),
		Web:          strings.TrimSpace(v["web"]),
		Brands:       strings.TrimSpace(v["marcas"]),
		Address:      strings.TrimSpace(v["domicilio"]),
		PostalCode:   strings.TrimSpace(v["cp"]),
		City:         strings.TrimSpace(v["localidad"]),
		Province:     strings.TrimSpace(v["provincia"]),
		Country:      strings.TrimSpace(v["pais"]),
		Description:  v["descripcion"],
		DescriptionI: v["descripcion_i"],
		Logo:         strings.TrimSpace(v["logo"]),
		Active:       utils.Flag(utils.ParseFlag(v["activo"])),
	}
}

// Payload is the body accepted by the mutation endpoint. The id is only
// present for updates.
func (e Exhibitor) Payload() map[string]any {
	p := map[string]any{
		"email":         e.Email,
		"nombre":        e.Name,
		"domicilio":     e.Address,
		"cp":            e.PostalCode,
		"localidad":     e.City,
		"provincia":     e.Province,
		"pais":          e.Country,
		"telefono":      e.Phone,
		"web":           e.Web,
		"marcas":        e.Brands,
		"descripcion":   e.Description,
		"descripcion_i": e.DescriptionI,
		"logo":          e.Logo,
		"activo":        e.Active.Int(),
	}
	if e.ID != 0 {
		p[constants.IDField] = e.ID.Int64()
	}
	return p
}
