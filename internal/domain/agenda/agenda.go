// Package agenda defines an exhibition agenda item (talk, workshop, event).
package agenda

import (
	"encoding/json"
	"strconv"
	"strings"

	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/utils"
)

const DescriptionClip = 140

type Item struct {
	ID          utils.ID   `json:"_id"`
	Name        string     `json:"nombre" validate:"notblank"`
	Speaker     string     `json:"orador"`
	Place       string     `json:"lugar"`
	Description string     `json:"descripcion"`
	StartsAt    string     `json:"fecha_hora" validate:"notblank"`
	Active      utils.Flag `json:"activo"`
}

func (it *Item) UnmarshalJSON(data []byte) error {
	type alias Item
	aux := struct {
		*alias
		AltID utils.ID `json:"id"`
	}{alias: (*alias)(it)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if it.ID == 0 {
		it.ID = aux.AltID
	}
	return nil
}

func (it Item) Label() string {
	return utils.FirstNonEmpty(it.Name, "#"+it.ID.String())
}

func (it Item) Cells() map[string]any {
	return map[string]any{
		constants.IDField: it.ID.Int64(),
		"nombre":          utils.Display(it.Name),
		"orador":          utils.Display(it.Speaker),
		"lugar":           utils.Display(it.Place),
		"descripcion":     utils.Clip(it.Description, DescriptionClip),
		"fecha_hora":      utils.DisplayDateTime(it.StartsAt),
		"activo":          it.Active.YesNo(),
	}
}

// Values are the form values. The date is shown as "YYYY-MM-DD HH:mm".
func (it Item) Values() map[string]string {
	v := map[string]string{
		"nombre":      it.Name,
		"orador":      it.Speaker,
		"lugar":       it.Place,
		"descripcion": it.Description,
		"fecha_hora":  formDateTime(it.StartsAt),
		"activo":      strconv.Itoa(it.Active.Int()),
	}
	if it.ID != 0 {
		v[constants.IDField] = it.ID.String()
	}
	return v
}

func FromValues(v map[string]string) Item {
	id, _ := utils.ParseID(v[constants.IDField])
	return Item{
		ID:          utils.ID(id),
		Name:        strings.TrimSpace(v["nombre"]),
		Speaker:     strings.TrimSpace(v["orador"]),
		Place:       strings.TrimSpace(v["lugar"]),
		Description: v["descripcion"],
		StartsAt:    strings.TrimSpace(v["fecha_hora"]),
		Active:      utils.Flag(utils.ParseFlag(v["activo"])),
	}
}

// Payload normalizes the date to "YYYY-MM-DD HH:mm:ss" for the backend.
func (it Item) Payload() map[string]any {
	p := map[string]any{
		"nombre":      it.Name,
		"orador":      it.Speaker,
		"lugar":       it.Place,
		"descripcion": it.Description,
		"fecha_hora":  utils.ToSQLDateTime(it.StartsAt),
		"activo":      it.Active.Int(),
	}
	if it.ID != 0 {
		p[constants.IDField] = it.ID.Int64()
	}
	return p
}

func formDateTime(s string) string {
	s = strings.Replace(strings.TrimSpace(s), "T", " ", 1)
	if len(s) >= 16 {
		return s[:16]
	}
	return s
}
