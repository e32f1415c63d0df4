// Package banner defines the promotional banners shown in the visitor app.
package banner

import (
	"encoding/json"
	"strconv"
	"strings"

	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/utils"
)

// ImageField is the multipart field the banner image is sent under.
const ImageField = "imagen"

type Banner struct {
	ID           utils.ID   `json:"_id"`
	Name         string     `json:"nombre" validate:"notblank"`
	Image        string     `json:"imagen"`
	Link         string     `json:"link"`
	Active       utils.Flag `json:"activo"`
	App          utils.Flag `json:"app"`
	ExhibitionID utils.ID   `json:"id_exposicion"`
}

func (b *Banner) UnmarshalJSON(data []byte) error {
	type alias Banner
	aux := struct {
		*alias
		AltID utils.ID `json:"id"`
	}{alias: (*alias)(b)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if b.ID == 0 {
		b.ID = aux.AltID
	}
	return nil
}

func (b Banner) Label() string {
	return utils.FirstNonEmpty(b.Name, "#"+b.ID.String())
}

func (b Banner) ImageURL(base string) string {
	return utils.ImageURL(base, b.Image)
}

func (b Banner) Cells(imageBase string) map[string]any {
	return map[string]any{
		constants.IDField: b.ID.Int64(),
		"nombre":          utils.Display(b.Name),
		"imagen":          b.ImageURL(imageBase),
		"link":            utils.Display(b.Link),
		"activo":          b.Active.YesNo(),
	}
}

func (b Banner) Values() map[string]string {
	v := map[string]string{
		"nombre": b.Name,
		"link":   b.Link,
		"activo": strconv.Itoa(b.Active.Int()),
		"app":    strconv.Itoa(b.App.Int()),
	}
	if b.ID != 0 {
		v[constants.IDField] = b.ID.String()
	}
	return v
}

func FromValues(v map[string]string) Banner {
	id, _ := utils.ParseID(v[constants.IDField])
	return Banner{
		ID:     utils.ID(id),
		Name:   strings.TrimSpace(v["nombre"]),
		Link:   strings.TrimSpace(v["link"]),
		Active: utils.Flag(utils.ParseFlag(v["activo"])),
		App:    utils.Flag(utils.ParseFlag(v["app"])),
	}
}

// Payload is the JSON body used when no image accompanies the banner.
func (b Banner) Payload() map[string]any {
	p := map[string]any{
		"nombre": b.Name,
		"link":   b.Link,
		"activo": b.Active.Int(),
		"app":    b.App.Int(),
	}
	if b.ID != 0 {
		p[constants.IDField] = b.ID.Int64()
	}
	return p
}

// MultipartPayload is sent alongside an image upload. Uploaded banners are
// never flagged for the app.
func (b Banner) MultipartPayload() map[string]any {
	p := b.Payload()
	p["app"] = 0
	return p
}

// DeletePath is the per-id delete route under the mutation base.
func DeletePath(base string, id int64) string {
	return base + "ID/" + strconv.FormatInt(id, 10)
}
