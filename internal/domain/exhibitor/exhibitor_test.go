package exhibitor

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expopanel/internal/shared/utils"
)

func TestExhibitor_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID utils.ID
		active bool
	}{
		{"underscore id", `{"_id": 4, "nombre": "Envases SA", "activo": 1}`, 4, true},
		{"string id", `{"_id": "5", "activo": "0"}`, 5, false},
		{"plain id fallback", `{"id": 6, "activo": "1"}`, 6, true},
		{"underscore wins", `{"_id": 7, "id": 8}`, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Exhibitor
			require.NoError(t, json.Unmarshal([]byte(tt.body), &e))
			assert.Equal(t, tt.wantID, e.ID)
			assert.Equal(t, tt.active, bool(e.Active))
		})
	}
}

func TestExhibitor_Cells(t *testing.T) {
	e := Exhibitor{
		ID:          3,
		Name:        "Envases SA",
		Description: "<p>" + strings.Repeat("a", 200) + "</p>",
		Logo:        "envases.jpg",
		Active:      true,
	}

	cells := e.Cells("https://cdn.example.com/expositores/")

	assert.Equal(t, int64(3), cells["_id"])
	assert.Equal(t, "Envases SA", cells["name"])
	assert.Equal(t, "—", cells["email"])
	assert.Equal(t, "Sí", cells["activo"])
	assert.Equal(t, "https://cdn.example.com/expositores/envases.jpg", cells["logo"])

	desc := cells["descripcion"].(string)
	assert.Equal(t, strings.Repeat("a", DescriptionClip)+"…", desc, "markup stripped then clipped")
}

func TestExhibitor_ValuesRoundTrip(t *testing.T) {
	in := map[string]string{
		"_id":         "9",
		"nombre":      "Etiquetas Norte",
		"email":       "ventas@norte.com",
		"descripcion": "Etiquetas autoadhesivas",
		"activo":      "1",
	}

	e := FromValues(in)
	out := e.Values()
	for k, v := range in {
		assert.Equal(t, v, out[k], k)
	}
}

func TestExhibitor_Payload(t *testing.T) {
	create := Exhibitor{Name: "Nuevo", Active: true}.Payload()
	_, hasID := create["_id"]
	assert.False(t, hasID, "create carries no id")
	assert.Equal(t, 1, create["activo"])

	update := Exhibitor{ID: 12, Name: "Nuevo"}.Payload()
	assert.Equal(t, int64(12), update["_id"])
	assert.Equal(t, 0, update["activo"])
}
