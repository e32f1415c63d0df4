package banner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBanner_Decode(t *testing.T) {
	var b Banner
	body := `{"_id":"8","nombre":"Promo","imagen":"promo.png","activo":true,"app":"1","id_exposicion":2}`
	require.NoError(t, json.Unmarshal([]byte(body), &b))

	cells := b.Cells("https://cdn/banners/")
	assert.Equal(t, int64(8), cells["_id"])
	assert.Equal(t, "https://cdn/banners/promo.png", cells["imagen"])
	assert.Equal(t, "—", cells["link"])
	assert.Equal(t, "Sí", cells["activo"])
	assert.Equal(t, "Promo", b.Label())
}

func TestBanner_Payloads(t *testing.T) {
	b := FromValues(map[string]string{"_id": "4", "nombre": "Promo", "activo": "sí", "app": "1"})

	assert.Equal(t, map[string]any{
		"_id": int64(4), "nombre": "Promo", "link": "", "activo": 1, "app": 1,
	}, b.Payload())

	assert.Equal(t, 0, b.MultipartPayload()["app"], "uploads force app off")
	assert.Equal(t, 1, b.Payload()["app"], "json payload untouched")
}

func TestDeletePath(t *testing.T) {
	assert.Equal(t, "banners/ID/15", DeletePath("banners/", 15))
}
