package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expopanel/internal/shared/errors"
)

func TestID_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ID
	}{
		{name: "number", in: `7`, want: 7},
		{name: "numeric string", in: `"7"`, want: 7},
		{name: "float number", in: `7.0`, want: 7},
		{name: "null", in: `null`, want: 0},
		{name: "empty string", in: `""`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			require.NoError(t, json.Unmarshal([]byte(tt.in), &id))
			assert.Equal(t, tt.want, id)
		})
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &id))
}

func TestFlag_RoundTrip(t *testing.T) {
	for _, in := range []string{`1`, `"1"`, `true`, `"true"`, `"Sí"`, `"si"`} {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.True(t, bool(f), in)
	}
	for _, in := range []string{`0`, `"0"`, `false`, `null`, `"no"`} {
		var f Flag
		require.NoError(t, json.Unmarshal([]byte(in), &f), in)
		assert.False(t, bool(f), in)
	}

	out, err := json.Marshal(struct {
		Activo Flag `json:"activo"`
	}{Activo: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"activo":1}`, string(out))
	assert.Equal(t, "Sí", Flag(true).YesNo())
}

func TestClip(t *testing.T) {
	assert.Equal(t, "—", Clip("", 10))
	assert.Equal(t, "short", Clip("short", 10))
	assert.Equal(t, "abcde…", Clip("abcdefghij", 5))
	assert.Equal(t, "Stand A & B", Clip("<p>Stand <b>A</b> &amp; B</p>", 50))
}

func TestDateTimeHelpers(t *testing.T) {
	assert.Equal(t, "2025-09-01 10:30", DisplayDateTime("2025-09-01T10:30:00"))
	assert.Equal(t, "—", DisplayDateTime(""))
	assert.Equal(t, "2025-09-01 10:30:00", ToSQLDateTime("2025-09-01T10:30"))
	assert.Equal(t, "2025-09-01 10:30:15", ToSQLDateTime("2025-09-01 10:30:15"))
	assert.Equal(t, "mañana", ToSQLDateTime("mañana"))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "ma***@example.com", MaskEmail("maria@example.com"))
	assert.Equal(t, "jo@example.com", MaskEmail("jo@example.com"))
	assert.Equal(t, "not-an-email", MaskEmail("not-an-email"))
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Nombre string `json:"nombre" validate:"notblank"`
		Email  string `json:"email" validate:"omitempty,email"`
	}

	assert.NoError(t, ValidateStruct(form{Nombre: "Acme"}))

	err := ValidateStruct(form{Nombre: "   ", Email: "nope"})
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "nombre is required")
	assert.Contains(t, err.Error(), "email must be a valid email address")
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("staff@expo.com.ar"))
	assert.False(t, IsValidEmail("staff@"))
	assert.False(t, IsValidEmail(""))
}

func TestImageURL(t *testing.T) {
	tests := []struct {
		base, name, want string
	}{
		{"https://cdn/x/", "a.jpg", "https://cdn/x/a.jpg"},
		{"https://cdn/x", "/a.jpg", "https://cdn/x/a.jpg"},
		{"https://cdn/x/", "https://other/a.jpg", "https://other/a.jpg"},
		{"", "a.jpg", "a.jpg"},
		{"https://cdn/x/", "  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ImageURL(tt.base, tt.name), tt.base+tt.name)
	}
}
