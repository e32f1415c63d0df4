package session

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expopanel/internal/shared/authorization"
)

func TestUser_UnmarshalNumericID(t *testing.T) {
	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"id":12,"email":"a@b.co","name":"Ana","role":"admin"}`), &u))
	assert.Equal(t, UserID("12"), u.ID)
	assert.Equal(t, authorization.RoleAdmin, u.Role)

	require.NoError(t, json.Unmarshal([]byte(`{"id":"u-9"}`), &u))
	assert.Equal(t, UserID("u-9"), u.ID)
}

func TestUser_Normalized(t *testing.T) {
	u := User{Email: " ana@expo.com ", Role: "root"}.Normalized()
	assert.Equal(t, "ana@expo.com", u.Email)
	assert.Equal(t, authorization.RoleUser, u.Role)
}

func TestClaims_User(t *testing.T) {
	c := Claims{Subject: "42", Email: "x@y.z", Role: "admin", ExpiresAt: time.Unix(10, 0)}
	u := c.User()
	assert.Equal(t, UserID("42"), u.ID)
	assert.Equal(t, authorization.RoleAdmin, u.Role)
	assert.True(t, c.HasExpiry())

	c = Claims{ID: "7", Subject: "42"}
	assert.Equal(t, UserID("7"), c.User().ID)
	assert.Equal(t, authorization.RoleUser, c.User().Role)
	assert.False(t, c.HasExpiry())
}

func TestSession_IsAuthenticated(t *testing.T) {
	assert.False(t, Session{}.IsAuthenticated())
	assert.False(t, Session{Token: "t"}.IsAuthenticated())
	assert.True(t, Session{Token: "t", User: &User{}}.IsAuthenticated())
}
