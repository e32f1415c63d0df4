// Package session defines the authenticated staff identity held client-side.
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"expopanel/internal/shared/authorization"
)

// UserID accepts numeric or string identifiers from the backend.
type UserID string

func (id *UserID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UserID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = UserID(n.String())
	return nil
}

type User struct {
	ID    UserID                 `json:"id"`
	Email string                 `json:"email"`
	Name  string                 `json:"name"`
	Role  authorization.UserRole `json:"role"`
}

// Normalized returns a copy with the role folded into a known value.
func (u User) Normalized() User {
	u.Role = authorization.ParseUserRole(string(u.Role))
	u.Email = strings.TrimSpace(u.Email)
	return u
}

// Credentials are the session material returned by a successful code
// verification.
type Credentials struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

// Session is a point-in-time view of the store. Token and User are either
// both set or both empty.
type Session struct {
	Token     string
	User      *User
	ExpiresAt time.Time
}

func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// Storage is the durable key-value store the session is persisted to.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Claims is the advisory, unverified view of a bearer token.
type Claims struct {
	ExpiresAt time.Time
	Subject   string
	ID        string
	Email     string
	Name      string
	Role      string
}

// HasExpiry reports whether the token carried an exp claim.
func (c Claims) HasExpiry() bool {
	return !c.ExpiresAt.IsZero()
}

// User builds a fallback identity from the token claims.
func (c Claims) User() User {
	id := c.ID
	if id == "" {
		id = c.Subject
	}
	return User{
		ID:    UserID(id),
		Email: c.Email,
		Name:  c.Name,
		Role:  authorization.ParseUserRole(c.Role),
	}
}

// TokenDecoder reads claims without verifying the signature. Decoding is
// advisory; the backend stays the only authority on token validity.
type TokenDecoder interface {
	Decode(token string) (Claims, error)
}
