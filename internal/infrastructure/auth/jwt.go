package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"expopanel/internal/domain/session"
)

// Claims are the fields the backend puts in its tokens.
type Claims struct {
	UserID session.UserID `json:"id"`
	Email  string         `json:"email"`
	Name   string         `json:"name"`
	Role   string         `json:"role"`
	jwt.RegisteredClaims
}

// TokenDecoder reads claims without verifying the signature. The client has
// no key; the backend remains the only authority on validity.
type TokenDecoder struct {
	parser *jwt.Parser
}

func NewTokenDecoder() *TokenDecoder {
	return &TokenDecoder{parser: jwt.NewParser()}
}

// Decode returns the advisory claims of token. A token whose payload cannot
// be read yields an error; a readable token without exp yields claims with
// a zero ExpiresAt.
func (d *TokenDecoder) Decode(token string) (session.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return session.Claims{}, fmt.Errorf("empty token")
	}

	var claims Claims
	if _, _, err := d.parser.ParseUnverified(token, &claims); err != nil {
		return session.Claims{}, fmt.Errorf("failed to decode token: %w", err)
	}

	out := session.Claims{
		Subject: claims.Subject,
		ID:      string(claims.UserID),
		Email:   claims.Email,
		Name:    claims.Name,
		Role:    claims.Role,
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}
