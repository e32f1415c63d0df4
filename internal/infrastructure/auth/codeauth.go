package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"expopanel/internal/domain/session"
	"expopanel/internal/shared/errors"
)

const (
	actionRequestCode = "request_code"
	actionVerifyCode  = "verify_code"
)

var (
	// ErrInvalidUser is returned when the backend does not know the email.
	ErrInvalidUser = errors.New("invalid user")
	// ErrInvalidCode is returned when the code is wrong or expired.
	ErrInvalidCode = errors.New("invalid or expired code")
	// ErrNoToken is returned when verification succeeds without a token.
	ErrNoToken = errors.New("no token received")
)

// Poster is the part of the gateway the code login needs.
type Poster interface {
	Post(ctx context.Context, path string, body any, out any) error
}

// CodeAuthenticator drives the passwordless email code login.
type CodeAuthenticator struct {
	client Poster
	path   string
}

func NewCodeAuthenticator(client Poster, path string) *CodeAuthenticator {
	return &CodeAuthenticator{client: client, path: path}
}

// RequestCode asks the backend to email a one-time code.
func (a *CodeAuthenticator) RequestCode(ctx context.Context, email string) error {
	body := map[string]any{
		"action": actionRequestCode,
		"email":  email,
	}
	if err := a.client.Post(ctx, a.path, body, nil); err != nil {
		return mapAuthError(err, ErrInvalidUser)
	}
	return nil
}

// VerifyCode exchanges email+code for a token and user.
func (a *CodeAuthenticator) VerifyCode(ctx context.Context, email, code string) (*session.Credentials, error) {
	body := map[string]any{
		"action": actionVerifyCode,
		"email":  email,
		"code":   code,
	}

	var raw json.RawMessage
	if err := a.client.Post(ctx, a.path, body, &raw); err != nil {
		return nil, mapAuthError(err, ErrInvalidCode)
	}

	var result session.Credentials
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, errors.NewDecodeError("decode verify response", err)
		}
	}
	if strings.TrimSpace(result.Token) == "" {
		return nil, ErrNoToken
	}
	return &result, nil
}

// mapAuthError turns a client rejection into the user-facing sentinel and
// leaves server and network failures untouched.
func mapAuthError(err error, rejected error) error {
	tErr, ok := errors.AsTransportError(err)
	if !ok {
		return err
	}
	if tErr.Status >= http.StatusBadRequest && tErr.Status < http.StatusInternalServerError {
		return fmt.Errorf("%w: %s", rejected, tErr.Body)
	}
	return err
}
