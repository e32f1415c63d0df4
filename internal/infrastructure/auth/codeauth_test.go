package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expopanel/internal/infrastructure/gateway"
	"expopanel/internal/shared/authorization"
	"expopanel/internal/shared/errors"
	"expopanel/internal/testutil/fakeapi"
)

func newTestAuthenticator(t *testing.T) (*CodeAuthenticator, *fakeapi.Server) {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.AddAccount(fakeapi.Account{ID: 3, Email: "ana@expo.com", Name: "Ana", Role: "admin"})

	client := gateway.NewClient(srv.URL, nil)
	return NewCodeAuthenticator(client, "users/"), srv
}

func TestCodeAuthenticator_RoundTrip(t *testing.T) {
	ctx := context.Background()
	a, srv := newTestAuthenticator(t)

	require.NoError(t, a.RequestCode(ctx, "ana@expo.com"))
	code := srv.Code("ana@expo.com")
	require.NotEmpty(t, code)

	result, err := a.VerifyCode(ctx, "ana@expo.com", code)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	require.NotNil(t, result.User)
	assert.Equal(t, authorization.RoleAdmin, result.User.Role)
	assert.EqualValues(t, "3", result.User.ID)

	claims, err := NewTokenDecoder().Decode(result.Token)
	require.NoError(t, err)
	assert.True(t, claims.HasExpiry())

	reqs := srv.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "request_code", reqs[0].Body["action"])
	assert.Equal(t, "verify_code", reqs[1].Body["action"])
	assert.Equal(t, code, reqs[1].Body["code"])
}

func TestCodeAuthenticator_UnknownEmail(t *testing.T) {
	a, _ := newTestAuthenticator(t)

	err := a.RequestCode(context.Background(), "nobody@expo.com")
	assert.ErrorIs(t, err, ErrInvalidUser)
}

func TestCodeAuthenticator_WrongCode(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestAuthenticator(t)

	require.NoError(t, a.RequestCode(ctx, "ana@expo.com"))
	_, err := a.VerifyCode(ctx, "ana@expo.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestCodeAuthenticator_ServerErrorKept(t *testing.T) {
	a, srv := newTestAuthenticator(t)
	srv.FailNext(http.MethodPost, "/users/", 1)

	err := a.RequestCode(context.Background(), "ana@expo.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidUser)
	_, ok := errors.AsTransportError(err)
	assert.True(t, ok)
}

type stubPoster struct {
	response string
}

func (s stubPoster) Post(_ context.Context, _ string, _ any, out any) error {
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = json.RawMessage(s.response)
	}
	return nil
}

func TestCodeAuthenticator_NoToken(t *testing.T) {
	a := NewCodeAuthenticator(stubPoster{response: `{"status":"ok"}`}, "users/")

	_, err := a.VerifyCode(context.Background(), "ana@expo.com", "1")
	assert.ErrorIs(t, err, ErrNoToken)
}
