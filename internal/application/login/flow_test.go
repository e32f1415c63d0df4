package login

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expopanel/internal/application/session"
	domain "expopanel/internal/domain/session"
	"expopanel/internal/infrastructure/auth"
	"expopanel/internal/infrastructure/gateway"
	"expopanel/internal/infrastructure/kvstore"
	"expopanel/internal/shared/authorization"
	"expopanel/internal/shared/clock"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
	"expopanel/internal/testutil/fakeapi"
)

const staffEmail = "maria@expo.com"

type fixture struct {
	srv   *fakeapi.Server
	flow  *Flow
	store *session.Store
	clock *clock.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := fakeapi.New()
	t.Cleanup(srv.Close)
	srv.AddAccount(fakeapi.Account{ID: 7, Email: staffEmail, Name: "María", Role: "admin"})

	fake := clock.NewFake(time.Now())
	store := session.NewStore(kvstore.NewMemoryStore(), auth.NewTokenDecoder(), logger.NewNop(),
		session.WithClock(fake))
	t.Cleanup(store.Close)

	client := gateway.NewClient(srv.URL, gateway.TokenFunc(store.Token))
	authenticator := auth.NewCodeAuthenticator(client, "users/")
	flow := NewFlow(authenticator, store, logger.NewNop(),
		WithClock(fake), WithCooldown(30*time.Second))

	return &fixture{srv: srv, flow: flow, store: store, clock: fake}
}

func TestFlow_MalformedEmailSendsNothing(t *testing.T) {
	tests := []string{"", "maria", "maria@", "@expo.com", "maria expo@expo.com"}

	for _, email := range tests {
		t.Run(email, func(t *testing.T) {
			f := newFixture(t)
			f.flow.SetEmail(email)

			assert.False(t, f.flow.CanSendEmail())
			assert.ErrorIs(t, f.flow.RequestCode(context.Background()), ErrInvalidEmail)
			assert.Equal(t, StepEmail, f.flow.Step())
			assert.Empty(t, f.srv.Requests(), "no network call")
		})
	}
}

func TestFlow_EmailIsNormalized(t *testing.T) {
	f := newFixture(t)
	f.flow.SetEmail("  Maria@Expo.COM ")

	require.True(t, f.flow.CanSendEmail())
	require.NoError(t, f.flow.RequestCode(context.Background()))

	reqs := f.srv.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, staffEmail, reqs[0].Body["email"])
	assert.Equal(t, "request_code", reqs[0].Body["action"])
	assert.Equal(t, "ma***@expo.com", f.flow.MaskedEmail())
}

func TestFlow_FullLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.flow.SetEmail(staffEmail)
	require.NoError(t, f.flow.RequestCode(ctx))
	assert.Equal(t, StepCode, f.flow.Step())
	assert.False(t, f.flow.CanVerify(), "no code typed yet")
	assert.ErrorIs(t, f.flow.Verify(ctx), ErrEmptyCode)

	f.flow.SetCode(" " + f.srv.Code(staffEmail) + " ")
	require.True(t, f.flow.CanVerify())
	require.NoError(t, f.flow.Verify(ctx))

	require.True(t, f.store.IsAuthenticated())
	user := f.store.User()
	assert.Equal(t, staffEmail, user.Email)
	assert.Equal(t, authorization.RoleAdmin, user.Role)
	assert.False(t, f.store.ExpiresAt().IsZero(), "expiry armed from the token")
	assert.Empty(t, f.flow.Message())
}

func TestFlow_UnknownEmail(t *testing.T) {
	f := newFixture(t)
	f.flow.SetEmail("nobody@expo.com")

	err := f.flow.RequestCode(context.Background())

	assert.ErrorIs(t, err, auth.ErrInvalidUser)
	assert.Equal(t, StepEmail, f.flow.Step())
	assert.Equal(t, "Invalid user. Check the email.", f.flow.Message())
	assert.False(t, f.flow.Submitting())
}

func TestFlow_WrongCode(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.flow.SetEmail(staffEmail)
	require.NoError(t, f.flow.RequestCode(ctx))

	f.flow.SetCode("000000")
	err := f.flow.Verify(ctx)

	assert.ErrorIs(t, err, auth.ErrInvalidCode)
	assert.Equal(t, "Invalid or expired code.", f.flow.Message())
	assert.False(t, f.store.IsAuthenticated())
	assert.Equal(t, StepCode, f.flow.Step(), "user can retry")
}

func TestFlow_ResendCooldown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.flow.SetEmail(staffEmail)

	assert.ErrorIs(t, f.flow.Resend(ctx), ErrWrongStep)
	require.NoError(t, f.flow.RequestCode(ctx))
	assert.Equal(t, 30*time.Second, f.flow.CooldownRemaining())

	f.clock.Advance(10 * time.Second)
	err := f.flow.Resend(ctx)
	assert.ErrorIs(t, err, ErrCooldown)
	assert.Contains(t, err.Error(), "retry in 20s")
	assert.Len(t, f.srv.Requests(), 1, "refused resend sends nothing")

	f.clock.Advance(21 * time.Second)
	assert.Zero(t, f.flow.CooldownRemaining())
	require.NoError(t, f.flow.Resend(ctx))
	assert.Len(t, f.srv.Requests(), 2)

	// the cooldown restarts after every send
	assert.Equal(t, 30*time.Second, f.flow.CooldownRemaining())
}

func TestFlow_ChangeEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.flow.SetEmail(staffEmail)
	require.NoError(t, f.flow.RequestCode(ctx))
	f.flow.SetCode("123")

	f.flow.ChangeEmail()

	assert.Equal(t, StepEmail, f.flow.Step())
	assert.False(t, f.flow.CanVerify())
	assert.ErrorIs(t, f.flow.Verify(ctx), ErrWrongStep)
}

// gatedAuthenticator holds every code request until release is closed.
type gatedAuthenticator struct {
	started chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (a *gatedAuthenticator) RequestCode(context.Context, string) error {
	if a.calls.Add(1) == 1 {
		close(a.started)
	}
	<-a.release
	return nil
}

func (a *gatedAuthenticator) VerifyCode(context.Context, string, string) (*domain.Credentials, error) {
	return nil, errors.New("not used")
}

func TestFlow_ConcurrentSendsOnce(t *testing.T) {
	gate := &gatedAuthenticator{started: make(chan struct{}), release: make(chan struct{})}
	flow := NewFlow(gate, nil, logger.NewNop(), WithClock(clock.NewFake(time.Now())))
	flow.SetEmail(staffEmail)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- flow.RequestCode(ctx) }()
	<-gate.started

	assert.True(t, flow.Submitting())
	assert.False(t, flow.CanSendEmail())

	var wg sync.WaitGroup
	busy := make([]error, 8)
	for i := range busy {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			busy[i] = flow.RequestCode(ctx)
		}()
	}
	wg.Wait()
	for _, err := range busy {
		assert.ErrorIs(t, err, ErrBusy)
	}

	close(gate.release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), gate.calls.Load())
	assert.Equal(t, StepCode, flow.Step())
}
