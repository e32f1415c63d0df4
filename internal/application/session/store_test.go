package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "expopanel/internal/domain/session"
	"expopanel/internal/infrastructure/auth"
	"expopanel/internal/infrastructure/kvstore"
	"expopanel/internal/shared/authorization"
	"expopanel/internal/shared/clock"
	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
)

var epoch = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *Store
	storage *kvstore.MemoryStore
	clock   *clock.Fake
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	fake := clock.NewFake(epoch)
	storage := kvstore.NewMemoryStore()
	opts = append([]Option{WithClock(fake)}, opts...)
	store := NewStore(storage, auth.NewTokenDecoder(), logger.NewNop(), opts...)
	t.Cleanup(store.Close)
	return &fixture{store: store, storage: storage, clock: fake}
}

func tokenExpiringIn(t *testing.T, d time.Duration) string {
	t.Helper()
	return signClaims(t, jwt.MapClaims{
		"id":    7,
		"email": "ana@expo.com",
		"role":  "admin",
		"exp":   epoch.Add(d).Unix(),
	})
}

func signClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only"))
	require.NoError(t, err)
	return token
}

func testUser() *domain.User {
	return &domain.User{ID: "7", Email: "ana@expo.com", Name: "Ana", Role: authorization.RoleAdmin}
}

func (f *fixture) stored(t *testing.T, key string) (string, bool) {
	t.Helper()
	v, ok, err := f.storage.Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestStore_ExpiresAfterTwoSeconds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, tokenExpiringIn(t, 2*time.Second), testUser()))
	assert.True(t, f.store.IsAuthenticated())
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(1900 * time.Millisecond)
	assert.True(t, f.store.IsAuthenticated())

	f.clock.Advance(200 * time.Millisecond)
	assert.False(t, f.store.IsAuthenticated())
	assert.Empty(t, f.store.Token())
	assert.Nil(t, f.store.User())

	_, ok := f.stored(t, constants.StorageKeyToken)
	assert.False(t, ok)
	_, ok = f.stored(t, constants.StorageKeyUser)
	assert.False(t, ok)
}

func TestStore_LoginPersistsBothKeys(t *testing.T) {
	f := newFixture(t)
	token := tokenExpiringIn(t, time.Hour)

	require.NoError(t, f.store.Login(context.Background(), token, testUser()))

	v, ok := f.stored(t, constants.StorageKeyToken)
	assert.True(t, ok)
	assert.Equal(t, token, v)

	v, ok = f.stored(t, constants.StorageKeyUser)
	assert.True(t, ok)
	assert.JSONEq(t, `{"id":"7","email":"ana@expo.com","name":"Ana","role":"admin"}`, v)
	assert.Equal(t, epoch.Add(time.Hour), f.store.ExpiresAt())
	assert.Equal(t, time.UTC, f.store.ExpiresAt().Location())
}

func TestStore_LoginRejectsPartialSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.store.Login(ctx, "", testUser())
	assert.True(t, errors.IsValidationError(err))

	err = f.store.Login(ctx, tokenExpiringIn(t, time.Hour), nil)
	assert.True(t, errors.IsValidationError(err))

	assert.False(t, f.store.IsAuthenticated())
	_, ok := f.stored(t, constants.StorageKeyToken)
	assert.False(t, ok)
}

func TestStore_ReloginReplacesTimer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Login(ctx, tokenExpiringIn(t, 2*time.Second), testUser()))
	require.NoError(t, f.store.Login(ctx, tokenExpiringIn(t, time.Hour), testUser()))
	assert.Equal(t, 1, f.clock.Pending())

	// the first session's timer must not log out the second session
	f.clock.Advance(3 * time.Second)
	assert.True(t, f.store.IsAuthenticated())

	f.clock.Advance(time.Hour)
	assert.False(t, f.store.IsAuthenticated())
}

// hookLogger runs onExpired when the store reports an expired session, which
// happens right after the timer callback releases the store.
type hookLogger struct {
	logger.Interface
	onExpired func()
}

func (l *hookLogger) Infow(msg string, keysAndValues ...interface{}) {
	if msg == "session expired" && l.onExpired != nil {
		fn := l.onExpired
		l.onExpired = nil
		fn()
	}
	l.Interface.Infow(msg, keysAndValues...)
}

func TestStore_LoginDuringExpirySurvives(t *testing.T) {
	fake := clock.NewFake(epoch)
	storage := kvstore.NewMemoryStore()
	log := &hookLogger{Interface: logger.NewNop()}
	store := NewStore(storage, auth.NewTokenDecoder(), log, WithClock(fake))
	t.Cleanup(store.Close)
	ctx := context.Background()

	fresh := tokenExpiringIn(t, time.Hour)
	log.onExpired = func() {
		require.NoError(t, store.Login(ctx, fresh, testUser()))
	}

	require.NoError(t, store.Login(ctx, tokenExpiringIn(t, 2*time.Second), testUser()))
	fake.Advance(3 * time.Second)

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, fresh, store.Token())
	v, ok, err := storage.Get(ctx, constants.StorageKeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fresh, v)
	assert.Equal(t, 1, fake.Pending())
}

// capturingClock hands out timers whose Stop always reports the callback as
// already running, so the test decides when a stale callback executes.
type capturingClock struct {
	now       time.Time
	callbacks []func()
}

type inFlightTimer struct{}

func (inFlightTimer) Stop() bool { return false }

func (c *capturingClock) Now() time.Time { return c.now }

func (c *capturingClock) AfterFunc(_ time.Duration, fn func()) clock.Timer {
	c.callbacks = append(c.callbacks, fn)
	return inFlightTimer{}
}

func TestStore_StaleTimerCallbackIgnored(t *testing.T) {
	clk := &capturingClock{now: epoch}
	store := NewStore(kvstore.NewMemoryStore(), auth.NewTokenDecoder(), logger.NewNop(), WithClock(clk))
	ctx := context.Background()

	require.NoError(t, store.Login(ctx, tokenExpiringIn(t, 2*time.Second), testUser()))
	fresh := tokenExpiringIn(t, time.Hour)
	require.NoError(t, store.Login(ctx, fresh, testUser()))
	require.Len(t, clk.callbacks, 2)

	clk.callbacks[0]()
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, fresh, store.Token())

	clk.callbacks[1]()
	assert.False(t, store.IsAuthenticated())
}

func TestStore_LogoutIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var events int
	unsubscribe := f.store.Subscribe(func(domain.Session) { events++ })
	defer unsubscribe()

	require.NoError(t, f.store.Login(ctx, tokenExpiringIn(t, time.Hour), testUser()))
	require.NoError(t, f.store.Logout(ctx))
	require.NoError(t, f.store.Logout(ctx))

	assert.False(t, f.store.IsAuthenticated())
	assert.Equal(t, 0, f.clock.Pending())
	assert.Equal(t, 2, events, "login and first logout only")
}

func TestStore_LoginWithExpiredToken(t *testing.T) {
	f := newFixture(t)

	err := f.store.Login(context.Background(), tokenExpiringIn(t, -time.Second), testUser())
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.False(t, f.store.IsAuthenticated())
	assert.Empty(t, f.store.Token())
	assert.Equal(t, 0, f.clock.Pending())

	_, ok := f.stored(t, constants.StorageKeyToken)
	assert.False(t, ok)
}

func TestStore_TokenWithoutExpiry(t *testing.T) {
	t.Run("accepted without timer by default", func(t *testing.T) {
		f := newFixture(t)
		token := signClaims(t, jwt.MapClaims{"id": 7})

		require.NoError(t, f.store.Login(context.Background(), token, testUser()))
		assert.True(t, f.store.IsAuthenticated())
		assert.True(t, f.store.ExpiresAt().IsZero())
		assert.Equal(t, 0, f.clock.Pending())
	})

	t.Run("opaque token accepted without timer", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Login(context.Background(), "opaque-token", testUser()))
		assert.True(t, f.store.IsAuthenticated())
		assert.Equal(t, 0, f.clock.Pending())
	})

	t.Run("rejected when expiry is required", func(t *testing.T) {
		f := newFixture(t, WithRequireExpiry(true))
		err := f.store.Login(context.Background(), "opaque-token", testUser())
		assert.True(t, errors.IsValidationError(err))
		assert.False(t, f.store.IsAuthenticated())
	})
}

func TestStore_Hydrate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		token     string
		user      string
		wantAuth  bool
		wantEmail string
	}{
		{
			name:      "valid token and user",
			token:     "valid",
			user:      `{"id":7,"email":"ana@expo.com","name":"Ana","role":"ADMIN"}`,
			wantAuth:  true,
			wantEmail: "ana@expo.com",
		},
		{
			name:      "missing user falls back to claims",
			token:     "valid",
			wantAuth:  true,
			wantEmail: "ana@expo.com",
		},
		{
			name:      "corrupt user falls back to claims",
			token:     "valid",
			user:      `{not json`,
			wantAuth:  true,
			wantEmail: "ana@expo.com",
		},
		{name: "expired token", token: "expired", user: `{"id":7}`},
		{name: "token without expiry", token: "noexp", user: `{"id":7}`},
		{name: "malformed token", token: "garbage", user: `{"id":7}`},
		{name: "user without token", user: `{"id":7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			switch tt.token {
			case "valid":
				require.NoError(t, f.storage.Set(ctx, constants.StorageKeyToken, tokenExpiringIn(t, time.Minute)))
			case "expired":
				require.NoError(t, f.storage.Set(ctx, constants.StorageKeyToken, tokenExpiringIn(t, -time.Minute)))
			case "noexp":
				require.NoError(t, f.storage.Set(ctx, constants.StorageKeyToken, signClaims(t, jwt.MapClaims{"id": 7})))
			case "garbage":
				require.NoError(t, f.storage.Set(ctx, constants.StorageKeyToken, "garbage"))
			}
			if tt.user != "" {
				require.NoError(t, f.storage.Set(ctx, constants.StorageKeyUser, tt.user))
			}

			assert.False(t, f.store.Hydrated())
			require.NoError(t, f.store.Hydrate(ctx))
			assert.True(t, f.store.Hydrated())
			assert.Equal(t, tt.wantAuth, f.store.IsAuthenticated())

			_, tokenKept := f.stored(t, constants.StorageKeyToken)
			_, userKept := f.stored(t, constants.StorageKeyUser)
			if !tt.wantAuth {
				assert.False(t, tokenKept)
				assert.False(t, userKept)
				assert.Equal(t, 0, f.clock.Pending())
				return
			}

			assert.True(t, tokenKept)
			assert.Equal(t, tt.wantEmail, f.store.User().Email)
			assert.Equal(t, authorization.RoleAdmin, f.store.User().Role)
			assert.Equal(t, 1, f.clock.Pending())

			f.clock.Advance(time.Minute)
			assert.False(t, f.store.IsAuthenticated())
		})
	}
}

type failingStorage struct{}

func (failingStorage) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk unavailable")
}
func (failingStorage) Set(context.Context, string, string) error { return errors.New("disk unavailable") }
func (failingStorage) Delete(context.Context, ...string) error   { return errors.New("disk unavailable") }

func TestStore_HydrateStorageFailure(t *testing.T) {
	store := NewStore(failingStorage{}, auth.NewTokenDecoder(), logger.NewNop(), WithClock(clock.NewFake(epoch)))

	err := store.Hydrate(context.Background())
	assert.Error(t, err)
	assert.True(t, store.Hydrated())
	assert.False(t, store.IsAuthenticated())

	err = store.Login(context.Background(), "opaque-token", testUser())
	assert.Error(t, err)
	assert.False(t, store.IsAuthenticated())
}

func TestStore_ScheduleExpiry(t *testing.T) {
	t.Run("past expiry logs out synchronously", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Login(context.Background(), tokenExpiringIn(t, time.Hour), testUser()))

		f.store.ScheduleExpiry(tokenExpiringIn(t, 0))
		assert.False(t, f.store.IsAuthenticated())
		assert.Equal(t, 0, f.clock.Pending())
	})

	t.Run("undecodable token leaves session standing", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Login(context.Background(), tokenExpiringIn(t, time.Hour), testUser()))

		f.store.ScheduleExpiry("garbage")
		assert.True(t, f.store.IsAuthenticated())
		assert.Equal(t, 0, f.clock.Pending())
	})
}

func TestStore_CloseCancelsTimer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Login(context.Background(), tokenExpiringIn(t, time.Second), testUser()))

	f.store.Close()
	f.clock.Advance(time.Minute)

	assert.True(t, f.store.IsAuthenticated())
}
