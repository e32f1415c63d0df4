// Package session holds the logged-in staff session and logs it out when the
// token's advisory expiry passes.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "expopanel/internal/domain/session"
	"expopanel/internal/shared/clock"
	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
)

var (
	// ErrNoSession is returned by callers that need an authenticated session.
	ErrNoSession = errors.New("no active session")
	// ErrTokenExpired is returned by Login when the token is already past its exp.
	ErrTokenExpired = errors.New("token already expired")
)

// Store is the single source of truth for who is logged in. It is safe for
// concurrent use.
type Store struct {
	storage       domain.Storage
	decoder       domain.TokenDecoder
	clock         clock.Clock
	logger        logger.Interface
	requireExpiry bool

	mu          sync.Mutex
	token       string
	user        *domain.User
	expiresAt   time.Time
	hydrated    bool
	timer       clock.Timer
	generation  uint64
	subscribers map[int]func(domain.Session)
	nextSubID   int
}

type Option func(*Store)

func WithClock(c clock.Clock) Option {
	return func(s *Store) {
		s.clock = c
	}
}

// WithRequireExpiry makes Login reject tokens without a readable exp claim.
func WithRequireExpiry(require bool) Option {
	return func(s *Store) {
		s.requireExpiry = require
	}
}

func NewStore(storage domain.Storage, decoder domain.TokenDecoder, log logger.Interface, opts ...Option) *Store {
	s := &Store{
		storage:     storage,
		decoder:     decoder,
		clock:       clock.Real(),
		logger:      log,
		subscribers: make(map[int]func(domain.Session)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate restores the persisted session. A token whose expiry is missing,
// unreadable or in the past is discarded together with the stored user.
// Hydrated reports true afterwards even if storage failed.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return nil
	}
	err := s.hydrateLocked(ctx)
	s.hydrated = true
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(snap)
	return err
}

func (s *Store) hydrateLocked(ctx context.Context) error {
	token, ok, err := s.storage.Get(ctx, constants.StorageKeyToken)
	if err != nil {
		s.logger.Errorw("failed to read persisted token", "error", err)
		return fmt.Errorf("failed to read persisted token: %w", err)
	}
	if !ok || strings.TrimSpace(token) == "" {
		return s.clearStorage(ctx)
	}

	claims, err := s.decoder.Decode(token)
	if err != nil || !claims.HasExpiry() {
		s.logger.Infow("discarding persisted token without readable expiry", "error", err)
		return s.clearStorage(ctx)
	}
	if !claims.ExpiresAt.After(s.clock.Now()) {
		s.logger.Infow("discarding expired persisted token", "expired_at", claims.ExpiresAt)
		return s.clearStorage(ctx)
	}

	user := s.readUser(ctx, claims)

	s.token = token
	s.user = &user
	s.expiresAt = claims.ExpiresAt
	s.generation++
	s.armLocked(claims.ExpiresAt)

	s.logger.Debugw("session restored", "email", user.Email, "expires_at", claims.ExpiresAt)
	return nil
}

// readUser returns the stored user, or one built from the claims when the
// stored value is missing or unreadable.
func (s *Store) readUser(ctx context.Context, claims domain.Claims) domain.User {
	raw, ok, err := s.storage.Get(ctx, constants.StorageKeyUser)
	if err == nil && ok {
		var user domain.User
		if jsonErr := json.Unmarshal([]byte(raw), &user); jsonErr == nil {
			return user.Normalized()
		}
		s.logger.Warnw("persisted user unreadable, using token claims")
	}
	return claims.User()
}

// Login stores token and user together and arms the expiry timer, replacing
// any previous one.
func (s *Store) Login(ctx context.Context, token string, user *domain.User) error {
	token = strings.TrimSpace(token)
	if token == "" || user == nil {
		return errors.NewValidationError("token and user are both required")
	}

	claims, decodeErr := s.decoder.Decode(token)
	hasExpiry := decodeErr == nil && claims.HasExpiry()
	if !hasExpiry {
		if s.requireExpiry {
			return errors.NewValidationError("token has no readable expiry")
		}
		s.logger.Warnw("token has no readable expiry, session will not auto-expire", "error", decodeErr)
	}

	normalized := user.Normalized()
	userJSON, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	if err := s.persist(ctx, token, string(userJSON)); err != nil {
		s.mu.Unlock()
		return err
	}

	s.cancelLocked()
	s.token = token
	s.user = &normalized
	s.expiresAt = time.Time{}
	if hasExpiry {
		s.expiresAt = claims.ExpiresAt
	}
	if hasExpiry && !s.armLocked(claims.ExpiresAt) {
		_, err := s.logoutLocked(ctx)
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Infow("token expired on arrival, session cleared", "email", normalized.Email)
		s.notify(snap)
		if err != nil {
			return err
		}
		return ErrTokenExpired
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Infow("logged in", "email", normalized.Email, "role", normalized.Role)
	s.notify(snap)
	return nil
}

func (s *Store) persist(ctx context.Context, token, userJSON string) error {
	if err := s.storage.Set(ctx, constants.StorageKeyToken, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.Set(ctx, constants.StorageKeyUser, userJSON); err != nil {
		// never leave a token without its user
		_ = s.storage.Delete(ctx, constants.StorageKeyToken)
		return fmt.Errorf("failed to persist user: %w", err)
	}
	return nil
}

// Logout clears memory and storage and cancels the timer. Calling it again
// is a no-op apart from re-clearing storage.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	wasAuthenticated, err := s.logoutLocked(ctx)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if wasAuthenticated {
		s.logger.Infow("logged out")
		s.notify(snap)
	}
	return err
}

// logoutLocked clears memory and storage under the caller's hold of s.mu, so
// no Login can interleave between the decision to log out and the clearing.
func (s *Store) logoutLocked(ctx context.Context) (bool, error) {
	wasAuthenticated := s.token != ""
	s.cancelLocked()
	s.token = ""
	s.user = nil
	s.expiresAt = time.Time{}
	return wasAuthenticated, s.clearStorage(ctx)
}

// ScheduleExpiry arms the auto-logout for token. A token already past its
// expiry logs out synchronously; one without a readable expiry leaves the
// session standing with no timer.
func (s *Store) ScheduleExpiry(token string) {
	claims, err := s.decoder.Decode(token)

	s.mu.Lock()
	s.cancelLocked()
	if err != nil || !claims.HasExpiry() {
		s.mu.Unlock()
		s.logger.Debugw("no expiry to schedule", "error", err)
		return
	}
	if s.armLocked(claims.ExpiresAt) {
		s.mu.Unlock()
		return
	}
	s.expireLocked()
}

// Close cancels the armed timer without touching the session.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
}

// armLocked arms a one-shot logout at exp. It reports false, arming nothing,
// when exp is not in the future.
func (s *Store) armLocked(exp time.Time) bool {
	delay := exp.Sub(s.clock.Now())
	if delay <= 0 {
		return false
	}
	gen := s.generation
	s.timer = s.clock.AfterFunc(delay, func() { s.expire(gen) })
	return true
}

// cancelLocked stops the armed timer and invalidates any callback already
// in flight.
func (s *Store) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}

// expire runs on the timer. The generation check and the clearing share one
// critical section; a Login that already replaced the session bumps the
// generation and turns this into a no-op.
func (s *Store) expire(gen uint64) {
	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.expireLocked()
}

// expireLocked clears the session and releases s.mu before notifying.
func (s *Store) expireLocked() {
	wasAuthenticated, err := s.logoutLocked(context.Background())
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Errorw("failed to clear expired session", "error", err)
	}
	if wasAuthenticated {
		s.logger.Infow("session expired")
		s.notify(snap)
	}
}

func (s *Store) clearStorage(ctx context.Context) error {
	if err := s.storage.Delete(ctx, constants.StorageKeyToken, constants.StorageKeyUser); err != nil {
		s.logger.Errorw("failed to clear persisted session", "error", err)
		return fmt.Errorf("failed to clear persisted session: %w", err)
	}
	return nil
}

// Token implements gateway.TokenSource.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the session user, or nil.
func (s *Store) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token != "" && s.user != nil
}

func (s *Store) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// ExpiresAt is zero when the token carried no readable expiry.
func (s *Store) ExpiresAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expiresAt
}

func (s *Store) Snapshot() domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every session transition and returns a func
// that removes it.
func (s *Store) Subscribe(fn func(domain.Session)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *Store) snapshotLocked() domain.Session {
	snap := domain.Session{Token: s.token, ExpiresAt: s.expiresAt}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) notify(snap domain.Session) {
	s.mu.Lock()
	subs := make([]func(domain.Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
