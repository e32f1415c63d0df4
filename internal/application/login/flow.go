// Package login drives the two-step passwordless login: request a code by
// email, then verify it to open a session.
package login

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"expopanel/internal/domain/session"
	"expopanel/internal/shared/clock"
	"expopanel/internal/shared/constants"
	"expopanel/internal/shared/errors"
	"expopanel/internal/shared/logger"
	"expopanel/internal/shared/utils"
)

var (
	// ErrInvalidEmail is returned without any request when the email is malformed.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrEmptyCode is returned without any request when no code was typed.
	ErrEmptyCode = errors.New("code is required")
	// ErrCooldown is returned by Resend while the resend cooldown runs.
	ErrCooldown = errors.New("resend cooldown active")
	// ErrBusy is returned while another request of the flow is in flight.
	ErrBusy = errors.New("request already in progress")
	// ErrWrongStep is returned when an action does not apply to the current step.
	ErrWrongStep = errors.New("action not available in this step")
)

const (
	msgInvalidUser = "Invalid user. Check the email."
	msgInvalidCode = "Invalid or expired code."
)

type Step int

const (
	StepEmail Step = iota + 1
	StepCode
)

func (s Step) String() string {
	if s == StepCode {
		return "code"
	}
	return "email"
}

// Authenticator is the backend side of the code login.
type Authenticator interface {
	RequestCode(ctx context.Context, email string) error
	VerifyCode(ctx context.Context, email, code string) (*session.Credentials, error)
}

// Sessions receives the verified credentials.
type Sessions interface {
	Login(ctx context.Context, token string, user *session.User) error
}

type Option func(*Flow)

func WithClock(c clock.Clock) Option {
	return func(f *Flow) {
		f.clock = c
	}
}

func WithCooldown(d time.Duration) Option {
	return func(f *Flow) {
		if d > 0 {
			f.cooldown = d
		}
	}
}

// Flow is the state of one login attempt.
type Flow struct {
	auth     Authenticator
	sessions Sessions
	clock    clock.Clock
	cooldown time.Duration
	logger   logger.Interface

	mu         sync.Mutex
	step       Step
	email      string
	code       string
	submitting bool
	message    string
	limiter    *rate.Limiter
}

func NewFlow(auth Authenticator, sessions Sessions, log logger.Interface, opts ...Option) *Flow {
	f := &Flow{
		auth:     auth,
		sessions: sessions,
		clock:    clock.Real(),
		cooldown: constants.DefaultResendCooldownSeconds * time.Second,
		logger:   log.Named("login"),
		step:     StepEmail,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) SetEmail(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = email
}

// Email is the normalized address codes are sent to.
func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return normalize(f.email)
}

func (f *Flow) SetCode(code string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.code = code
}

// Message is the last user-facing error, empty when none.
func (f *Flow) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

func (f *Flow) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}

// CanSendEmail reports whether the send control is enabled.
func (f *Flow) CanSendEmail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canSendLocked()
}

func (f *Flow) canSendLocked() bool {
	return !f.submitting && utils.IsValidEmail(normalize(f.email))
}

// CanVerify reports whether the verify control is enabled.
func (f *Flow) CanVerify() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.canVerifyLocked()
}

func (f *Flow) canVerifyLocked() bool {
	return f.step == StepCode && !f.submitting && strings.TrimSpace(f.code) != ""
}

// RequestCode sends the code and moves to the code step. Nothing is sent
// while the email is invalid.
func (f *Flow) RequestCode(ctx context.Context) error {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if !f.canSendLocked() {
		f.mu.Unlock()
		return ErrInvalidEmail
	}
	email := f.beginSendLocked()
	f.mu.Unlock()
	return f.send(ctx, email)
}

// Resend sends a new code once the cooldown has elapsed.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if f.step != StepCode {
		f.mu.Unlock()
		return ErrWrongStep
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if remaining := f.remainingLocked(); remaining > 0 {
		f.mu.Unlock()
		return fmt.Errorf("%w: retry in %s", ErrCooldown, remaining.Round(time.Second))
	}
	email := f.beginSendLocked()
	f.mu.Unlock()
	return f.send(ctx, email)
}

// beginSendLocked marks the flow busy in the same critical section as the
// caller's checks, so concurrent calls cannot both send.
func (f *Flow) beginSendLocked() string {
	f.submitting = true
	f.message = ""
	return normalize(f.email)
}

func (f *Flow) send(ctx context.Context, email string) error {
	err := f.auth.RequestCode(ctx, email)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.logger.Warnw("code request failed", "email", utils.MaskEmail(email), "error", err)
		f.message = msgInvalidUser
		return err
	}

	f.step = StepCode
	f.code = ""
	f.startCooldownLocked()
	f.logger.Infow("login code sent", "email", utils.MaskEmail(email))
	return nil
}

// Verify exchanges the code for a token and opens the session.
func (f *Flow) Verify(ctx context.Context) error {
	f.mu.Lock()
	if f.step != StepCode {
		f.mu.Unlock()
		return ErrWrongStep
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if !f.canVerifyLocked() {
		f.mu.Unlock()
		return ErrEmptyCode
	}
	f.submitting = true
	f.message = ""
	email := normalize(f.email)
	code := strings.TrimSpace(f.code)
	f.mu.Unlock()

	err := f.verify(ctx, email, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if err != nil {
		f.logger.Warnw("code verification failed", "email", utils.MaskEmail(email), "error", err)
		f.message = msgInvalidCode
		return err
	}
	return nil
}

func (f *Flow) verify(ctx context.Context, email, code string) error {
	creds, err := f.auth.VerifyCode(ctx, email, code)
	if err != nil {
		return err
	}
	return f.sessions.Login(ctx, creds.Token, creds.User)
}

// ChangeEmail returns to the email step.
func (f *Flow) ChangeEmail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.step = StepEmail
	f.code = ""
	f.message = ""
}

// CooldownRemaining is how long until Resend is allowed.
func (f *Flow) CooldownRemaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remainingLocked()
}

// MaskedEmail shows only the first two characters of the local part.
func (f *Flow) MaskedEmail() string {
	return utils.MaskEmail(f.Email())
}

// startCooldownLocked replaces any running cooldown with a fresh one whose
// single token is spent immediately.
func (f *Flow) startCooldownLocked() {
	f.limiter = rate.NewLimiter(rate.Every(f.cooldown), 1)
	f.limiter.AllowN(f.clock.Now(), 1)
}

func (f *Flow) remainingLocked() time.Duration {
	if f.limiter == nil {
		return 0
	}
	tokens := f.limiter.TokensAt(f.clock.Now())
	if tokens >= 1 {
		return 0
	}
	return time.Duration(math.Ceil((1 - tokens) * float64(f.cooldown)))
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
