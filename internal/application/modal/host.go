// Package modal implements the single process-wide modal slot.
package modal

import (
	"slices"
	"sync"
)

// DefaultSizeClass applies when Open is called without a size.
const DefaultSizeClass = "max-w-3xl"

// Content is whatever the modal shows. The host never inspects it beyond
// its title.
type Content interface {
	Title() string
}

// State is a snapshot of the slot. Content is nil exactly when Open is false.
type State struct {
	Open      bool
	Content   Content
	SizeClass string
}

// Size returns the effective size class.
func (s State) Size() string {
	if s.SizeClass == "" {
		return DefaultSizeClass
	}
	return s.SizeClass
}

// Trigger names what asked the modal to close.
type Trigger int

const (
	TriggerCloseButton Trigger = iota
	TriggerBackdrop
	TriggerEscape
)

func (t Trigger) String() string {
	switch t {
	case TriggerCloseButton:
		return "close_button"
	case TriggerBackdrop:
		return "backdrop"
	case TriggerEscape:
		return "escape"
	default:
		return "unknown"
	}
}

// KeyEscape is the key name that dismisses an open modal.
const KeyEscape = "Escape"

// Environment applies the host's side effects. Scroll is suppressed and the
// key listener attached only while a modal is open. AttachKeyListener must
// not call the listener before returning.
type Environment interface {
	SuppressScroll()
	RestoreScroll()
	AttachKeyListener(fn func(key string)) (detach func())
}

type nopEnvironment struct{}

// NopEnvironment is for hosts without scroll or keyboard affordances.
func NopEnvironment() Environment { return nopEnvironment{} }

func (nopEnvironment) SuppressScroll()                        {}
func (nopEnvironment) RestoreScroll()                         {}
func (nopEnvironment) AttachKeyListener(func(string)) func() { return func() {} }

// Host owns the slot. Opening while open swaps the content (last write
// wins); nothing is queued or stacked.
type Host struct {
	env Environment

	// opMu serializes transitions together with their side effects.
	opMu sync.Mutex

	mu          sync.Mutex
	state       State
	seq         uint64
	detach      func()
	subscribers []func(State)
}

func NewHost(env Environment) *Host {
	if env == nil {
		env = NopEnvironment()
	}
	return &Host{env: env}
}

// Open shows content, replacing whatever is open.
func (h *Host) Open(content Content, sizeClass ...string) {
	h.open(content, sizeClass)
}

// OpenFunc builds content with a callback that closes the modal, so nested
// content can dismiss itself. The callback only closes the content it was
// built for; it is a no-op once that content has been replaced.
func (h *Host) OpenFunc(build func(close func()) Content, sizeClass ...string) {
	var (
		mu  sync.Mutex
		seq uint64
	)
	content := build(func() {
		mu.Lock()
		want := seq
		mu.Unlock()
		if want != 0 {
			h.closeIf(want)
		}
	})

	opened := h.open(content, sizeClass)
	mu.Lock()
	seq = opened
	mu.Unlock()
}

// open returns the sequence number of the content it installed, or 0.
func (h *Host) open(content Content, sizeClass []string) uint64 {
	if content == nil {
		h.Close()
		return 0
	}
	size := ""
	if len(sizeClass) > 0 {
		size = sizeClass[0]
	}

	h.opMu.Lock()
	h.mu.Lock()
	wasOpen := h.state.Open
	h.seq++
	seq := h.seq
	h.state = State{Open: true, Content: content, SizeClass: size}
	snap := h.state
	h.mu.Unlock()

	if !wasOpen {
		h.env.SuppressScroll()
		detach := h.env.AttachKeyListener(h.HandleKey)
		h.mu.Lock()
		h.detach = detach
		h.mu.Unlock()
	}
	h.opMu.Unlock()

	h.notify(snap)
	return seq
}

// Close clears content and the open flag together.
func (h *Host) Close() {
	h.closeIf(0)
}

// closeIf closes the slot when seq is 0 or names the content currently open.
func (h *Host) closeIf(seq uint64) {
	h.opMu.Lock()
	h.mu.Lock()
	if !h.state.Open || (seq != 0 && seq != h.seq) {
		h.mu.Unlock()
		h.opMu.Unlock()
		return
	}
	h.state = State{}
	detach := h.detach
	h.detach = nil
	snap := h.state
	h.mu.Unlock()

	if detach != nil {
		detach()
	}
	h.env.RestoreScroll()
	h.opMu.Unlock()

	h.notify(snap)
}

// Dismiss closes the modal in response to a user trigger. Every trigger
// routes to the same Close.
func (h *Host) Dismiss(Trigger) {
	h.Close()
}

// HandleKey is the listener attached while open.
func (h *Host) HandleKey(key string) {
	if key == KeyEscape {
		h.Dismiss(TriggerEscape)
	}
}

func (h *Host) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *Host) IsOpen() bool {
	return h.State().Open
}

func (h *Host) Subscribe(fn func(State)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers = append(h.subscribers, fn)
}

func (h *Host) notify(s State) {
	h.mu.Lock()
	subs := slices.Clone(h.subscribers)
	h.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}
