// Package loading tracks in-flight operations behind the process-wide busy
// indicator.
package loading

import (
	"context"
	"slices"
	"sync"
)

// Indicator is visible while at least one operation is in flight. Counting
// keeps one operation's completion from hiding another that is still running.
type Indicator struct {
	mu          sync.Mutex
	active      int
	subscribers []func(bool)
}

func New() *Indicator {
	return &Indicator{}
}

func (i *Indicator) Show() {
	i.mu.Lock()
	i.active++
	changed := i.active == 1
	subs := i.subscribersLocked()
	i.mu.Unlock()

	if changed {
		broadcast(subs, true)
	}
}

// Hide is a no-op when nothing is in flight.
func (i *Indicator) Hide() {
	i.mu.Lock()
	if i.active == 0 {
		i.mu.Unlock()
		return
	}
	i.active--
	changed := i.active == 0
	subs := i.subscribersLocked()
	i.mu.Unlock()

	if changed {
		broadcast(subs, false)
	}
}

func (i *Indicator) Visible() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active > 0
}

// Track shows the indicator for the duration of fn. The indicator is hidden
// on every exit path, including a panic in fn.
func (i *Indicator) Track(ctx context.Context, fn func(ctx context.Context) error) error {
	i.Show()
	defer i.Hide()
	return fn(ctx)
}

// Subscribe registers fn for visibility changes.
func (i *Indicator) Subscribe(fn func(visible bool)) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.subscribers = append(i.subscribers, fn)
}

func (i *Indicator) subscribersLocked() []func(bool) {
	return slices.Clone(i.subscribers)
}

func broadcast(subs []func(bool), visible bool) {
	for _, fn := range subs {
		fn(visible)
	}
}
