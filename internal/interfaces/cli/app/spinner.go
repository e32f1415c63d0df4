package app

import (
	"fmt"
	"io"
	"sync"
	"time"

	"expopanel/internal/shared/goroutine"
	"expopanel/internal/shared/logger"
)

const spinnerInterval = 120 * time.Millisecond

var spinnerFrames = []rune{'|', '/', '-', '\\'}

// spinner renders the loading indicator on a terminal.
type spinner struct {
	w      io.Writer
	logger logger.Interface

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func newSpinner(w io.Writer, log logger.Interface) *spinner {
	return &spinner{w: w, logger: log}
}

func (s *spinner) set(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if visible {
		if s.stop != nil {
			return
		}
		stop, done := make(chan struct{}), make(chan struct{})
		s.stop, s.done = stop, done
		goroutine.SafeGo(s.logger, "loading-spinner", func() {
			defer close(done)
			s.run(stop)
		})
		return
	}

	if s.stop == nil {
		return
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil
}

func (s *spinner) run(stop <-chan struct{}) {
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		fmt.Fprintf(s.w, "\r%c loading", spinnerFrames[i%len(spinnerFrames)])
		select {
		case <-stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
		}
	}
}
