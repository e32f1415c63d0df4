package entity

import (
	"context"
	"fmt"
	"sync"
)

// Confirm is the modal content asking to confirm a delete.
type Confirm struct {
	title     string
	message   string
	onConfirm func(ctx context.Context) error
	close     func()
	notifier  Notifier

	mu      sync.Mutex
	running bool
}

func (c *Confirm) Title() string {
	return c.title
}

func (c *Confirm) Message() string {
	return c.message
}

// Accept runs the delete and closes on success. A failure is alerted and
// the confirmation stays open.
func (c *Confirm) Accept(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return ErrSubmitInProgress
	}
	c.running = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
	}()

	if err := c.onConfirm(ctx); err != nil {
		c.notifier.Alert(fmt.Sprintf("Could not delete: %v", err))
		return err
	}
	c.close()
	return nil
}

// Cancel closes without changing anything.
func (c *Confirm) Cancel() {
	c.close()
}
