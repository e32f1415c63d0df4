package app

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

// Run builds an App for one command invocation and closes it afterwards.
func Run(cmd *cobra.Command, opts *Options, fn func(ctx context.Context, a *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := New(ctx, opts, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

// reportedError marks a failure the notifier already showed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported wraps err so the entry point does not print it a second time.
func Reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func IsReported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
