// Package transport runs the operator's long-running components under
// one errgroup.
package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// Listener is a component with a blocking Start and a graceful Stop.
type Listener interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ListenerError reports which listener ended the group.
type ListenerError struct {
	Name string
	Err  error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *ListenerError) Unwrap() error { return e.Err }

// NameOf names a listener for logs and errors: Name() when defined,
// then Kind() for resource loops, else the dynamic type.
func NameOf(li Listener) string {
	switch v := li.(type) {
	case interface{ Name() string }:
		return v.Name()
	case interface{ Kind() string }:
		return v.Kind()
	default:
		return fmt.Sprintf("%T", li)
	}
}

// Serve starts every listener and returns once all have stopped. The
// first Start error cancels the rest and is returned as a
// *ListenerError. Stop runs for every listener, one at a time, after
// the group context is done.
func Serve(ctx context.Context, lis ...Listener) error {
	eg, egCtx := errgroup.WithContext(ctx)

	for _, li := range lis {
		eg.Go(func() error {
			err := li.Start(egCtx)
			if err == nil {
				return nil
			}
			name := NameOf(li)
			slog.Error("listener failed", "listener", name, "error", err)
			return &ListenerError{Name: name, Err: err}
		})
	}

	eg.Go(func() error {
		<-egCtx.Done()

		var errs []error
		for _, li := range lis {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			if err := li.Stop(stopCtx); err != nil {
				slog.Warn("listener stop failed", "listener", NameOf(li), "error", err)
				errs = append(errs, err)
			}
			cancel()
		}
		return errors.Join(errs...)
	})

	return eg.Wait()
}
