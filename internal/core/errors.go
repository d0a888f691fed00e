package core

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
)

// ErrIdentity indicates that KeyOf or VersionOf failed on an item. It
// means the resource schema does not match the extraction functions
// wired for the kind and is never retried.
type ErrIdentity struct {
	Kind string
	Key  string
	Err  error
}

func (e *ErrIdentity) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s %s: identity extraction failed: %v", e.Kind, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: identity extraction failed: %v", e.Kind, e.Err)
}

func (e *ErrIdentity) Unwrap() error { return e.Err }

// ErrTransient marks a remote failure that is recovered by a full
// resync (timeouts, throttling, expired versions). Store
// implementations wrap such errors so the Reflector can tell them
// apart from fatal ones.
type ErrTransient struct {
	Op  string
	Err error
}

func (e *ErrTransient) Error() string {
	return fmt.Sprintf("%s: transient: %v", e.Op, e.Err)
}

func (e *ErrTransient) Unwrap() error { return e.Err }

// ErrNotSynced indicates that a cache was read before its first
// resync and the caller gave up waiting.
type ErrNotSynced struct {
	Kind string
	Err  error
}

func (e *ErrNotSynced) Error() string {
	return fmt.Sprintf("%s cache not synced: %v", e.Kind, e.Err)
}

func (e *ErrNotSynced) Unwrap() error { return e.Err }

// ErrKindNotFound indicates that a kind name is not registered.
type ErrKindNotFound struct {
	Kind string
}

func (e *ErrKindNotFound) Error() string {
	return fmt.Sprintf("resource kind %q not registered", e.Kind)
}

// ErrFatalWatch is returned by a Reflector that stopped because of an
// unrecoverable failure. The host application treats it as a
// process-wide failure.
type ErrFatalWatch struct {
	Kind  string
	Phase string
	Err   error
}

func (e *ErrFatalWatch) Error() string {
	return fmt.Sprintf("%s reflector failed during %s: %v", e.Kind, e.Phase, e.Err)
}

func (e *ErrFatalWatch) Unwrap() error { return e.Err }

// IsTransient reports whether err is recovered by a resync: an
// explicit ErrTransient, a deadline, or a network timeout.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var transient *ErrTransient
	if errors.As(err, &transient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
