package handler

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// errInvalidRequest marks a malformed status request.
type errInvalidRequest struct {
	field string
}

func (e *errInvalidRequest) Error() string {
	return "request field " + e.field + " is required"
}

// domainErrorToConnectError converts an informer error into a
// ConnectRPC error with a semantically equivalent code. Unrecognised
// errors fall back to connect.CodeInternal.
func domainErrorToConnectError(err error) error {
	var invalid *errInvalidRequest
	if errors.As(err, &invalid) {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	var kindNotFound *core.ErrKindNotFound
	if errors.As(err, &kindNotFound) {
		return connect.NewError(connect.CodeNotFound, err)
	}
	var notSynced *core.ErrNotSynced
	if errors.As(err, &notSynced) {
		if errors.Is(err, context.DeadlineExceeded) {
			return connect.NewError(connect.CodeDeadlineExceeded, err)
		}
		return connect.NewError(connect.CodeUnavailable, err)
	}
	if core.IsTransient(err) {
		return connect.NewError(connect.CodeUnavailable, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}
