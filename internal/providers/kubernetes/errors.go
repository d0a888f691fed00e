package kubernetes

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	utilnet "k8s.io/apimachinery/pkg/util/net"

	"github.com/otterscale/cassandra-operator/internal/core"
)

// classify marks API failures that a full resync recovers from as
// core.ErrTransient. Everything else (authorization, missing
// resources, malformed requests) is returned wrapped but unmarked and
// stops the loop.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if isTransient(err) {
		return &core.ErrTransient{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	switch {
	case apierrors.IsTimeout(err),
		apierrors.IsServerTimeout(err),
		apierrors.IsTooManyRequests(err),
		apierrors.IsResourceExpired(err),
		apierrors.IsGone(err),
		apierrors.IsServiceUnavailable(err),
		apierrors.IsInternalError(err):
		return true
	case utilnet.IsConnectionReset(err),
		utilnet.IsConnectionRefused(err),
		utilnet.IsProbableEOF(err):
		return true
	}

	// Status errors with an unrecognised reason but a retryable code.
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		switch status.Status().Code {
		case 429, 500, 502, 503, 504:
			return true
		}
		return false
	}
	return core.IsTransient(err)
}
