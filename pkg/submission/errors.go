package submission

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/goliatone/go-activityform/pkg/backend"
)

// Kind classifies why a submission failed after validation.
type Kind uint8

const (
	// KindTransport means the request could not be completed.
	KindTransport Kind = iota + 1
	// KindStatus means the API answered with a non-success status.
	KindStatus
	// KindUnauthenticated means the credential was missing or refused.
	KindUnauthenticated
	// KindCanceled means the caller gave up before the API answered.
	KindCanceled
	// KindUnknown covers everything else, including recovered panics. Cause
	// holds the original error for logging.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindCanceled:
		return "canceled"
	case KindUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// Error is the typed failure carried by a Failed outcome. It never holds a
// user-facing string; Messages chooses that.
type Error struct {
	Kind       Kind
	StatusCode int
	Body       string
	Cause      error
}

func (e *Error) Error() string {
	switch {
	case e.Cause != nil && e.StatusCode != 0:
		return fmt.Sprintf("submission %s (status %d): %v", e.Kind, e.StatusCode, e.Cause)
	case e.Cause != nil:
		return fmt.Sprintf("submission %s: %v", e.Kind, e.Cause)
	default:
		return "submission " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Cause }

// Classify maps an error from the forwarding step onto a Kind.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}

	var statusErr *backend.StatusError
	switch {
	case errors.Is(err, backend.ErrMissingCredential):
		return &Error{Kind: KindUnauthenticated, Cause: err}
	case errors.As(err, &statusErr):
		kind := KindStatus
		if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
			kind = KindUnauthenticated
		}
		return &Error{Kind: kind, StatusCode: statusErr.StatusCode, Body: statusErr.Body, Cause: err}
	case errors.Is(err, context.Canceled):
		return &Error{Kind: KindCanceled, Cause: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTransport, Cause: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return &Error{Kind: KindTransport, Cause: err}
	}
	return &Error{Kind: KindUnknown, Cause: err}
}
