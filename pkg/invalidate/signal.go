package invalidate

import (
	"context"
	"errors"
	"time"
)

// DefaultPath is the cached listing refreshed after an activity is created.
const DefaultPath = "/activity"

// Signal asks caches that render Path to refresh.
type Signal struct {
	Path       string    `json:"path"`
	ActivityID string    `json:"activityId,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	At         time.Time `json:"at"`
}

// Publisher delivers signals to one transport.
type Publisher interface {
	Publish(ctx context.Context, signal Signal) error
	Close() error
}

// Noop drops every signal. It is used when no transport is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Signal) error { return nil }

func (Noop) Close() error { return nil }

// Multi fans a signal out to several publishers and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, signal Signal) error {
	var errs []error
	for _, pub := range m {
		if pub == nil {
			continue
		}
		if err := pub.Publish(ctx, signal); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, pub := range m {
		if pub == nil {
			continue
		}
		if err := pub.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
