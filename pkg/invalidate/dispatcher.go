package invalidate

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds one asynchronous delivery.
const DefaultTimeout = 5 * time.Second

// Logger is the subset of *zap.SugaredLogger the dispatcher uses.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithTimeout bounds each delivery.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// WithLogger sets the logger for delivery failures.
func WithLogger(logger Logger) DispatcherOption {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithObserver registers a callback run after every delivery attempt with
// its result.
func WithObserver(fn func(err error)) DispatcherOption {
	return func(d *Dispatcher) {
		d.observe = fn
	}
}

// WithClock overrides the time source used to stamp signals.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// Dispatcher sends signals in the background. Notify never blocks the
// caller and delivery failures are logged, never returned.
type Dispatcher struct {
	publisher Publisher
	timeout   time.Duration
	logger    Logger
	observe   func(err error)
	now       func() time.Time

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher wraps publisher. A nil publisher behaves like Noop.
func NewDispatcher(publisher Publisher, options ...DispatcherOption) *Dispatcher {
	if publisher == nil {
		publisher = Noop{}
	}
	d := &Dispatcher{
		publisher: publisher,
		timeout:   DefaultTimeout,
		logger:    zap.NewNop().Sugar(),
		now:       time.Now,
	}
	for _, opt := range options {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Notify schedules a signal for path. Empty path uses DefaultPath. Calls
// after Close are dropped.
func (d *Dispatcher) Notify(path, activityID, requestID string) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}
	signal := Signal{
		Path:       path,
		ActivityID: activityID,
		RequestID:  requestID,
		At:         d.now().UTC(),
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Debugw("invalidation dropped after close", "path", path)
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.deliver(signal)
	}()
}

func (d *Dispatcher) deliver(signal Signal) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	err := d.publisher.Publish(ctx, signal)
	if d.observe != nil {
		d.observe(err)
	}
	if err != nil {
		d.logger.Warnw("invalidation failed",
			"path", signal.Path,
			"activity_id", signal.ActivityID,
			"request_id", signal.RequestID,
			"error", err,
		)
		return
	}
	d.logger.Debugw("invalidation sent", "path", signal.Path, "activity_id", signal.ActivityID)
}

// Close waits for in-flight deliveries and closes the publisher.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
	return d.publisher.Close()
}
