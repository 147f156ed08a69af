package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-activityform/pkg/formdata"
	"github.com/goliatone/go-activityform/pkg/invalidate"
	"github.com/goliatone/go-activityform/pkg/validation"
)

// Forwarder sends a validated value to the remote API and returns the new
// identifier.
type Forwarder[T any] interface {
	Forward(ctx context.Context, credential string, value T) (string, error)
}

// ForwarderFunc adapts a function to Forwarder.
type ForwarderFunc[T any] func(ctx context.Context, credential string, value T) (string, error)

// Forward calls f.
func (f ForwarderFunc[T]) Forward(ctx context.Context, credential string, value T) (string, error) {
	return f(ctx, credential, value)
}

// Notifier receives the fire-and-forget invalidation after a success.
// *invalidate.Dispatcher satisfies it.
type Notifier interface {
	Notify(path, activityID, requestID string)
}

// Observer is told about every finished submission.
type Observer interface {
	ObserveSubmission(state State, kind Kind, elapsed time.Duration)
}

// Logger is the subset of *zap.SugaredLogger the orchestrator uses.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

// Option customises an Orchestrator.
type Option func(*settings)

type settings struct {
	build          []formdata.Option
	collapse       validation.CollapseOptions
	notifier       Notifier
	observer       Observer
	logger         Logger
	invalidatePath string
	now            func() time.Time
}

// WithBuildOptions forwards options to formdata.Reconstruct.
func WithBuildOptions(options ...formdata.Option) Option {
	return func(s *settings) {
		s.build = append(s.build, options...)
	}
}

// WithCollapseOptions configures how issues are rewritten for display.
func WithCollapseOptions(opts validation.CollapseOptions) Option {
	return func(s *settings) {
		s.collapse = opts
	}
}

// WithNotifier sets the invalidation target used after a success.
func WithNotifier(n Notifier) Option {
	return func(s *settings) {
		s.notifier = n
	}
}

// WithInvalidatePath overrides the listing path sent to the notifier.
func WithInvalidatePath(path string) Option {
	return func(s *settings) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			s.invalidatePath = trimmed
		}
	}
}

// WithObserver records outcomes, typically into metrics.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		s.observer = o
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// Outcome is the terminal result of one submission.
type Outcome[T any] struct {
	State State
	// Trace lists every state entered, starting with StateIdle.
	Trace []State
	// Value is set once validation succeeds.
	Value      T
	ActivityID string
	// Issues and Fields are set for StateRejected.
	Issues []validation.Issue
	Fields map[string]string
	// Err is set for StateFailed.
	Err *Error
}

// Orchestrator sequences reconstruct, validate, forward and report for one
// submission at a time. It holds no per-submission state and is safe for
// concurrent use.
type Orchestrator[T any] struct {
	validator validation.Validator[T]
	forwarder Forwarder[T]
	settings
}

// New builds an orchestrator around validator and forwarder.
func New[T any](validator validation.Validator[T], forwarder Forwarder[T], options ...Option) (*Orchestrator[T], error) {
	if validator == nil {
		return nil, errors.New("submission: validator is required")
	}
	if forwarder == nil {
		return nil, errors.New("submission: forwarder is required")
	}
	o := &Orchestrator[T]{
		validator: validator,
		forwarder: forwarder,
		settings: settings{
			logger:         zap.NewNop().Sugar(),
			invalidatePath: invalidate.DefaultPath,
			now:            time.Now,
		},
	}
	for _, opt := range options {
		if opt != nil {
			opt(&o.settings)
		}
	}
	return o, nil
}

// Submit runs one submission. entries must be in submission order so
// duplicate paths resolve deterministically. A panic anywhere in the
// pipeline ends the submission in StateFailed with KindUnknown.
func (o *Orchestrator[T]) Submit(ctx context.Context, credential string, entries []formdata.Entry) (out Outcome[T]) {
	if ctx == nil {
		ctx = context.Background()
	}
	started := o.now()
	requestID := RequestID(ctx)
	m := newMachine()

	defer func() {
		if r := recover(); r != nil {
			m.abort()
			out = Outcome[T]{
				State: StateFailed,
				Err:   &Error{Kind: KindUnknown, Cause: fmt.Errorf("submission: panic: %v", r)},
			}
			o.logger.Errorw("submission panicked", "request_id", requestID, "panic", r)
		}
		out.Trace = m.snapshot()
		o.observe(out, o.now().Sub(started))
	}()

	m.advance(StateSubmitted)

	tree, buildErr := formdata.Reconstruct(entries, o.build...)
	structural := StructuralIssues(buildErr)

	result := o.validator.Validate(ctx, tree)
	if len(structural) > 0 || !result.OK() {
		m.advance(StateRejected)
		issues := validation.Dedupe(append(structural, result.Issues...))
		o.logger.Infow("submission rejected", "request_id", requestID, "issues", len(issues))
		return Outcome[T]{
			State:  StateRejected,
			Issues: validation.Collapse(issues, o.collapse),
			Fields: formdata.FlattenEntries(entries),
		}
	}

	m.advance(StateForwarding)
	out = Outcome[T]{State: StateForwarding, Value: result.Value}

	if strings.TrimSpace(credential) == "" {
		return o.fail(m, out, &Error{Kind: KindUnauthenticated, Cause: errors.New("submission: credential is required")}, requestID)
	}

	id, err := o.forwarder.Forward(ctx, credential, result.Value)
	if err == nil && strings.TrimSpace(id) == "" {
		err = &Error{Kind: KindUnknown, Cause: errors.New("submission: forwarder returned an empty id")}
	}
	if err != nil {
		failure := Classify(err)
		if failure.Kind != KindCanceled && errors.Is(ctx.Err(), context.Canceled) {
			failure = &Error{Kind: KindCanceled, Cause: err}
		}
		return o.fail(m, out, failure, requestID)
	}

	m.advance(StateSucceeded)
	out.State = StateSucceeded
	out.ActivityID = id
	if o.notifier != nil {
		o.notifier.Notify(o.invalidatePath, id, requestID)
	}
	o.logger.Infow("submission succeeded", "request_id", requestID, "activity_id", id)
	return out
}

func (o *Orchestrator[T]) fail(m *machine, out Outcome[T], failure *Error, requestID string) Outcome[T] {
	m.advance(StateFailed)
	out.State = StateFailed
	out.Err = failure

	fields := []any{"request_id", requestID, "kind", failure.Kind.String(), "error", failure.Cause}
	if failure.StatusCode != 0 {
		fields = append(fields, "status", failure.StatusCode)
	}
	switch failure.Kind {
	case KindUnknown:
		o.logger.Errorw("submission failed", fields...)
	case KindCanceled:
		o.logger.Debugw("submission canceled", fields...)
	default:
		o.logger.Warnw("submission failed", fields...)
	}
	return out
}

func (o *Orchestrator[T]) observe(out Outcome[T], elapsed time.Duration) {
	if o.observer == nil {
		return
	}
	var kind Kind
	if out.Err != nil {
		kind = out.Err.Kind
	}
	o.observer.ObserveSubmission(out.State, kind, elapsed)
}

// StructuralIssues reports every reconstruction failure in err as an issue
// at the offending entry path.
func StructuralIssues(err error) []validation.Issue {
	pathErrs := formdata.PathErrors(err)
	if len(pathErrs) == 0 {
		return nil
	}
	issues := make([]validation.Issue, 0, len(pathErrs))
	for _, pe := range pathErrs {
		issues = append(issues, validation.Issue{
			Path:    pe.Path,
			Message: structuralMessage(pe.Err),
		})
	}
	return issues
}

func structuralMessage(err error) string {
	switch {
	case errors.Is(err, formdata.ErrShapeConflict):
		return "欄位結構衝突"
	case errors.Is(err, formdata.ErrIndexOutOfRange):
		return "欄位索引超出範圍"
	default:
		return "欄位名稱無效"
	}
}
