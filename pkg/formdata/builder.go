package formdata

import (
	"errors"
	"strings"
)

// DefaultSplitFields lists terminal segments whose text value is split on
// commas into a list of trimmed strings.
var DefaultSplitFields = []string{"cover"}

// DefaultMaxIndex caps sequence indices so a single field cannot allocate an
// arbitrarily large slice.
const DefaultMaxIndex = 1000

// Option configures Reconstruct.
type Option func(*buildConfig)

type buildConfig struct {
	split    map[string]struct{}
	maxIndex int
}

// WithSplitFields replaces the set of comma-split terminal segments. Passing
// no names disables splitting.
func WithSplitFields(names ...string) Option {
	return func(cfg *buildConfig) {
		cfg.split = make(map[string]struct{}, len(names))
		for _, name := range names {
			if trimmed := strings.TrimSpace(name); trimmed != "" {
				cfg.split[trimmed] = struct{}{}
			}
		}
	}
}

// WithMaxIndex overrides DefaultMaxIndex. Values below zero are ignored.
func WithMaxIndex(n int) Option {
	return func(cfg *buildConfig) {
		if n >= 0 {
			cfg.maxIndex = n
		}
	}
}

func newBuildConfig(options []Option) *buildConfig {
	cfg := &buildConfig{maxIndex: DefaultMaxIndex}
	WithSplitFields(DefaultSplitFields...)(cfg)
	for _, opt := range options {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// Reconstruct folds flat entries into a nested tree whose root is a mapping.
//
// Entries are applied in order, so a repeated path keeps the last value.
// Intermediate containers are created on first use: a sequence when the next
// segment is an index, a mapping otherwise. Sequence slots are addressed by
// their literal index; skipped indices stay as null holes.
//
// Entries that cannot be placed are skipped and reported together as
// *PathError values joined into the returned error. The tree built from the
// remaining entries is always returned.
func Reconstruct(entries []Entry, options ...Option) (*Value, error) {
	cfg := newBuildConfig(options)
	root := Mapping()

	var errs []error
	for _, entry := range entries {
		if err := cfg.insert(root, entry); err != nil {
			errs = append(errs, err)
		}
	}
	return root, errors.Join(errs...)
}

// PathErrors extracts every *PathError from an error returned by Reconstruct.
func PathErrors(err error) []*PathError {
	if err == nil {
		return nil
	}
	var out []*PathError
	var walk func(error)
	walk = func(e error) {
		if joined, ok := e.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				walk(inner)
			}
			return
		}
		var pe *PathError
		if errors.As(e, &pe) {
			out = append(out, pe)
		}
	}
	walk(err)
	return out
}

func (cfg *buildConfig) insert(root *Value, entry Entry) error {
	segments, err := Tokenize(entry.Path)
	if err != nil {
		return &PathError{Path: entry.Path, Segment: -1, Err: err}
	}

	current := root
	last := len(segments) - 1
	for i := 0; i < last; i++ {
		child, err := cfg.descend(current, segments[i], segments[i+1])
		if err != nil {
			return &PathError{Path: entry.Path, Segment: i, Err: err}
		}
		current = child
	}

	if err := cfg.assign(current, segments[last], cfg.leaf(segments[last], entry.Value)); err != nil {
		return &PathError{Path: entry.Path, Segment: last, Err: err}
	}
	return nil
}

// descend returns the container stored under segment, creating it when the
// slot is empty. The kind of a new container follows the next segment.
func (cfg *buildConfig) descend(container *Value, segment, next string) (*Value, error) {
	existing, err := cfg.slot(container, segment)
	if err != nil {
		return nil, err
	}
	if !existing.IsNull() {
		if existing.Kind != KindMapping && existing.Kind != KindSequence {
			return nil, ErrShapeConflict
		}
		return existing, nil
	}

	var created *Value
	if IsIndex(next) {
		created = Sequence()
	} else {
		created = Mapping()
	}
	if err := cfg.assign(container, segment, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (cfg *buildConfig) slot(container *Value, segment string) (*Value, error) {
	switch container.Kind {
	case KindMapping:
		return container.Fields[segment], nil
	case KindSequence:
		idx, err := cfg.index(segment)
		if err != nil {
			return nil, err
		}
		return container.Index(idx), nil
	default:
		return nil, ErrShapeConflict
	}
}

func (cfg *buildConfig) assign(container *Value, segment string, value *Value) error {
	switch container.Kind {
	case KindMapping:
		container.Fields[segment] = value
		return nil
	case KindSequence:
		idx, err := cfg.index(segment)
		if err != nil {
			return err
		}
		for len(container.Items) <= idx {
			container.Items = append(container.Items, Null())
		}
		container.Items[idx] = value
		return nil
	default:
		return ErrShapeConflict
	}
}

func (cfg *buildConfig) index(segment string) (int, error) {
	idx, ok := parseIndex(segment)
	if !ok {
		return 0, ErrShapeConflict
	}
	if idx > cfg.maxIndex {
		return 0, ErrIndexOutOfRange
	}
	return idx, nil
}

func (cfg *buildConfig) leaf(segment string, value *Value) *Value {
	if value == nil {
		return Null()
	}
	if _, ok := cfg.split[segment]; ok && value.Kind == KindText {
		return splitList(value.Text)
	}
	return value.Clone()
}

func splitList(raw string) *Value {
	parts := strings.Split(raw, ",")
	items := make([]*Value, len(parts))
	for i, part := range parts {
		items[i] = TextValue(strings.TrimSpace(part))
	}
	return &Value{Kind: KindSequence, Items: items}
}
