package formdata

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyPath is returned for entries without a field name.
	ErrEmptyPath = errors.New("formdata: path is empty")
	// ErrEmptySegment is returned for paths such as "a..b" or "a.".
	ErrEmptySegment = errors.New("formdata: path has an empty segment")
	// ErrShapeConflict is returned when two entries disagree on whether a
	// location holds a mapping, a sequence, or a leaf.
	ErrShapeConflict = errors.New("formdata: conflicting container shape")
	// ErrIndexOutOfRange is returned for sequence indices above the
	// configured maximum.
	ErrIndexOutOfRange = errors.New("formdata: sequence index out of range")
)

// PathError ties a reconstruction failure to the offending entry path and
// segment position.
type PathError struct {
	Path    string
	Segment int
	Err     error
}

func (e *PathError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Segment >= 0 {
		return fmt.Sprintf("%v (path %q, segment %d)", e.Err, e.Path, e.Segment)
	}
	return fmt.Sprintf("%v (path %q)", e.Err, e.Path)
}

func (e *PathError) Unwrap() error { return e.Err }

// Tokenize splits a dotted field path into its segments. A literal dot inside
// a field name cannot be expressed.
func Tokenize(path string) ([]string, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if segment == "" {
			return nil, ErrEmptySegment
		}
	}
	return segments, nil
}

// IsIndex reports whether segment addresses a sequence slot: a base-10,
// non-negative integer made only of ASCII digits.
func IsIndex(segment string) bool {
	_, ok := parseIndex(segment)
	return ok
}

func parseIndex(segment string) (int, bool) {
	if segment == "" || len(segment) > 9 {
		return 0, false
	}
	n := 0
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// JoinPath joins a parent path and a child segment with a dot.
func JoinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	if child == "" {
		return parent
	}
	return parent + "." + child
}

// FirstSegment returns the part of path before the first dot.
func FirstSegment(path string) string {
	if idx := strings.IndexByte(path, '.'); idx >= 0 {
		return path[:idx]
	}
	return path
}
