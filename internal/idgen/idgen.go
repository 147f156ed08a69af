package idgen

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// alphabet avoids look-alike characters so ids can be read back from logs.
const alphabet = "23456789abcdefghijkmnpqrstuvwxyz"

const size = 12

// RequestID returns a new "req_" prefixed id.
func RequestID() (string, error) {
	id, err := gonanoid.Generate(alphabet, size)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return "req_" + id, nil
}

// MustRequestID is RequestID for callers that cannot handle an error. The
// generator only fails when the system random source does.
func MustRequestID() string {
	id, err := RequestID()
	if err != nil {
		panic(err)
	}
	return id
}
