// Package activity describes the activity creation form: the OpenAPI schema
// for its raw shape, the typed Record sent to the backend, and the Validator
// that turns a reconstructed tree into that Record.
package activity
