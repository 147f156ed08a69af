// Package validation defines the contract between reconstructed form trees
// and the policies that validate them, plus two reusable policies: an
// OpenAPI component schema (SchemaValidator) and go-playground struct tags
// (StructValidator). Collapse prepares issues for redisplay.
package validation
