// Package backend is the HTTP client for the remote activity API.
package backend
