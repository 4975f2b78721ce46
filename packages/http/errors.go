package http

import "errors"

// Error kinds surfaced by the request executor. Callers match them
// with errors.Is; the wrapped message carries the underlying cause.
var (
	// ErrUnsupportedMethod is returned when the request method is not
	// one of GET, POST, PUT, DELETE. No network activity occurs.
	ErrUnsupportedMethod = errors.New("unsupported HTTP method")

	// ErrInvalidURL is returned when the request URL cannot be parsed
	// while deriving the digest URI.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrRequestFailed is returned when the real request fails at the
	// transport level.
	ErrRequestFailed = errors.New("HTTP request failed")

	// ErrBodyReadFailed is returned when a response was received but
	// its body could not be read.
	ErrBodyReadFailed = errors.New("failed to read response body")
)
