package tmdb

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig indicates invalid client configuration
	ErrInvalidConfig = errors.New("invalid tmdb configuration")
	// ErrInvalidInput indicates malformed request parameters
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthorized indicates the API key was rejected
	ErrUnauthorized = errors.New("unauthorized - check your API key")
	// ErrRateLimited indicates the API answered 429
	ErrRateLimited = errors.New("rate limit exceeded - please try again later")
)

// APIError represents a non-success HTTP status other than 401 and 429
type APIError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("server error with code: %d", e.StatusCode)
}

// IsNotFound checks if the error indicates a not found response
func (e *APIError) IsNotFound() bool {
	return e.StatusCode == 404
}

// DecodeError wraps a response body that did not match the expected shape
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode data: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// TransportError wraps DNS, timeout and connection failures
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an authentication failure
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited reports whether err is a 429 response
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsServerError reports whether err carries an unexpected HTTP status
func IsServerError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsDecode reports whether err is a response decoding failure
func IsDecode(err error) bool {
	var decErr *DecodeError
	return errors.As(err, &decErr)
}

// IsTransport reports whether err is a transport level failure
func IsTransport(err error) bool {
	var tErr *TransportError
	return errors.As(err, &tErr)
}
