package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Process exit statuses returned by [ExitCode].
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitUsage      = 2   // invalid design, config or arguments
	ExitUnroutable = 3   // a requested net could not be routed
	ExitCanceled   = 130 // interrupted, as after SIGINT in a shell
)

// HTTPStatus maps a code to the status the routing service answers with.
// Codes without a specific mapping, including the empty code, give 500.
func (c Code) HTTPStatus() int {
	switch {
	case strings.HasPrefix(string(c), "INVALID_"):
		return http.StatusBadRequest
	case c == ErrCodeNotFound || strings.HasSuffix(string(c), "_NOT_FOUND"):
		return http.StatusNotFound
	case c == ErrCodeUnroutable:
		return http.StatusUnprocessableEntity
	case c == ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// HTTPStatus returns the response status for err. Cancelled or timed out
// requests give 503.
func HTTPStatus(err error) int {
	if code := GetCode(err); code != "" {
		return code.HTTPStatus()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ExitCode returns the process exit status for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	case Is(err, ErrCodeUnroutable):
		return ExitUnroutable
	case GetCode(err).HTTPStatus() == http.StatusBadRequest:
		return ExitUsage
	}
	return ExitFailure
}
