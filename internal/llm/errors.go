package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// StatusError is a non-200 answer from a provider API
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error (%d)", e.Provider, e.Code)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Code, e.Message)
}

// Retryable reports whether a failed Lookup is worth repeating: throttling,
// server-side errors and network failures are; cancellation and client errors are not
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= http.StatusInternalServerError
	}

	var ne net.Error
	return errors.As(err, &ne)
}
