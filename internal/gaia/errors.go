package gaia

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEligibleNode is returned when the directory lists no online node
	// serving a matching model.
	ErrNoEligibleNode = errors.New("no eligible node")

	// ErrMalformedResponse is returned when a payload does not match the expected schema.
	ErrMalformedResponse = errors.New("malformed response")
)

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
	if body := strings.TrimSpace(e.Body); body != "" {
		msg += ": " + body
	}
	return msg
}

// malformed wraps err so that errors.Is(err, ErrMalformedResponse) holds.
func malformed(what string, err error) error {
	return fmt.Errorf("%s: %w: %w", what, ErrMalformedResponse, err)
}
