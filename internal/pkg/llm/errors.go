package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
)

// ErrMissingCredential is returned when the selected provider has no API key.
// It is fatal for every request until the configuration is corrected.
var ErrMissingCredential = errors.New("AI provider api key is empty")

// ErrNoProvider is returned when no enabled provider matches an assignment.
var ErrNoProvider = errors.New("no enabled AI provider")

// ErrEmptyResponse is returned when the model produced no usable text.
var ErrEmptyResponse = errors.New("empty response from AI")

// ErrAttachmentUnsupported is returned when an attachment-bearing request is
// routed to a provider type that only handles text.
var ErrAttachmentUnsupported = errors.New("provider does not support attachments")

// StatusError carries an upstream HTTP status alongside the response body.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// IsRateLimit reports whether err is a rate-limit class failure that is safe
// to retry. Detection is by status code where available, with a message
// substring fallback for providers that only surface text.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests
	}
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return ge.Code == http.StatusTooManyRequests
	}

	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"429", "rate limit", "resource exhausted", "resource_exhausted", "quota"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
