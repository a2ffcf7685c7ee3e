package apiclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kanellos-me/console/internal/normalize"
	"github.com/tidwall/gjson"
)

// ErrTimedOut is returned when a call outlives its deadline and is aborted.
var ErrTimedOut = errors.New("request timed out")

// TransportError is a failure with no HTTP response at all.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a completed call with a non-2xx status.
type StatusError struct {
	Status     int
	StatusText string
	// Message comes from the response envelope when one could be parsed.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.StatusText != "" {
		return e.StatusText
	}
	return fmt.Sprintf("request failed (%d)", e.Status)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == status
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// EnvelopeMessage extracts a human readable error from an error payload: a bare
// string, or the message, error or title field of an object.
func EnvelopeMessage(raw gjson.Result) string {
	if raw.Type == gjson.String {
		return strings.TrimSpace(raw.String())
	}
	if !raw.IsObject() {
		return ""
	}
	for _, key := range []string{"message", "error", "title"} {
		v := raw.Get(key)
		if v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return v.String()
		}
	}
	return ""
}

// UserMessage renders err the way stores present it to people.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	var te *TransportError
	switch {
	case errors.Is(err, ErrTimedOut):
		return "Request timed out. Is the backend running?"
	case errors.Is(err, normalize.ErrInvalidJSON):
		return "Invalid JSON from server"
	case errors.Is(err, normalize.ErrUnexpectedShape):
		return "Unexpected response shape from server"
	case errors.As(err, &se):
		return se.Error()
	case errors.As(err, &te):
		return "Network error. Check that the backend is running."
	default:
		return err.Error()
	}
}

// LookupTexts are the fallbacks for a failed single-item fetch.
type LookupTexts struct {
	// Resource names the item in the generic text, e.g. "demo".
	Resource  string
	Forbidden string
	NotFound  string
}

// LookupMessage renders a failed single-item fetch. A message from the
// response envelope wins; otherwise 403 and 404 get the given texts and other
// statuses a generic one.
func LookupMessage(err error, texts LookupTexts) string {
	var se *StatusError
	if !errors.As(err, &se) || se.Message != "" {
		return UserMessage(err)
	}
	switch se.Status {
	case http.StatusForbidden:
		return texts.Forbidden
	case http.StatusNotFound:
		return texts.NotFound
	}
	if texts.Resource == "" {
		return fmt.Sprintf("Failed to load (%d)", se.Status)
	}
	return fmt.Sprintf("Failed to load %s (%d)", texts.Resource, se.Status)
}
}
