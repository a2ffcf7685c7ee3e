package apiclient

import (
	"context"
	"net/http"
)

// Outcome classifies a completed response for the global auth policy.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeUnauthorized
	OutcomeForbidden
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeForbidden:
		return "forbidden"
	default:
		return "error"
	}
}

// Classify maps a status code to an Outcome.
func Classify(status int) Outcome {
	switch {
	case status >= 200 && status < 300:
		return OutcomeSuccess
	case status == http.StatusUnauthorized:
		return OutcomeUnauthorized
	case status == http.StatusForbidden:
		return OutcomeForbidden
	default:
		return OutcomeError
	}
}

// RedirectFor returns where the client should move after o, if anywhere.
func RedirectFor(o Outcome) (string, bool) {
	switch o {
	case OutcomeUnauthorized:
		return UnauthorizedRedirect, true
	case OutcomeForbidden:
		return ForbiddenRedirect, true
	}
	return "", false
}

// OutcomeHandler is told about every completed response. The application
// installs one to react to unauthorized and forbidden answers.
type OutcomeHandler interface {
	HandleOutcome(ctx context.Context, o Outcome)
}

// OutcomeFunc adapts a function to OutcomeHandler.
type OutcomeFunc func(ctx context.Context, o Outcome)

func (f OutcomeFunc) HandleOutcome(ctx context.Context, o Outcome) { f(ctx, o) }
