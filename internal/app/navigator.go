package app

import (
	"context"
	"sync"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/logging"
	"github.com/kanellos-me/console/internal/routeguard"
)

// Redirect records one forced move of the location.
type Redirect struct {
	From   string
	To     string
	Reason string
}

// Navigator tracks the current location. It is the OutcomeHandler the
// client reports to, so unauthorized and forbidden answers move the location
// the same way a denied navigation does.
type Navigator struct {
	mu        sync.RWMutex
	location  string
	redirects []Redirect
}

func NewNavigator() *Navigator {
	return &Navigator{location: routeguard.Root}
}

// HandleOutcome redirects after 401 and 403 responses.
func (n *Navigator) HandleOutcome(ctx context.Context, o apiclient.Outcome) {
	to, ok := apiclient.RedirectFor(o)
	if !ok {
		return
	}
	n.redirect(ctx, to, o.String())
}

func (n *Navigator) Location() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.location
}

// Redirects returns every forced move so far, oldest first.
func (n *Navigator) Redirects() []Redirect {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]Redirect, len(n.redirects))
	copy(out, n.redirects)
	return out
}

func (n *Navigator) moveTo(path string) {
	n.mu.Lock()
	n.location = path
	n.mu.Unlock()
}

func (n *Navigator) redirect(ctx context.Context, to, reason string) {
	n.mu.Lock()
	r := Redirect{From: n.location, To: to, Reason: reason}
	n.location = to
	n.redirects = append(n.redirects, r)
	n.mu.Unlock()
	logging.New(ctx).LogInfof("navigate", "redirect %s -> %s (%s)", r.From, r.To, r.Reason)
}
