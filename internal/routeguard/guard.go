// Package routeguard decides whether a navigation may proceed.
package routeguard

import (
	"context"
	"path"
	"strings"

	"github.com/kanellos-me/console/internal/auth"
)

// Access is the requirement a route places on the session.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

func (a Access) String() string {
	switch a {
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	default:
		return "public"
	}
}

// Rule applies Access to Prefix and everything below it.
type Rule struct {
	Prefix string
	Access Access
}

// DefaultRules gates the admin area and the signed-in pages.
func DefaultRules() []Rule {
	return []Rule{
		{Prefix: Admin, Access: AdminOnly},
		{Prefix: Dashboard, Access: Authenticated},
		{Prefix: Profile, Access: Authenticated},
		{Prefix: Tickets, Access: Authenticated},
		{Prefix: Showcase, Access: Authenticated},
		{Prefix: Demos, Access: Authenticated},
	}
}

// Resolver yields the current identity, fetching it when unknown.
type Resolver interface {
	EnsureResolved(ctx context.Context) *auth.User
}

// Decision is the guard's verdict on one navigation.
type Decision struct {
	Allowed  bool
	Redirect string
	Reason   string
	Access   Access
}

// Guard runs before every navigation.
type Guard struct {
	session Resolver
	rules   []Rule
}

// New creates a guard. With no rules, DefaultRules apply.
func New(session Resolver, rules ...Rule) *Guard {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Guard{session: session, rules: rules}
}

// Check resolves the session and evaluates target. Denials redirect to the
// root path.
func (g *Guard) Check(ctx context.Context, target string) Decision {
	access := g.AccessFor(target)
	user := g.session.EnsureResolved(ctx)

	switch {
	case access == AdminOnly && user == nil:
		return Decision{Redirect: Root, Reason: "sign in required", Access: access}
	case access == AdminOnly && !user.IsAdmin:
		return Decision{Redirect: Root, Reason: "admin only", Access: access}
	case access == Authenticated && user == nil:
		return Decision{Redirect: Root, Reason: "sign in required", Access: access}
	}
	return Decision{Allowed: true, Access: access}
}

// AccessFor returns the requirement of the longest matching rule.
func (g *Guard) AccessFor(target string) Access {
	p := cleanPath(target)
	best := -1
	access := Public
	for _, r := range g.rules {
		prefix := strings.TrimRight(r.Prefix, "/")
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			if len(prefix) > best {
				best = len(prefix)
				access = r.Access
			}
		}
	}
	return access
}

func cleanPath(target string) string {
	if i := strings.IndexAny(target, "?#"); i >= 0 {
		target = target[:i]
	}
	if target == "" {
		return Root
	}
	return path.Clean("/" + target)
}
