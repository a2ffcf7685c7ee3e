// Package auth holds the client's belief about who is signed in.
//
// A Session is either anonymous or authenticated with a User. Only FetchMe,
// Logout and the calls that end in FetchMe move it between the two.
package auth

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/logging"
	"github.com/kanellos-me/console/internal/normalize"
)

const authBase = "/api/auth"

var (
	// ErrNoSession means sign-in was accepted but "me" still reports nobody.
	ErrNoSession = errors.New("signed in but the session could not be established")

	// ErrForgotPasswordTimeout replaces the generic timeout for the
	// forgot-password form.
	ErrForgotPasswordTimeout = errors.New("the reset email request timed out, please try again in a moment")
)

// CookieResetter drops the stored session credential on logout.
type CookieResetter interface {
	Reset(ctx context.Context) error
}

// Options tunes a Session.
type Options struct {
	// ForgotPasswordTimeout aborts the forgot-password call; zero means
	// apiclient.MutationTimeout.
	ForgotPasswordTimeout time.Duration
	Cookies               CookieResetter
}

// Session is the session store.
type Session struct {
	client        *apiclient.Client
	forgotTimeout time.Duration
	cookies       CookieResetter

	mu       sync.RWMutex
	user     *User
	resolved bool
	gen      uint64
}

// NewSession creates an anonymous, unresolved session.
func NewSession(client *apiclient.Client, opts Options) *Session {
	if opts.ForgotPasswordTimeout <= 0 {
		opts.ForgotPasswordTimeout = apiclient.MutationTimeout
	}
	return &Session{
		client:        client,
		forgotTimeout: opts.ForgotPasswordTimeout,
		cookies:       opts.Cookies,
	}
}

// FetchMe asks the backend who we are. Any failure, network or status, leaves
// the session anonymous. It returns the resolved user or nil.
func (s *Session) FetchMe(ctx context.Context) *User {
	gen := s.begin()

	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{Path: authBase + "/me", Op: "fetch_me", SkipOutcome: true})
	var user *User
	if err == nil {
		if u, ok := normalizeUser(normalize.NewRecord(raw)); ok {
			user = &u
		}
	} else {
		logging.New(ctx).LogInfof("fetch_me", "anonymous: %v", err)
	}

	s.finish(gen, user)
	return s.User()
}

// EnsureResolved returns the known user, fetching it first when none is held.
func (s *Session) EnsureResolved(ctx context.Context) *User {
	if u := s.User(); u != nil {
		return u
	}
	return s.FetchMe(ctx)
}

// Login signs in and then resolves the identity. A rejected sign-in leaves the
// session as it was.
func (s *Session) Login(ctx context.Context, email, password string) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   authBase + "/login",
		JSON:   map[string]string{"email": email, "password": password},
		Op:     "login",
	})
	if err != nil {
		return err
	}
	if s.FetchMe(ctx) == nil {
		return ErrNoSession
	}
	return nil
}

// Logout ends the session server-side on a best-effort basis and always
// becomes anonymous locally.
func (s *Session) Logout(ctx context.Context) {
	logger := logging.New(ctx)
	err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   authBase + "/logout",
		JSON:   struct{}{},
		Op:     "logout",
	})
	if err != nil {
		logger.LogWarnf("logout", "server logout failed: %v", err)
	}

	s.mu.Lock()
	s.gen++
	s.user = nil
	s.resolved = true
	s.mu.Unlock()

	if s.cookies != nil {
		if err := s.cookies.Reset(ctx); err != nil {
			logger.LogWarnf("logout", "clearing cookies failed: %v", err)
		}
	}
}

// Register creates an account. It does not sign in.
func (s *Session) Register(ctx context.Context, reg Registration) error {
	return s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   authBase + "/register",
		JSON:   reg,
		Op:     "register",
	})
}

// ForgotPassword requests a reset email. The call is abandoned after the
// configured timeout and reported as ErrForgotPasswordTimeout.
func (s *Session) ForgotPassword(ctx context.Context, email string) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method:  http.MethodPost,
		Path:    authBase + "/forgot-password",
		JSON:    map[string]string{"email": email},
		Timeout: s.forgotTimeout,
		Op:      "forgot_password",
	})
	if errors.Is(err, apiclient.ErrTimedOut) {
		return ErrForgotPasswordTimeout
	}
	return err
}

// ResetPassword sets a new password using the emailed token.
func (s *Session) ResetPassword(ctx context.Context, token, password string) error {
	return s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   authBase + "/reset-password",
		JSON:   map[string]string{"token": token, "password": password},
		Op:     "reset_password",
	})
}

// UpdateProfile edits the caller's profile and re-resolves the identity.
func (s *Session) UpdateProfile(ctx context.Context, upd ProfileUpdate) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   authBase + "/me",
		JSON:   upd,
		Op:     "update_profile",
	})
	if err != nil {
		return err
	}
	s.FetchMe(ctx)
	return nil
}

// User returns a copy of the current identity, or nil when anonymous.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) IsAuthenticated() bool { return s.User() != nil }

func (s *Session) IsAdmin() bool {
	u := s.User()
	return u != nil && u.IsAdmin
}

// Resolved reports whether FetchMe or Logout has completed at least once.
func (s *Session) Resolved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

func (s *Session) Email() string {
	if u := s.User(); u != nil {
		return u.Email
	}
	return ""
}

// Role is "admin" or "user"; anonymous sessions report "user".
func (s *Session) Role() string {
	if u := s.User(); u != nil {
		return u.Role()
	}
	return "user"
}

func (s *Session) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	return s.gen
}

func (s *Session) finish(gen uint64, user *User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.user = user
	s.resolved = true
}
