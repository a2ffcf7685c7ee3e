package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth is a minimal auth backend whose "me" status can be flipped.
type fakeAuth struct {
	meStatus     atomic.Int32
	meBody       atomic.Value
	logoutStatus atomic.Int32
	forgotDelay  time.Duration
	lastLogin    atomic.Value
}

func newFakeAuth() *fakeAuth {
	f := &fakeAuth{}
	f.meStatus.Store(http.StatusOK)
	f.meBody.Store(`{"userId":"u1","email":"ada@example.com","isAdmin":false}`)
	f.logoutStatus.Store(http.StatusOK)
	return f
}

func (f *fakeAuth) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/auth/me":
		if r.Method == http.MethodPut {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(int(f.meStatus.Load()))
		_, _ = w.Write([]byte(f.meBody.Load().(string)))
	case "/api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastLogin.Store(body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
	case "/api/auth/logout":
		w.WriteHeader(int(f.logoutStatus.Load()))
	case "/api/auth/forgot-password":
		select {
		case <-time.After(f.forgotDelay):
		case <-r.Context().Done():
			return
		}
		w.WriteHeader(http.StatusAccepted)
	case "/api/auth/register", "/api/auth/reset-password":
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type resetCounter struct{ n atomic.Int32 }

func (r *resetCounter) Reset(context.Context) error {
	r.n.Add(1)
	return nil
}

func setupSession(t *testing.T, f *fakeAuth, opts Options) *Session {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	client, err := apiclient.New(apiclient.Options{BaseURL: server.URL})
	require.NoError(t, err)
	return NewSession(client, opts)
}

func TestSession_FetchMe(t *testing.T) {
	f := newFakeAuth()
	s := setupSession(t, f, Options{})
	ctx := context.Background()

	assert.False(t, s.Resolved())

	user := s.FetchMe(ctx)
	require.NotNil(t, user)
	assert.Equal(t, "u1", user.ID)
	assert.True(t, s.IsAuthenticated())
	assert.True(t, s.Resolved())
	assert.Equal(t, "ada@example.com", s.Email())
	assert.Equal(t, "user", s.Role())

	t.Run("server error clears identity", func(t *testing.T) {
		f.meStatus.Store(http.StatusInternalServerError)
		assert.Nil(t, s.FetchMe(ctx))
		assert.False(t, s.IsAuthenticated())
		assert.Nil(t, s.User())
	})

	t.Run("network failure clears identity", func(t *testing.T) {
		f.meStatus.Store(http.StatusOK)
		require.NotNil(t, s.FetchMe(ctx))

		client, err := apiclient.New(apiclient.Options{BaseURL: "http://127.0.0.1:1"})
		require.NoError(t, err)
		offline := NewSession(client, Options{})
		offline.user = &User{ID: "stale"}
		assert.Nil(t, offline.FetchMe(ctx))
	})
}

func TestSession_FetchMe_Shapes(t *testing.T) {
	bodies := []string{
		`{"userId":"u1","isAdmin":true}`,
		`{"user_id":"u1","is_admin":true}`,
		`{"Id":"u1","IsAdmin":true}`,
		`{"user":{"id":"u1","role":"Admin"}}`,
	}

	for _, body := range bodies {
		f := newFakeAuth()
		f.meBody.Store(body)
		s := setupSession(t, f, Options{})

		user := s.FetchMe(context.Background())
		require.NotNil(t, user, body)
		assert.Equal(t, "u1", user.ID, body)
		assert.True(t, s.IsAdmin(), body)
		assert.Equal(t, "admin", s.Role(), body)
	}

	t.Run("empty object is anonymous", func(t *testing.T) {
		f := newFakeAuth()
		f.meBody.Store(`{}`)
		s := setupSession(t, f, Options{})
		assert.Nil(t, s.FetchMe(context.Background()))
	})
}

func TestSession_Login(t *testing.T) {
	f := newFakeAuth()
	s := setupSession(t, f, Options{})
	ctx := context.Background()

	t.Run("rejected login keeps state and surfaces message", func(t *testing.T) {
		err := s.Login(ctx, "ada@example.com", "wrong")
		require.Error(t, err)
		assert.Equal(t, "Invalid email or password", err.Error())
		assert.False(t, s.IsAuthenticated())
	})

	t.Run("accepted login resolves identity", func(t *testing.T) {
		require.NoError(t, s.Login(ctx, "ada@example.com", "secret"))
		assert.True(t, s.IsAuthenticated())
		body := f.lastLogin.Load().(map[string]string)
		assert.Equal(t, "ada@example.com", body["email"])
	})

	t.Run("accepted login without identity", func(t *testing.T) {
		f.meStatus.Store(http.StatusUnauthorized)
		err := s.Login(ctx, "ada@example.com", "secret")
		assert.ErrorIs(t, err, ErrNoSession)
	})
}

func TestSession_Logout(t *testing.T) {
	f := newFakeAuth()
	cookies := &resetCounter{}
	s := setupSession(t, f, Options{Cookies: cookies})
	ctx := context.Background()

	require.NotNil(t, s.FetchMe(ctx))

	f.logoutStatus.Store(http.StatusInternalServerError)
	s.Logout(ctx)

	assert.False(t, s.IsAuthenticated())
	assert.True(t, s.Resolved())
	assert.EqualValues(t, 1, cookies.n.Load())
}

func TestSession_ForgotPassword(t *testing.T) {
	t.Run("timeout has its own error", func(t *testing.T) {
		f := newFakeAuth()
		f.forgotDelay = time.Second
		s := setupSession(t, f, Options{ForgotPasswordTimeout: 30 * time.Millisecond})

		err := s.ForgotPassword(context.Background(), "ada@example.com")
		assert.ErrorIs(t, err, ErrForgotPasswordTimeout)
	})

	t.Run("in time", func(t *testing.T) {
		f := newFakeAuth()
		s := setupSession(t, f, Options{ForgotPasswordTimeout: time.Second})
		assert.NoError(t, s.ForgotPassword(context.Background(), "ada@example.com"))
	})
}

func TestSession_OneShotCalls(t *testing.T) {
	f := newFakeAuth()
	s := setupSession(t, f, Options{})
	ctx := context.Background()

	require.NoError(t, s.Register(ctx, Registration{Email: "new@example.com", Password: "pw"}))
	require.NoError(t, s.ResetPassword(ctx, "token", "pw2"))
	assert.False(t, s.IsAuthenticated(), "register does not sign in")

	name := "ada"
	require.NoError(t, s.UpdateProfile(ctx, ProfileUpdate{Username: &name}))
	assert.True(t, s.IsAuthenticated())
}

func TestSession_EnsureResolved(t *testing.T) {
	f := newFakeAuth()
	s := setupSession(t, f, Options{})
	ctx := context.Background()

	require.NotNil(t, s.EnsureResolved(ctx))

	// a known identity is not re-fetched
	f.meStatus.Store(http.StatusInternalServerError)
	assert.NotNil(t, s.EnsureResolved(ctx))
}
