package demos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDemos struct {
	mu      sync.Mutex
	demos   []map[string]any
	listing int
	wait    time.Duration
}

func (f *fakeDemos) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == BasePath:
		f.mu.Lock()
		f.listing++
		body, _ := json.Marshal(map[string]any{"demos": f.demos})
		f.mu.Unlock()
		_, _ = w.Write(body)
	case r.Method == http.MethodPost && r.URL.Path == BasePath:
		select {
		case <-time.After(f.wait):
		case <-r.Context().Done():
			return
		}
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		in["id"] = "d1"
		f.mu.Lock()
		f.demos = append(f.demos, in)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	case r.URL.Path == BasePath+"/slug/locked":
		w.WriteHeader(http.StatusForbidden)
	case r.URL.Path == BasePath+"/slug/flaky":
		w.WriteHeader(http.StatusBadGateway)
	case r.URL.Path == BasePath+"/slug/hello-world":
		_, _ = w.Write([]byte(`{"data":{"id":"d1","slug":"hello-world","html_content":"<h1>hi</h1>","user_ids":["u1","u2"]}}`))
	case r.Method == http.MethodDelete && r.URL.Path == BasePath+"/d1":
		f.mu.Lock()
		f.demos = []map[string]any{}
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeDemos) listings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listing
}

func setupStore(t *testing.T, f *fakeDemos, opts Options) *Store {
	t.Helper()
	server := httptest.NewServer(f)
	t.Cleanup(server.Close)
	client, err := apiclient.New(apiclient.Options{BaseURL: server.URL})
	require.NoError(t, err)
	return NewStore(client, opts)
}

func TestStore_CreateAndDelete(t *testing.T) {
	f := &fakeDemos{demos: []map[string]any{}}
	s := setupStore(t, f, Options{})
	ctx := context.Background()

	require.NoError(t, s.CreateDemo(ctx, NewDemo{Title: " Hello, World ", HTMLContent: "<h1>hi</h1>"}))
	state := s.State()
	require.Len(t, state.Items, 1)
	assert.Equal(t, "hello-world", state.Items[0].Slug)
	assert.Equal(t, "Hello, World", state.Items[0].Title)
	assert.Equal(t, []string{}, state.Items[0].UserIDs)

	require.NoError(t, s.CreateDemo(ctx, NewDemo{Title: "!!!"}))
	assert.Equal(t, "demo", s.State().Items[1].Slug)

	require.NoError(t, s.DeleteDemo(ctx, "d1"))
	assert.Empty(t, s.State().Items)
	assert.Equal(t, 3, f.listings())
}

func TestStore_CreateDemo_Timeout(t *testing.T) {
	f := &fakeDemos{wait: time.Second}
	s := setupStore(t, f, Options{CreateTimeout: 30 * time.Millisecond})

	err := s.CreateDemo(context.Background(), NewDemo{Title: "slow"})
	assert.ErrorIs(t, err, apiclient.ErrTimedOut)
	assert.Zero(t, f.listings())
}

func TestStore_GetDemoBySlug(t *testing.T) {
	s := setupStore(t, &fakeDemos{}, Options{})
	ctx := context.Background()

	d, err := s.GetDemoBySlug(ctx, "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", d.HTMLContent)
	assert.Equal(t, []string{"u1", "u2"}, d.UserIDs)

	_, err = s.GetDemoBySlug(ctx, "locked")
	require.Error(t, err)
	assert.Equal(t, "You do not have access to this demo.", s.Current().Err)

	_, err = s.GetDemoBySlug(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, "Demo not found.", s.Current().Err)

	_, err = s.GetDemoBySlug(ctx, "flaky")
	require.Error(t, err)
	assert.Equal(t, "Failed to load demo (502)", s.Current().Err)
}
