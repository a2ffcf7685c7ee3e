package cookiestore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestRedisStore(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "work", time.Hour)
	ctx := context.Background()

	t.Run("empty profile loads nothing", func(t *testing.T) {
		cookies, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, cookies)
	})

	t.Run("save and load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, []*http.Cookie{{Name: "access_token", Value: "abc"}}))
		assert.True(t, mr.Exists("console:cookies:work"))
		assert.Equal(t, time.Hour, mr.TTL("console:cookies:work"))

		cookies, err := store.Load(ctx)
		require.NoError(t, err)
		require.Len(t, cookies, 1)
		assert.Equal(t, "access_token", cookies[0].Name)
		assert.Equal(t, "abc", cookies[0].Value)
	})

	t.Run("saving nothing clears", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, nil))
		assert.False(t, mr.Exists("console:cookies:work"))
	})

	t.Run("corrupt payload", func(t *testing.T) {
		require.NoError(t, mr.Set("console:cookies:work", "{"))
		_, err := store.Load(ctx)
		assert.Error(t, err)
	})
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	rdb, err := NewRedisClient(context.Background(), addr, "")
	require.NoError(t, err)
	_ = rdb.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), addr, "")
	assert.Error(t, err)
}

func TestJarPersistsThroughStore(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewRedisStore(client, "default", 0)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "from-server", Path: "/"})
	}))
	defer server.Close()

	jar, err := apiclient.NewJar(ctx, server.URL, store)
	require.NoError(t, err)
	api, err := apiclient.New(apiclient.Options{BaseURL: server.URL, Jar: jar})
	require.NoError(t, err)
	require.NoError(t, api.Send(ctx, apiclient.Request{Method: http.MethodPost, Path: "/api/auth/login"}))

	// a second run starts from the store alone
	reloaded, err := apiclient.NewJar(ctx, server.URL, store)
	require.NoError(t, err)
	u, _ := url.Parse(server.URL)
	cookies := reloaded.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "from-server", cookies[0].Value)

	require.NoError(t, reloaded.Reset(ctx))
	cookies, err = store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, cookies)
}
