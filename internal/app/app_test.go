package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/kanellos-me/console/config"
	"github.com/kanellos-me/console/internal/analytics"
	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/auth"
	"github.com/kanellos-me/console/internal/demos"
	"github.com/kanellos-me/console/internal/devserver"
	"github.com/kanellos-me/console/internal/routeguard"
	"github.com/kanellos-me/console/internal/tickets"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func startBackend(t *testing.T, opts devserver.Options) string {
	t.Helper()
	s := devserver.New(config.DevServerConfig{
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}, opts)
	server := httptest.NewServer(s.Handler())
	t.Cleanup(server.Close)
	return server.URL
}

func testConfig(backend string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BackendURL:      backend,
			RequestTimeout:  5 * time.Second,
			MutationTimeout: 5 * time.Second,
		},
		Cache: config.CacheConfig{Profile: "test", CookieTTL: time.Hour},
	}
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func analyticsWindow() analytics.Query {
	return analytics.Query{Since: "2025-03-01T00:00:00Z", Until: "2025-03-01T12:00:00Z"}
}

func newApp(t *testing.T, cfg *config.Config, opts ...Option) *App {
	t.Helper()
	a, err := New(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func TestNavigate_GuardsAdminRoutes(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(startBackend(t, devserver.Options{})))

	d := a.Navigate(ctx, routeguard.Admin)
	assert.False(t, d.Allowed)
	assert.Equal(t, routeguard.Root, a.Navigator.Location())

	require.NoError(t, a.Session.Register(ctx, auth.Registration{Email: "bob@example.com", Password: "pw"}))
	require.NoError(t, a.Session.Login(ctx, "bob@example.com", "pw"))

	d = a.Navigate(ctx, routeguard.Tickets)
	assert.True(t, d.Allowed)
	assert.Equal(t, routeguard.Tickets, a.Navigator.Location())

	d = a.Navigate(ctx, routeguard.Admin+"/users")
	assert.False(t, d.Allowed)
	assert.Equal(t, routeguard.Root, a.Navigator.Location())

	a.Session.Logout(ctx)
	require.NoError(t, a.Session.Login(ctx, adminEmail, adminPassword))
	d = a.Navigate(ctx, routeguard.Admin)
	assert.True(t, d.Allowed)
	assert.Equal(t, routeguard.Admin, a.Navigator.Location())
}

func TestNavigate_AnonymousPublicRouteKeepsHistoryClean(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(startBackend(t, devserver.Options{})))

	require.True(t, a.Navigate(ctx, routeguard.ProjectPhotoLock).Allowed)
	d := a.Navigate(ctx, routeguard.ForgotPassword)

	assert.True(t, d.Allowed)
	assert.Nil(t, a.Session.User())
	assert.Equal(t, routeguard.ForgotPassword, a.Navigator.Location())
	assert.Empty(t, a.Navigator.Redirects())

	d = a.Navigate(ctx, routeguard.Tickets)
	assert.False(t, d.Allowed)
	require.Len(t, a.Navigator.Redirects(), 1)
	assert.Equal(t, Redirect{From: routeguard.ForgotPassword, To: routeguard.Root, Reason: "sign in required"}, a.Navigator.Redirects()[0])
}

func TestTracing_ClientAndBackendShareTrace(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	backend := startBackend(t, devserver.Options{TracerProvider: tp})
	a := newApp(t, testConfig(backend), WithTracerProvider(tp))
	require.NoError(t, a.Session.Login(context.Background(), adminEmail, adminPassword))

	find := func(kind trace.SpanKind) sdktrace.ReadOnlySpan {
		for _, s := range recorder.Ended() {
			if s.Name() == "POST /api/auth/login" && s.SpanKind() == kind {
				return s
			}
		}
		return nil
	}
	require.Eventually(t, func() bool {
		return find(trace.SpanKindClient) != nil && find(trace.SpanKindServer) != nil
	}, time.Second, 10*time.Millisecond)

	client, server := find(trace.SpanKindClient), find(trace.SpanKindServer)
	assert.Equal(t, client.SpanContext().TraceID(), server.SpanContext().TraceID())
	assert.Equal(t, client.SpanContext().SpanID(), server.Parent().SpanID())
}

func TestNavigator_RedirectsOnForbidden(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(startBackend(t, devserver.Options{})))

	require.NoError(t, a.Session.Register(ctx, auth.Registration{Email: "bob@example.com", Password: "pw"}))
	require.NoError(t, a.Session.Login(ctx, "bob@example.com", "pw"))
	a.Navigate(ctx, routeguard.Dashboard)

	err := a.Users.LoadAllUsers(ctx)
	require.Error(t, err)
	assert.Equal(t, 403, apiclient.StatusOf(err))
	assert.Equal(t, apiclient.ForbiddenRedirect, a.Navigator.Location())

	redirects := a.Navigator.Redirects()
	require.NotEmpty(t, redirects)
	last := redirects[len(redirects)-1]
	assert.Equal(t, routeguard.Dashboard, last.From)
	assert.Equal(t, "forbidden", last.Reason)
}

func TestNavigator_RedirectsOnUnauthorized(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(startBackend(t, devserver.Options{})))
	a.Navigator.moveTo(routeguard.Tickets)

	err := a.Tickets.LoadTickets(ctx)
	require.Error(t, err)
	assert.Equal(t, 401, apiclient.StatusOf(err))
	assert.Equal(t, apiclient.UnauthorizedRedirect, a.Navigator.Location())
	assert.NotEmpty(t, a.Tickets.State().Err)
}

func TestRefresh_LoadsEveryCollection(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(startBackend(t, devserver.Options{Envelope: devserver.Named})))
	require.NoError(t, a.Session.Login(ctx, adminEmail, adminPassword))

	require.NoError(t, a.Tickets.Submit(ctx, tickets.NewTicket{Title: "Broken link", Description: "404 on /about", Category: "bug"}))
	require.NoError(t, a.Demos.CreateDemo(ctx, demos.NewDemo{Title: "Hello World", HTMLContent: "<p>hi</p>"}))

	require.NoError(t, a.Refresh(ctx))

	assert.Len(t, a.Tickets.State().Items, 1)
	assert.Len(t, a.Users.State().Items, 1)
	assert.Empty(t, a.Showcase.State().Items)
	require.Len(t, a.Demos.State().Items, 1)
	assert.Equal(t, "hello-world", a.Demos.State().Items[0].Slug)
	assert.Positive(t, a.Analytics.TotalRequests())
	assert.NotEmpty(t, a.Analytics.ChartData())
}

func TestRefresh_ReportsFirstError(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(startBackend(t, devserver.Options{})))

	err := a.Refresh(ctx)
	require.Error(t, err)
	assert.NotEmpty(t, a.Tickets.State().Err)
	assert.NotEmpty(t, a.Users.State().Err)
	assert.NotEmpty(t, a.Analytics.State().Err)
}

func TestStores_AcrossBackendShapes(t *testing.T) {
	casings := map[string]devserver.Casing{
		"camel":  devserver.CamelCase,
		"snake":  devserver.SnakeCase,
		"pascal": devserver.PascalCase,
	}
	envelopes := map[string]devserver.Envelope{
		"bare":  devserver.Bare,
		"data":  devserver.DataKey,
		"items": devserver.ItemsKey,
		"named": devserver.Named,
	}

	for cname, casing := range casings {
		for ename, envelope := range envelopes {
			t.Run(cname+"/"+ename, func(t *testing.T) {
				ctx := context.Background()
				backend := startBackend(t, devserver.Options{Casing: casing, Envelope: envelope, GroupedAnalytics: envelope == devserver.Named})
				a := newApp(t, testConfig(backend))

				require.NoError(t, a.Session.Login(ctx, adminEmail, adminPassword))
				require.True(t, a.Session.IsAdmin())
				assert.Equal(t, adminEmail, a.Session.Email())

				require.NoError(t, a.Tickets.Submit(ctx, tickets.NewTicket{Title: "Slow page", Description: "takes ages", Category: "performance"}))
				items := a.Tickets.State().Items
				require.Len(t, items, 1)
				assert.Equal(t, "Slow page", items[0].Title)
				assert.False(t, items[0].IsResolved)

				require.NoError(t, a.Tickets.Resolve(ctx, items[0].ID))
				assert.True(t, a.Tickets.State().Items[0].IsResolved)

				require.NoError(t, a.Users.LoadAllUsers(ctx))
				users := a.Users.State().Items
				require.Len(t, users, 1)
				assert.True(t, users[0].IsAdmin)

				require.NoError(t, a.Analytics.FetchDashboard(ctx, analyticsWindow()))
				assert.Positive(t, a.Analytics.TotalRequests())
			})
		}
	}
}

func TestTickets_FallsBackWhenPersonalListingMissing(t *testing.T) {
	ctx := context.Background()
	a := newApp(t, testConfig(startBackend(t, devserver.Options{DisableMyTickets: true})))
	require.NoError(t, a.Session.Login(ctx, adminEmail, adminPassword))
	require.NoError(t, a.Tickets.Submit(ctx, tickets.NewTicket{Title: "Typo", Description: "on home page", Category: "content"}))

	require.NoError(t, a.Tickets.LoadMyTickets(ctx))
	require.Len(t, a.Tickets.State().Items, 1)
	assert.Equal(t, "Typo", a.Tickets.State().Items[0].Title)
	assert.Empty(t, a.Tickets.State().Err)
}

func TestSession_PersistsCookiesInRedis(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupRedis(t)
	cfg := testConfig(startBackend(t, devserver.Options{}))

	first := newApp(t, cfg, WithRedisClient(rdb))
	require.NoError(t, first.Session.Login(ctx, adminEmail, adminPassword))
	assert.True(t, mr.Exists("console:cookies:test"))

	second := newApp(t, cfg, WithRedisClient(rdb))
	user := second.Session.EnsureResolved(ctx)
	require.NotNil(t, user)
	assert.Equal(t, adminEmail, user.Email)

	second.Session.Logout(ctx)
	assert.False(t, mr.Exists("console:cookies:test"))

	third := newApp(t, cfg, WithRedisClient(rdb))
	assert.Nil(t, third.Session.EnsureResolved(ctx))
}

func TestNew_DialsConfiguredRedis(t *testing.T) {
	mr, _ := setupRedis(t)
	cfg := testConfig(startBackend(t, devserver.Options{}))
	cfg.Cache.RedisAddr = mr.Addr()

	a, err := New(context.Background(), cfg)
	require.NoError(t, err)
	assert.True(t, a.ownsRedis)
	require.NoError(t, a.Close())
}

func TestNew_RejectsUnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig("http://127.0.0.1:1")
	cfg.Cache.RedisAddr = addr
	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
