// Package app assembles the console: one value holding the HTTP client, the
// session, the route guard and every resource store, built once at start-up
// and passed to whatever drives it.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kanellos-me/console/config"
	"github.com/kanellos-me/console/internal/analytics"
	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/auth"
	"github.com/kanellos-me/console/internal/cookiestore"
	"github.com/kanellos-me/console/internal/demos"
	"github.com/kanellos-me/console/internal/routeguard"
	"github.com/kanellos-me/console/internal/showcase"
	"github.com/kanellos-me/console/internal/tickets"
	"github.com/kanellos-me/console/internal/users"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

type App struct {
	Config    *config.Config
	Client    *apiclient.Client
	Jar       *apiclient.Jar
	Navigator *Navigator
	Session   *auth.Session
	Guard     *routeguard.Guard
	Tickets   *tickets.Store
	Showcase  *showcase.Store
	Demos     *demos.Store
	Users     *users.Store
	Analytics *analytics.Store

	redis     *redis.Client
	ownsRedis bool
}

type options struct {
	transport   http.RoundTripper
	redis       *redis.Client
	cookieStore apiclient.CookieStore
	tracer      trace.TracerProvider
}

// Option customises New.
type Option func(*options)

// WithTransport replaces the HTTP transport, e.g. in tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithRedisClient persists cookies through an existing client instead of
// dialing REDIS_ADDR. The caller keeps ownership.
func WithRedisClient(c *redis.Client) Option {
	return func(o *options) { o.redis = c }
}

// WithCookieStore persists cookies somewhere other than Redis.
func WithCookieStore(s apiclient.CookieStore) Option {
	return func(o *options) { o.cookieStore = s }
}

// WithTracerProvider sends client spans to tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// New builds the application. Cookies are kept in Redis when a client is
// supplied or REDIS_ADDR is set, and in memory otherwise.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Navigator: NewNavigator()}

	store := o.cookieStore
	if store == nil {
		rc := o.redis
		if rc == nil && cfg.Cache.RedisAddr != "" {
			var err error
			rc, err = cookiestore.NewRedisClient(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword)
			if err != nil {
				return nil, err
			}
			a.ownsRedis = true
		}
		if rc != nil {
			a.redis = rc
			store = cookiestore.NewRedisStore(rc, cfg.Cache.Profile, cfg.Cache.CookieTTL)
		}
	}

	jar, err := apiclient.NewJar(ctx, cfg.API.BackendURL, store)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Jar = jar

	client, err := apiclient.New(apiclient.Options{
		BaseURL:        cfg.API.BackendURL,
		Timeout:        cfg.API.RequestTimeout,
		Jar:            jar,
		Transport:      o.transport,
		OnOutcome:      a.Navigator,
		TracerProvider: o.tracer,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create api client: %w", err)
	}
	a.Client = client

	mutation := cfg.API.MutationTimeout
	a.Session = auth.NewSession(client, auth.Options{ForgotPasswordTimeout: mutation, Cookies: jar})
	a.Guard = routeguard.New(a.Session)
	a.Tickets = tickets.NewStore(client, tickets.Options{SubmitTimeout: mutation})
	a.Showcase = showcase.NewStore(client, showcase.Options{BasePath: cfg.ShowcaseBase(), CreateTimeout: mutation})
	a.Demos = demos.NewStore(client, demos.Options{CreateTimeout: mutation})
	a.Users = users.NewStore(client, users.Options{BasePath: cfg.UsersBase(), LoadTimeout: mutation})
	a.Analytics = analytics.NewStore(client)
	return a, nil
}

// Navigate runs the guard for path and moves there, or to the guard's
// redirect when denied.
func (a *App) Navigate(ctx context.Context, path string) routeguard.Decision {
	d := a.Guard.Check(ctx, path)
	if d.Allowed {
		a.Navigator.moveTo(path)
	} else {
		a.Navigator.redirect(ctx, d.Redirect, d.Reason)
	}
	return d
}

// Refresh loads the admin dashboard collections concurrently. Every load runs
// to completion; the first error is returned.
func (a *App) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return a.Tickets.LoadTickets(ctx) })
	g.Go(func() error { return a.Users.LoadAllUsers(ctx) })
	g.Go(func() error { return a.Showcase.LoadItems(ctx) })
	g.Go(func() error { return a.Demos.LoadDemos(ctx) })
	g.Go(func() error { return a.Analytics.FetchDashboard(ctx, analytics.Query{}) })
	return g.Wait()
}

// Close releases the Redis connection if New opened it.
func (a *App) Close() error {
	if a.ownsRedis && a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
