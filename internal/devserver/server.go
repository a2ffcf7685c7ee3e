// Package devserver is an in-memory backend that serves every endpoint the
// console talks to. It exists for local development and for end-to-end tests,
// and can answer in any of the field casings and envelope shapes the client
// has to cope with.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kanellos-me/console/config"
	"github.com/kanellos-me/console/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Casing selects how record field names are written.
type Casing int

const (
	CamelCase Casing = iota
	SnakeCase
	PascalCase
)

// Envelope selects how collections are wrapped.
type Envelope int

const (
	// Bare sends a plain JSON array.
	Bare Envelope = iota
	// DataKey wraps collections as {"data": [...]}.
	DataKey
	// ItemsKey wraps collections as {"items": [...]}.
	ItemsKey
	// Named wraps collections under the resource name, e.g. {"tickets": [...]}.
	Named
)

// SetGinMode switches gin to release mode in production.
func SetGinMode(env string) {
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
}

// ParseCasing maps camel, snake or pascal to a Casing.
func ParseCasing(v string) (Casing, error) {
	switch strings.ToLower(v) {
	case "", "camel":
		return CamelCase, nil
	case "snake":
		return SnakeCase, nil
	case "pascal":
		return PascalCase, nil
	}
	return CamelCase, fmt.Errorf("unknown casing %q", v)
}

// ParseEnvelope maps bare, data, items or named to an Envelope.
func ParseEnvelope(v string) (Envelope, error) {
	switch strings.ToLower(v) {
	case "", "bare":
		return Bare, nil
	case "data":
		return DataKey, nil
	case "items":
		return ItemsKey, nil
	case "named":
		return Named, nil
	}
	return Bare, fmt.Errorf("unknown envelope %q", v)
}

// Options changes the shape of responses and which optional endpoints exist.
type Options struct {
	Casing   Casing
	Envelope Envelope
	// GroupedAnalytics answers the dashboard in the raw grouped form.
	GroupedAnalytics bool
	// DisableMyTickets makes the personal ticket listing answer 404.
	DisableMyTickets bool
	// DisableUpload leaves the showcase upload endpoint unregistered.
	DisableUpload bool
	// LoginRate and LoginBurst throttle sign-in attempts per email.
	LoginRate  rate.Limit
	LoginBurst int
	// PublicURL prefixes uploaded file URLs; empty means relative URLs.
	PublicURL string
	// TracerProvider receives one server span per request; nil means the
	// global provider.
	TracerProvider trace.TracerProvider
}

const (
	sessionCookie  = "access_token"
	sessionTTL     = 7 * 24 * time.Hour
	defaultService = "console-devserver"
)

// Server holds the in-memory state and the gin engine serving it.
type Server struct {
	cfg       config.DevServerConfig
	opts      Options
	engine    *gin.Engine
	handler   http.Handler
	startedAt time.Time

	mu          sync.RWMutex
	users       map[string]*account
	sessions    map[string]string
	resetTokens map[string]string
	tickets     []*ticket
	replies     map[string][]*reply
	showcase    []*showcaseItem
	demos       []*demo
	files       map[string]upload

	limitMu  sync.Mutex
	limiters map[string]*rate.Limiter
}

// New builds a server with the configured admin account seeded.
func New(cfg config.DevServerConfig, opts Options) *Server {
	if opts.LoginRate == 0 {
		opts.LoginRate = rate.Every(time.Second)
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}
	s := &Server{
		cfg:         cfg,
		opts:        opts,
		users:       map[string]*account{},
		sessions:    map[string]string{},
		resetTokens: map[string]string{},
		replies:     map[string][]*reply{},
		files:       map[string]upload{},
		limiters:    map[string]*rate.Limiter{},
		startedAt:   time.Now(),
	}
	now := time.Now().UTC()
	admin := &account{
		ID:        uuid.NewString(),
		Email:     cfg.AdminEmail,
		Username:  "admin",
		Password:  cfg.AdminPassword,
		IsAdmin:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[admin.ID] = admin
	s.engine = s.buildRouter()

	traceOpts := []otelhttp.Option{
		otelhttp.WithPropagators(propagation.TraceContext{}),
		otelhttp.WithSpanNameFormatter(serverSpanName),
	}
	if opts.TracerProvider != nil {
		traceOpts = append(traceOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	s.handler = otelhttp.NewHandler(s.engine, defaultService, traceOpts...)
	return s
}

// Handler returns the traced HTTP handler, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.handler }

func serverSpanName(_ string, r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

func (s *Server) buildRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware())
	if s.cfg.AllowedOrigin != "" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{s.cfg.AllowedOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-Id"},
			ExposeHeaders:    []string{"X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s.registerHealth(r)

	r.Use(s.sessionMiddleware())
	s.registerAuth(r.Group("/api/auth"))
	s.registerTickets(r.Group("/ticket/TicketSubmit", requireUser()))
	s.registerShowcase(r.Group("/api/showcase"))
	s.registerDemos(r.Group("/api/demos", requireUser()))
	s.registerAnalytics(r.Group("/api/cloudflare/analytics", requireAdmin()))
	return r
}

// Run serves on the configured port until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := logging.New(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.LogInfof("devserver", "listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.LogInfo("devserver", "stopped")
	return nil
}

// PendingResetToken returns the reset token issued for email, if any. The dev
// server sends no mail; this is how a developer finds the token.
func (s *Server) PendingResetToken(email string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for token, id := range s.resetTokens {
		if u, ok := s.users[id]; ok && u.Email == email {
			return token, true
		}
	}
	return "", false
}

func (s *Server) allowLogin(email string) bool {
	s.limitMu.Lock()
	defer s.limitMu.Unlock()
	l, ok := s.limiters[email]
	if !ok {
		l = rate.NewLimiter(s.opts.LoginRate, s.opts.LoginBurst)
		s.limiters[email] = l
	}
	return l.Allow()
}
