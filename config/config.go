package config

import (
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ProductionBackendURL is used when BACKEND_URL is missing, e.g. an old build or a
// misconfigured deploy.
const ProductionBackendURL = "https://api.kanellos.me"

type Config struct {
	API       APIConfig
	Cache     CacheConfig
	App       AppConfig
	Tracing   TracingConfig
	DevServer DevServerConfig
}

type APIConfig struct {
	BackendURL      string        `env:"BACKEND_URL"`
	ShowcaseURL     string        `env:"SHOWCASE_API_URL"`
	UsersURL        string        `env:"AUTH_USERS_URL"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MutationTimeout time.Duration `env:"MUTATION_TIMEOUT" envDefault:"15s"`
}

// CacheConfig controls where the session cookie survives between runs.
// An empty RedisAddr keeps cookies in memory only.
type CacheConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	Profile       string        `env:"SESSION_PROFILE" envDefault:"default"`
	CookieTTL     time.Duration `env:"COOKIE_TTL" envDefault:"168h"`
}

type AppConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	Version     string `env:"APP_VERSION" envDefault:"1.0.0"`
}

// TracingConfig turns on span export. Tracing stays off while Endpoint is
// empty.
type TracingConfig struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"console"`
}

// Active reports whether spans should be exported.
func (t TracingConfig) Active() bool {
	return t.Enabled && strings.TrimSpace(t.Endpoint) != ""
}

type DevServerConfig struct {
	Port          string `env:"DEV_PORT" envDefault:"5001"`
	AllowedOrigin string `env:"DEV_ALLOWED_ORIGIN" envDefault:"http://localhost:5173"`
	AdminEmail    string `env:"DEV_ADMIN_EMAIL" envDefault:"admin@example.com"`
	AdminPassword string `env:"DEV_ADMIN_PASSWORD" envDefault:"admin"`
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.API.BackendURL = ResolveBackendURL(cfg.API.BackendURL)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResolveBackendURL applies the production fallback for unset values. Build
// pipelines sometimes inject the literal string "undefined", which counts as unset.
func ResolveBackendURL(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || v == "undefined" {
		v = ProductionBackendURL
	}
	return strings.TrimRight(v, "/")
}

func (c *Config) Validate() error {
	if err := validateHTTPURL("BACKEND_URL", c.API.BackendURL); err != nil {
		return err
	}
	if c.API.ShowcaseURL != "" {
		if err := validateHTTPURL("SHOWCASE_API_URL", c.API.ShowcaseURL); err != nil {
			return err
		}
	}
	if c.API.UsersURL != "" {
		if err := validateHTTPURL("AUTH_USERS_URL", c.API.UsersURL); err != nil {
			return err
		}
	}
	if c.API.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}
	if c.API.MutationTimeout <= 0 {
		return fmt.Errorf("MUTATION_TIMEOUT must be positive")
	}
	if c.Cache.Profile == "" {
		return fmt.Errorf("SESSION_PROFILE is required")
	}
	if c.Tracing.Active() {
		if err := validateHTTPURL("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint); err != nil {
			return err
		}
	}
	return nil
}

// ShowcaseBase returns the showcase collection URL, honoring the override.
func (c *Config) ShowcaseBase() string {
	if c.API.ShowcaseURL != "" {
		return strings.TrimRight(c.API.ShowcaseURL, "/")
	}
	return c.API.BackendURL + "/api/showcase"
}

// UsersBase returns the user administration URL, honoring the override.
func (c *Config) UsersBase() string {
	if c.API.UsersURL != "" {
		return strings.TrimRight(c.API.UsersURL, "/")
	}
	return c.API.BackendURL + "/api/auth/users"
}

func validateHTTPURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is invalid: %w", name, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}
