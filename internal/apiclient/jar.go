package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"

	"github.com/kanellos-me/console/internal/logging"
	"golang.org/x/net/publicsuffix"
)

// CookieStore persists the backend's session cookies between runs.
type CookieStore interface {
	Load(ctx context.Context) ([]*http.Cookie, error)
	Save(ctx context.Context, cookies []*http.Cookie) error
	Clear(ctx context.Context) error
}

// Jar is an http.CookieJar that mirrors the base URL's cookies into a
// CookieStore. A nil store keeps cookies in memory only.
type Jar struct {
	mu    sync.RWMutex
	inner *cookiejar.Jar
	base  *url.URL
	store CookieStore
}

// NewJar creates a jar for baseURL preloaded from store.
func NewJar(ctx context.Context, baseURL string, store CookieStore) (*Jar, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	inner, err := newInnerJar()
	if err != nil {
		return nil, err
	}
	j := &Jar{inner: inner, base: u, store: store}
	if store != nil {
		cookies, err := store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load cookies: %w", err)
		}
		if len(cookies) > 0 {
			inner.SetCookies(u, cookies)
		}
	}
	return j, nil
}

func newInnerJar() (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.RLock()
	inner := j.inner
	j.mu.RUnlock()
	inner.SetCookies(u, cookies)

	if j.store == nil || u.Host != j.base.Host {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cookieSaveTimeout)
	defer cancel()
	if err := j.store.Save(ctx, inner.Cookies(j.base)); err != nil {
		logging.New(ctx).LogError("save_cookies", err)
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.inner.Cookies(u)
}

// Reset drops every cookie, locally and in the store.
func (j *Jar) Reset(ctx context.Context) error {
	inner, err := newInnerJar()
	if err != nil {
		return err
	}
	j.mu.Lock()
	j.inner = inner
	j.mu.Unlock()
	if j.store != nil {
		if err := j.store.Clear(ctx); err != nil {
			return fmt.Errorf("clear cookies: %w", err)
		}
	}
	return nil
}
