// Package apiclient is the single configured HTTP client every store talks
// through. Requests carry the session cookie jar and JSON headers; every
// completed response is classified and handed to the installed OutcomeHandler.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kanellos-me/console/internal/logging"
	"github.com/kanellos-me/console/internal/normalize"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Jar       http.CookieJar
	Transport http.RoundTripper
	OnOutcome OutcomeHandler
	// TracerProvider receives one client span per call; nil means the
	// global provider.
	TracerProvider trace.TracerProvider
}

// Client handles communication with the backend API
type Client struct {
	baseURL    string
	httpClient *http.Client
	onOutcome  OutcomeHandler
	metrics    *Metrics
}

// New creates a client for the backend at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute, got %q", opts.BaseURL)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	traceOpts := []otelhttp.Option{
		otelhttp.WithPropagators(propagation.TraceContext{}),
		otelhttp.WithSpanNameFormatter(spanName),
	}
	if opts.TracerProvider != nil {
		traceOpts = append(traceOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       opts.Jar,
			Transport: otelhttp.NewTransport(transport, traceOpts...),
		},
		onOutcome: opts.OnOutcome,
		metrics:   &Metrics{},
	}, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Metrics returns the counters for this client.
func (c *Client) Metrics() *Metrics { return c.metrics }

// Request describes one call.
type Request struct {
	Method string
	// Path is appended to the base URL unless it is already absolute.
	Path  string
	Query url.Values
	// JSON, when non-nil, is marshalled as the body.
	JSON        any
	Body        io.Reader
	ContentType string
	// Timeout aborts the call after the given duration; zero means the
	// client-wide default.
	Timeout time.Duration
	// Op names the operation in logs.
	Op string
	// SkipOutcome keeps the response away from the OutcomeHandler. Identity
	// checks use it: a 401 there means anonymous, not a lost session.
	SkipOutcome bool
}

// Response is a completed call with its body read and cleaned.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Err returns nil for 2xx and a StatusError otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	se := &StatusError{Status: r.Status, StatusText: r.StatusText}
	if raw, err := normalize.Decode(r.Body); err == nil {
		se.Message = EnvelopeMessage(raw)
	}
	return se
}

// Do performs r. Transport failures and timeouts are errors; any HTTP status,
// including 4xx and 5xx, is a Response.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	rid := logging.RequestID(ctx)
	if rid == "" {
		rid = uuid.NewString()
		ctx = logging.WithRequestID(ctx, rid)
	}
	logger := logging.New(ctx)
	op := r.Op
	if op == "" {
		op = "api_call"
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.resolve(r.Path, r.Query)
	body, contentType, err := r.encode()
	if err != nil {
		logger.LogError(op, err)
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		logger.LogError(op, err)
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", rid)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = c.transportError(ctx, method, target, err)
		c.metrics.record(time.Since(start), true, errors.Is(err, ErrTimedOut))
		logger.LogError(op, err)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	duration := time.Since(start)
	if err != nil {
		err = c.transportError(ctx, method, target, err)
		c.metrics.record(duration, true, errors.Is(err, ErrTimedOut))
		logger.LogError(op, err)
		return nil, err
	}

	out := &Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Body:       normalize.Clean(raw),
	}
	outcome := Classify(resp.StatusCode)
	c.metrics.record(duration, outcome != OutcomeSuccess, false)
	if outcome != OutcomeSuccess {
		logger.LogWarnf(op, "%s %s returned status %d", method, r.Path, resp.StatusCode)
	} else {
		logger.LogDebugf(op, "%s %s returned status %d in %s", method, r.Path, resp.StatusCode, duration)
	}
	if c.onOutcome != nil && !r.SkipOutcome {
		c.onOutcome.HandleOutcome(ctx, outcome)
	}
	return out, nil
}

// FetchJSON performs r and decodes the body. A non-2xx status is returned as a
// StatusError, a 2xx body that is not JSON as normalize.ErrInvalidJSON. The
// Response is returned whenever one was received.
func (c *Client) FetchJSON(ctx context.Context, r Request) (gjson.Result, *Response, error) {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return gjson.Result{}, nil, err
	}
	if err := resp.Err(); err != nil {
		return gjson.Result{}, resp, err
	}
	raw, err := normalize.Decode(resp.Body)
	if err != nil {
		return gjson.Result{}, resp, err
	}
	return raw, resp, nil
}

// Send performs r and only cares whether it succeeded.
func (c *Client) Send(ctx context.Context, r Request) error {
	resp, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	return resp.Err()
}

func (c *Client) resolve(path string, query url.Values) string {
	target := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		target = c.baseURL + path
	}
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + query.Encode()
	}
	return target
}

func (c *Client) transportError(ctx context.Context, method, target string, err error) error {
	var ne net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%s %s: %w", method, target, ErrTimedOut)
	}
	return &TransportError{Method: method, URL: target, Err: err}
}

func (r Request) encode() (io.Reader, string, error) {
	if r.JSON != nil {
		b, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("marshal request: %w", err)
		}
		return bytes.NewReader(b), "application/json", nil
	}
	if r.Body != nil {
		ct := r.ContentType
		if ct == "" {
			ct = "application/json"
		}
		return r.Body, ct, nil
	}
	return nil, r.ContentType, nil
}

func spanName(_ string, r *http.Request) string {
	return r.Method + " " + r.URL.Path
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
