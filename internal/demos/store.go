// Package demos is the store for hosted HTML demos.
package demos

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/normalize"
	"github.com/kanellos-me/console/internal/resource"
	"github.com/kanellos-me/console/internal/slug"
)

var lookupTexts = apiclient.LookupTexts{
	Resource:  "demo",
	Forbidden: "You do not have access to this demo.",
	NotFound:  "Demo not found.",
}

const (
	BasePath     = "/api/demos"
	slugFallback = "demo"
)

var listKeys = []string{"demos", "data", "items", "results"}

// Demo is one hosted page, visible to the listed users.
type Demo struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	HTMLContent string    `json:"htmlContent"`
	UserIDs     []string  `json:"userIds"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewDemo is the create payload; a blank Slug is derived from Title.
type NewDemo struct {
	Title       string   `json:"title"`
	Slug        string   `json:"slug,omitempty"`
	HTMLContent string   `json:"htmlContent"`
	UserIDs     []string `json:"userIds"`
}

func normalizeDemo(r normalize.Record) Demo {
	ids := r.Strings("userIds")
	if ids == nil {
		ids = []string{}
	}
	return Demo{
		ID:          r.String("id"),
		Title:       r.String("title"),
		Slug:        r.String("slug"),
		HTMLContent: r.String("htmlContent", "HtmlContent"),
		UserIDs:     ids,
		CreatedAt:   r.Time("createdAt"),
	}
}

// Options tunes a Store.
type Options struct {
	CreateTimeout time.Duration
}

type Store struct {
	client        *apiclient.Client
	createTimeout time.Duration

	list    resource.Collection[Demo]
	current resource.Current[Demo]
}

func NewStore(client *apiclient.Client, opts Options) *Store {
	if opts.CreateTimeout <= 0 {
		opts.CreateTimeout = apiclient.MutationTimeout
	}
	return &Store{client: client, createTimeout: opts.CreateTimeout}
}

func (s *Store) State() resource.State[Demo] { return s.list.Snapshot() }

func (s *Store) Current() resource.Item[Demo] { return s.current.Snapshot() }

func (s *Store) LoadDemos(ctx context.Context) error {
	gen := s.list.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{Path: BasePath, Op: "load_demos"})
	var items []Demo
	if err == nil {
		items, err = normalize.Collection(raw, normalizeDemo, listKeys...)
	}
	s.list.Finish(gen, items, apiclient.UserMessage(err))
	return err
}

func (s *Store) GetDemoBySlug(ctx context.Context, demoSlug string) (*Demo, error) {
	gen := s.current.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{
		Path: BasePath + "/slug/" + url.PathEscape(demoSlug),
		Op:   "get_demo",
	})
	var d *Demo
	if err == nil {
		var rec normalize.Record
		if rec, err = normalize.Single(raw, "demo", "data"); err == nil {
			v := normalizeDemo(rec)
			d = &v
		}
	}
	s.current.Finish(gen, d, apiclient.LookupMessage(err, lookupTexts))
	return d, err
}

// CreateDemo publishes a demo and reloads. The call is abandoned after the
// create timeout.
func (s *Store) CreateDemo(ctx context.Context, in NewDemo) error {
	in.Slug = slug.Resolve(in.Slug, in.Title, slugFallback)
	in.Title = strings.TrimSpace(in.Title)
	if in.UserIDs == nil {
		in.UserIDs = []string{}
	}
	err := s.client.Send(ctx, apiclient.Request{
		Method:  http.MethodPost,
		Path:    BasePath,
		JSON:    in,
		Timeout: s.createTimeout,
		Op:      "create_demo",
	})
	if err != nil {
		return err
	}
	return s.LoadDemos(ctx)
}

func (s *Store) DeleteDemo(ctx context.Context, id string) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   BasePath + "/" + url.PathEscape(id),
		Op:     "delete_demo",
	})
	if err != nil {
		return err
	}
	return s.LoadDemos(ctx)
}
