// Package showcase is the store for published sites and image galleries.
package showcase

import (
	"context"
	"errors"
	"io"
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
	Forbidden: "You do not have access to this item.",
	NotFound:  "Not found.",
}

const (
	// DefaultBasePath is used when no showcase URL is configured.
	DefaultBasePath = "/api/showcase"

	slugFallback      = "item"
	uploadUnavailable = "Upload not available. Add image via URL or implement POST /api/showcase/upload."
)

var (
	ErrNoImages   = errors.New("a gallery needs at least one image")
	ErrNoImageURL = errors.New("server did not return an image URL")
)

// Options tunes a Store.
type Options struct {
	// BasePath is the collection URL, relative to the client or absolute.
	BasePath      string
	CreateTimeout time.Duration
}

// Store caches the showcase list and the item opened by slug.
type Store struct {
	client        *apiclient.Client
	base          string
	createTimeout time.Duration

	list    resource.Collection[Item]
	current resource.Current[Item]
}

func NewStore(client *apiclient.Client, opts Options) *Store {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	if opts.CreateTimeout <= 0 {
		opts.CreateTimeout = apiclient.MutationTimeout
	}
	return &Store{
		client:        client,
		base:          strings.TrimRight(opts.BasePath, "/"),
		createTimeout: opts.CreateTimeout,
	}
}

func (s *Store) State() resource.State[Item] { return s.list.Snapshot() }

func (s *Store) Current() resource.Item[Item] { return s.current.Snapshot() }

// LoadItems replaces the cache with every item visible to the caller.
func (s *Store) LoadItems(ctx context.Context) error {
	gen := s.list.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{Path: s.base, Op: "load_showcase"})
	var items []Item
	if err == nil {
		items, err = normalize.Collection(raw, normalizeItem, listKeys...)
	}
	s.list.Finish(gen, items, apiclient.UserMessage(err))
	return err
}

// GetItemBySlug fetches one item into Current.
func (s *Store) GetItemBySlug(ctx context.Context, itemSlug string) (*Item, error) {
	gen := s.current.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{
		Path: s.base + "/slug/" + url.PathEscape(itemSlug),
		Op:   "get_showcase_item",
	})
	var it *Item
	if err == nil {
		var rec normalize.Record
		if rec, err = normalize.Single(raw, "item", "data"); err == nil {
			v := normalizeItem(rec)
			it = &v
		}
	}
	s.current.Finish(gen, it, apiclient.LookupMessage(err, lookupTexts))
	return it, err
}

// CreateItem publishes an item and reloads. A blank slug is derived from the
// title. The call is abandoned after the create timeout.
func (s *Store) CreateItem(ctx context.Context, in NewItem) error {
	body := createBody{
		Type:    in.Type,
		Title:   strings.TrimSpace(in.Title),
		Slug:    slug.Resolve(in.Slug, in.Title, slugFallback),
		UserIDs: in.UserIDs,
	}
	if body.UserIDs == nil {
		body.UserIDs = []string{}
	}
	switch in.Type {
	case TypeGallery:
		for _, u := range in.ImageURLs {
			if strings.TrimSpace(u) != "" {
				body.ImageURLs = append(body.ImageURLs, strings.TrimSpace(u))
			}
		}
		if len(body.ImageURLs) == 0 {
			return ErrNoImages
		}
	default:
		body.Type = TypeSite
		html := in.HTMLContent
		body.HTMLContent = &html
	}

	err := s.client.Send(ctx, apiclient.Request{
		Method:  http.MethodPost,
		Path:    s.base,
		JSON:    body,
		Timeout: s.createTimeout,
		Op:      "create_showcase_item",
	})
	if err != nil {
		return err
	}
	return s.LoadItems(ctx)
}

func (s *Store) DeleteItem(ctx context.Context, id string) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodDelete,
		Path:   s.base + "/" + url.PathEscape(id),
		Op:     "delete_showcase_item",
	})
	if err != nil {
		return err
	}
	return s.LoadItems(ctx)
}

// UploadImage stores an image and returns the URL the backend assigned.
func (s *Store) UploadImage(ctx context.Context, filename string, content io.Reader) (string, error) {
	resp, err := s.client.Upload(ctx, s.base+"/upload", "file", filename, content, "upload_showcase_image")
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		err := resp.Err()
		var se *apiclient.StatusError
		if errors.As(err, &se) && se.Message == "" && se.Status == http.StatusNotFound {
			se.Message = uploadUnavailable
		}
		return "", err
	}
	raw, err := normalize.Decode(resp.Body)
	if err != nil {
		return "", err
	}
	u := strings.TrimSpace(raw.Get("url").String())
	if u == "" {
		return "", ErrNoImageURL
	}
	return u, nil
}
