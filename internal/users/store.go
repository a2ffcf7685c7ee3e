// Package users is the admin store for accounts.
package users

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/normalize"
	"github.com/kanellos-me/console/internal/resource"
)

var lookupTexts = apiclient.LookupTexts{
	Resource:  "user",
	Forbidden: "You do not have access to this user.",
	NotFound:  "User not found.",
}

const DefaultBasePath = "/api/auth/users"

var listKeys = []string{"users", "data", "items", "result", "results"}

// AppUser is an account as the admin listing reports it.
type AppUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Update changes an account; nil fields are left alone.
type Update struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsAdmin  *bool   `json:"isAdmin,omitempty"`
}

func normalizeUser(r normalize.Record) AppUser {
	return AppUser{
		ID:        r.String("id", "userId"),
		Email:     r.String("email"),
		Username:  r.String("username"),
		IsAdmin:   r.Bool("isAdmin"),
		CreatedAt: r.Time("createdAt"),
		UpdatedAt: r.Time("updatedAt"),
	}
}

// Options tunes a Store.
type Options struct {
	// BasePath is the collection URL, relative to the client or absolute.
	BasePath string
	// LoadTimeout aborts LoadAllUsers; zero means apiclient.MutationTimeout.
	LoadTimeout time.Duration
}

type Store struct {
	client      *apiclient.Client
	base        string
	loadTimeout time.Duration

	list    resource.Collection[AppUser]
	current resource.Current[AppUser]
}

func NewStore(client *apiclient.Client, opts Options) *Store {
	if opts.BasePath == "" {
		opts.BasePath = DefaultBasePath
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = apiclient.MutationTimeout
	}
	return &Store{
		client:      client,
		base:        strings.TrimRight(opts.BasePath, "/"),
		loadTimeout: opts.LoadTimeout,
	}
}

func (s *Store) State() resource.State[AppUser] { return s.list.Snapshot() }

func (s *Store) Current() resource.Item[AppUser] { return s.current.Snapshot() }

// LoadAllUsers replaces the cache with every account. The call is abandoned
// after the load timeout.
func (s *Store) LoadAllUsers(ctx context.Context) error {
	gen := s.list.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{
		Path:    s.base,
		Timeout: s.loadTimeout,
		Op:      "load_users",
	})
	var items []AppUser
	if err == nil {
		items, err = normalize.Collection(raw, normalizeUser, listKeys...)
	}
	s.list.Finish(gen, items, apiclient.UserMessage(err))
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (*AppUser, error) {
	gen := s.current.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{Path: s.base + "/" + url.PathEscape(id), Op: "get_user"})
	var u *AppUser
	if err == nil {
		var rec normalize.Record
		if rec, err = normalize.Single(raw, "user", "data"); err == nil {
			v := normalizeUser(rec)
			u = &v
		}
	}
	s.current.Finish(gen, u, apiclient.LookupMessage(err, lookupTexts))
	return u, err
}

// UpdateUser edits an account and reloads the listing.
func (s *Store) UpdateUser(ctx context.Context, id string, upd Update) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPut,
		Path:   s.base + "/" + url.PathEscape(id),
		JSON:   upd,
		Op:     "update_user",
	})
	if err != nil {
		return err
	}
	return s.LoadAllUsers(ctx)
}
