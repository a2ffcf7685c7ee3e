// Package tickets is the support ticket store.
package tickets

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/kanellos-me/console/internal/logging"
	"github.com/kanellos-me/console/internal/normalize"
	"github.com/kanellos-me/console/internal/resource"
)

var lookupTexts = apiclient.LookupTexts{
	Resource:  "ticket",
	Forbidden: "You do not have access to this ticket.",
	NotFound:  "Ticket not found.",
}

// BasePath is the ticket resource root.
const BasePath = "/ticket/TicketSubmit"

// Options tunes a Store.
type Options struct {
	// SubmitTimeout aborts Submit; zero means apiclient.MutationTimeout.
	SubmitTimeout time.Duration
}

// Store caches the ticket list, the open ticket and its replies.
type Store struct {
	client        *apiclient.Client
	submitTimeout time.Duration

	list    resource.Collection[Ticket]
	current resource.Current[Ticket]
	replies resource.Collection[Reply]

	mu   sync.Mutex
	mine bool
}

func NewStore(client *apiclient.Client, opts Options) *Store {
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = apiclient.MutationTimeout
	}
	return &Store{client: client, submitTimeout: opts.SubmitTimeout}
}

func (s *Store) State() resource.State[Ticket] { return s.list.Snapshot() }
func (s *Store) Current() resource.Item[Ticket] { return s.current.Snapshot() }
func (s *Store) Replies() resource.State[Reply] { return s.replies.Snapshot() }

// LoadTickets replaces the cache with every ticket visible to the caller.
func (s *Store) LoadTickets(ctx context.Context) error {
	s.setScope(false)
	gen := s.list.Begin()
	items, err := s.fetchList(ctx, "get", "load_tickets")
	s.list.Finish(gen, items, apiclient.UserMessage(err))
	return err
}

// LoadMyTickets loads the caller's own tickets. Backends without the personal
// endpoint answer 404, in which case the general listing is used instead; any
// other failure is reported as is.
func (s *Store) LoadMyTickets(ctx context.Context) error {
	s.setScope(true)
	gen := s.list.Begin()
	items, err := s.fetchList(ctx, "my", "load_my_tickets")
	if apiclient.IsStatus(err, http.StatusNotFound) {
		logging.New(ctx).LogInfo("load_my_tickets", "personal listing unavailable, using general listing")
		items, err = s.fetchList(ctx, "get", "load_my_tickets")
	}
	s.list.Finish(gen, items, apiclient.UserMessage(err))
	return err
}

// Reload repeats the most recent listing, all or mine.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	mine := s.mine
	s.mu.Unlock()
	if mine {
		return s.LoadMyTickets(ctx)
	}
	return s.LoadTickets(ctx)
}

// GetTicket fetches one ticket into Current.
func (s *Store) GetTicket(ctx context.Context, id string) (*Ticket, error) {
	gen := s.current.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{Path: s.path("get", id), Op: "get_ticket"})
	var t *Ticket
	if err == nil {
		var rec normalize.Record
		if rec, err = normalize.Single(raw, "ticket", "data"); err == nil {
			v := normalizeTicket(rec)
			t = &v
		}
	}
	s.current.Finish(gen, t, apiclient.LookupMessage(err, lookupTexts))
	return t, err
}

// Submit opens a ticket and reloads. The call is abandoned after the submit
// timeout.
func (s *Store) Submit(ctx context.Context, t NewTicket) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method:  http.MethodPost,
		Path:    s.path("submit"),
		JSON:    t,
		Timeout: s.submitTimeout,
		Op:      "submit_ticket",
	})
	if err != nil {
		return err
	}
	return s.Reload(ctx)
}

func (s *Store) Update(ctx context.Context, id string, upd Update) error {
	return s.mutate(ctx, http.MethodPut, s.path("update", id), upd, "update_ticket")
}

func (s *Store) Resolve(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodPut, s.path("resolve", id), struct{}{}, "resolve_ticket")
}

func (s *Store) Reopen(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodPut, s.path("reopen", id), struct{}{}, "reopen_ticket")
}

func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, http.MethodDelete, s.path("delete", id), nil, "delete_ticket")
}

// LoadReplies replaces the cached thread with the replies of ticket id.
func (s *Store) LoadReplies(ctx context.Context, id string) error {
	gen := s.replies.Begin()
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{Path: s.path(id, "replies"), Op: "load_replies"})
	var items []Reply
	if err == nil {
		items, err = normalize.Collection(raw, normalizeReply, replyKeys...)
	}
	s.replies.Finish(gen, items, apiclient.UserMessage(err))
	return err
}

// Reply posts to the thread, then reloads it and the listing.
func (s *Store) Reply(ctx context.Context, id, message string) error {
	err := s.client.Send(ctx, apiclient.Request{
		Method: http.MethodPost,
		Path:   s.path(id, "reply"),
		JSON:   map[string]string{"message": message},
		Op:     "reply_ticket",
	})
	if err != nil {
		return err
	}
	if err := s.LoadReplies(ctx, id); err != nil {
		return err
	}
	return s.Reload(ctx)
}

func (s *Store) mutate(ctx context.Context, method, path string, body any, op string) error {
	err := s.client.Send(ctx, apiclient.Request{Method: method, Path: path, JSON: body, Op: op})
	if err != nil {
		return err
	}
	return s.Reload(ctx)
}

func (s *Store) fetchList(ctx context.Context, endpoint, op string) ([]Ticket, error) {
	raw, _, err := s.client.FetchJSON(ctx, apiclient.Request{Path: s.path(endpoint), Op: op})
	if err != nil {
		return nil, err
	}
	return normalize.Collection(raw, normalizeTicket, listKeys...)
}

func (s *Store) setScope(mine bool) {
	s.mu.Lock()
	s.mine = mine
	s.mu.Unlock()
}

func (s *Store) path(segments ...string) string {
	p := BasePath
	for _, seg := range segments {
		p += "/" + url.PathEscape(seg)
	}
	return p
}
