// Package analytics is the store for the traffic dashboard.
package analytics

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/kanellos-me/console/internal/apiclient"
	"github.com/tidwall/gjson"
)

const DashboardPath = "/api/cloudflare/analytics/dashboard"

// State is a copy of the dashboard state. A failed fetch keeps the previous
// Data and only sets Err.
type State struct {
	Data    *Dashboard
	Loading bool
	Err     string
}

type Store struct {
	client *apiclient.Client

	mu      sync.RWMutex
	data    *Dashboard
	loading bool
	err     string
	gen     uint64
}

func NewStore(client *apiclient.Client) *Store {
	return &Store{client: client}
}

// FetchDashboard loads the dashboard for q.
func (s *Store) FetchDashboard(ctx context.Context, q Query) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	raw, resp, err := s.client.FetchJSON(ctx, apiclient.Request{
		Path:  DashboardPath,
		Query: q.Values(),
		Op:    "fetch_dashboard",
	})
	var d *Dashboard
	if err == nil {
		d, err = parseDashboard(raw)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return err
	}
	s.loading = false
	if err != nil {
		s.err = errorText(err, resp)
		return err
	}
	s.data = d
	return nil
}

// errorText prefers a plain-text error body, then the envelope message.
func errorText(err error, resp *apiclient.Response) string {
	var se *apiclient.StatusError
	if errors.As(err, &se) && se.Message == "" && resp != nil {
		if text := strings.TrimSpace(string(resp.Body)); text != "" && !gjson.Valid(text) {
			return text
		}
	}
	return apiclient.UserMessage(err)
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{Data: s.data, Loading: s.loading, Err: s.err}
}

// Dashboard returns the last successfully loaded dashboard, or nil.
func (s *Store) Dashboard() *Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

func (s *Store) Timeseries() []Point {
	if d := s.Dashboard(); d != nil {
		return d.Timeseries
	}
	return nil
}

func (s *Store) Totals() *Point {
	if d := s.Dashboard(); d != nil {
		return d.Totals
	}
	return nil
}

func (s *Store) TotalRequests() int64 { return s.Dashboard().TotalRequests() }
func (s *Store) TotalBandwidth() int64 { return s.Dashboard().TotalBandwidth() }
func (s *Store) TotalThreats() int64 { return s.Dashboard().TotalThreats() }
func (s *Store) TotalPageviews() int64 { return s.Dashboard().TotalPageviews() }
func (s *Store) TotalUniques() int64 { return s.Dashboard().TotalUniques() }
func (s *Store) ChartData() []ChartPoint {
	return s.Dashboard().ChartData()
}
