package analytics

import (
	"context"
	"fmt"

	"github.com/kanellos-me/console/internal/logging"
	"github.com/robfig/cron/v3"
)

// DefaultRefreshSpec refreshes every five minutes.
const DefaultRefreshSpec = "0 */5 * * * *"

// Refresher re-fetches the dashboard on a cron schedule. A run that is still
// in flight when the next one is due causes that one to be skipped.
type Refresher struct {
	store *Store
	query func() Query
	cron  *cron.Cron
}

// NewRefresher schedules store refreshes. query is evaluated on every run so
// rolling windows move forward.
func NewRefresher(store *Store, query func() Query) *Refresher {
	return &Refresher{
		store: store,
		query: query,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Start runs the schedule until ctx is done or Stop is called. spec uses the
// six-field form with seconds; empty means DefaultRefreshSpec.
func (r *Refresher) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	logger := logging.New(ctx)
	_, err := r.cron.AddFunc(spec, func() {
		if err := r.store.FetchDashboard(ctx, r.query()); err != nil {
			logger.LogWarnf("refresh_dashboard", "refresh failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule dashboard refresh: %w", err)
	}

	logger.LogInfof("refresh_dashboard", "dashboard refresh scheduled (%s)", spec)
	r.cron.Start()
	go func() {
		<-ctx.Done()
		r.cron.Stop()
	}()
	return nil
}

// Stop halts the schedule; the returned context is done once a running
// refresh has finished.
func (r *Refresher) Stop() context.Context {
	return r.cron.Stop()
}
