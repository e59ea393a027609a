package token

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// ExpiringLister lists tokens that expire within a window and still carry a
// refresh token.
type ExpiringLister interface {
	ListExpiringTokens(ctx context.Context, within time.Duration) ([]domain.OAuthToken, error)
}

// Refresher proactively renews tokens before they expire so interactive
// requests rarely pay the refresh round trip.
type Refresher struct {
	cron    *cron.Cron
	manager *Manager
	lister  ExpiringLister
	window  time.Duration
	log     *slog.Logger
}

// NewRefresher creates a Refresher that sweeps every interval and renews
// tokens expiring within window.
func NewRefresher(
	m *Manager,
	lister ExpiringLister,
	interval time.Duration,
	window time.Duration,
	log *slog.Logger,
) (*Refresher, error) {
	c := cron.New()

	r := &Refresher{
		cron:    c,
		manager: m,
		lister:  lister,
		window:  window,
		log:     log,
	}

	if _, err := c.AddFunc("@every "+interval.String(), r.runSweep); err != nil {
		return nil, err
	}

	return r, nil
}

// Start begins the sweep schedule.
func (r *Refresher) Start() {
	r.log.Info("token refresher started", "window", r.window)
	r.cron.Start()
}

// Stop gracefully stops the refresher, waiting for a running sweep to finish.
func (r *Refresher) Stop() context.Context {
	r.log.Info("token refresher stopping")
	return r.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (r *Refresher) Entries() []cron.Entry {
	return r.cron.Entries()
}

func (r *Refresher) runSweep() {
	ctx := context.Background()
	if err := r.Sweep(ctx); err != nil {
		r.log.Error("token sweep failed", "error", err)
	}
}

// Sweep renews every token expiring within the window. A failed refresh is
// logged and skipped; the user's next request surfaces the error.
func (r *Refresher) Sweep(ctx context.Context) error {
	tokens, err := r.lister.ListExpiringTokens(ctx, r.window)
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return nil
	}

	r.log.Info("token sweep starting", "expiring", len(tokens))
	for _, tok := range tokens {
		if err := r.manager.Refresh(ctx, tok.UserID); err != nil {
			r.log.Warn("proactive refresh failed",
				"user_id", tok.UserID,
				"error", err,
			)
		}
	}
	return nil
}
