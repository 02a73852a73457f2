package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/metrics"
	"github.com/okunev/appwatch/internal/notify"
	"github.com/okunev/appwatch/internal/repo"
)

// Reconciler is the per-app engine invoked by each sweep.
type Reconciler interface {
	Reconcile(ctx context.Context, app *domain.App) (*domain.ChangeEvent, error)
}

// Notifier fans a message out to all registered destinations.
type Notifier interface {
	Notify(ctx context.Context, msg notify.Message) []notify.Outcome
}

// Sweeper drives the fixed-interval sweep over all tracked apps. Sweeps are
// strictly sequential; a new one starts only after the previous has fully
// completed or failed. A failed sweep trips a cool-down before cadence
// resumes.
type Sweeper struct {
	Logger     *zap.Logger
	Apps       repo.AppStore
	Reconciler Reconciler
	Notifier   Notifier
	Ledger     repo.LedgerStore
	Interval   time.Duration
	Cooldown   time.Duration
}

func New(
	logger *zap.Logger,
	apps repo.AppStore,
	rec Reconciler,
	notifier Notifier,
	ledger repo.LedgerStore,
	interval, cooldown time.Duration,
) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	return &Sweeper{
		Logger:     logger,
		Apps:       apps,
		Reconciler: rec,
		Notifier:   notifier,
		Ledger:     ledger,
		Interval:   interval,
		Cooldown:   cooldown,
	}
}

// Run loops until ctx ends: sweep, then idle for Interval. The interval is
// measured from the end of one sweep to the start of the next, so a slow
// sweep never overlaps the following one.
func (s *Sweeper) Run(ctx context.Context) {
	for {
		if err := s.SweepOnce(ctx); err != nil {
			s.Logger.Error("sweep_failed", zap.Error(err))
			metrics.SweepsTotal.WithLabelValues("failed").Inc()
			// cool-down replaces the regular interval: a failed sweep is
			// retried sooner than the normal cadence, not later
			if !s.sleep(ctx, s.Cooldown) {
				s.Logger.Info("sweeper_stopped")
				return
			}
			continue
		}
		metrics.SweepsTotal.WithLabelValues("ok").Inc()

		if !s.sleep(ctx, s.Interval) {
			s.Logger.Info("sweeper_stopped")
			return
		}
	}
}

// SweepOnce runs one full pass. Failures are caught at the sweep boundary:
// a panic anywhere in the pass is converted to an error here, which means a
// single bad app can skip the remainder of this sweep but never the next.
func (s *Sweeper) SweepOnce(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sweep panic: %v", r)
		}
	}()

	start := time.Now()
	s.Logger.Info("sweep_started")

	apps, err := s.Apps.List(ctx)
	if err != nil {
		return fmt.Errorf("list apps: %w", err)
	}

	for _, app := range apps {
		ev, rerr := s.Reconciler.Reconcile(ctx, app)
		if rerr != nil {
			// row-level failure; the rest of the fleet still gets checked
			s.Logger.Warn("app_reconcile_failed",
				zap.String("app_id", app.AppID), zap.Error(rerr))
			continue
		}
		if ev == nil {
			continue
		}
		s.dispatch(ctx, ev)
	}

	s.Logger.Info("sweep_done",
		zap.Int("apps", len(apps)),
		zap.Duration("took", time.Since(start)),
	)
	metrics.SweepDuration.Observe(time.Since(start).Seconds())
	return nil
}

// dispatch sends the event unless the ledger shows the same change set was
// already announced (a lost row write after a successful send would
// otherwise re-announce on every sweep). Matching is by fingerprint, not
// verdict, so a fresh regional change that leaves the app-level verdict
// unchanged still goes out.
func (s *Sweeper) dispatch(ctx context.Context, ev *domain.ChangeEvent) {
	if s.Ledger != nil {
		entry, lerr := s.Ledger.Get(ctx, ev.AppID)
		if lerr != nil {
			s.Logger.Warn("ledger_read_failed", zap.String("app_id", ev.AppID), zap.Error(lerr))
		} else if entry != nil && entry.Fingerprint == ev.Fingerprint() {
			s.Logger.Info("notification_deduped",
				zap.String("app_id", ev.AppID),
				zap.String("prior_event_id", entry.EventID),
			)
			return
		}
	}

	outcomes := s.Notifier.Notify(ctx, notify.FromEvent(ev))
	delivered := 0
	for _, o := range outcomes {
		if o.Err == nil {
			delivered++
		}
	}
	s.Logger.Info("notification_sent",
		zap.String("app_id", ev.AppID),
		zap.String("event_id", ev.ID),
		zap.Int("delivered", delivered),
		zap.Int("destinations", len(outcomes)),
	)

	if s.Ledger != nil {
		err := s.Ledger.Set(ctx, repo.LedgerEntry{
			AppID:       ev.AppID,
			Available:   ev.Available,
			Fingerprint: ev.Fingerprint(),
			EventID:     ev.ID,
			SentAt:      time.Now().UTC(),
		})
		if err != nil {
			s.Logger.Warn("ledger_write_failed", zap.String("app_id", ev.AppID), zap.Error(err))
		}
	}
}

func (s *Sweeper) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
