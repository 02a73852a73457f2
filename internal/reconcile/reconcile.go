package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/metrics"
	"github.com/okunev/appwatch/internal/probe"
	"github.com/okunev/appwatch/internal/repo"
)

// Confirmer decides whether a raw flip for one (app, region) is real.
type Confirmer interface {
	Confirm(ctx context.Context, appID, region string, expectAvailable bool) bool
}

// Reconciler turns per-region probes into one app-level verdict. It is the
// only writer of persisted availability.
type Reconciler struct {
	Logger      *zap.Logger
	Apps        repo.AppStore
	Prober      probe.Prober
	Confirmer   Confirmer
	LinkFor     func(appID, region string) string
	Concurrency int // parallel confirmations per app
}

func New(
	logger *zap.Logger,
	apps repo.AppStore,
	prober probe.Prober,
	confirmer Confirmer,
	linkFor func(appID, region string) string,
	concurrency int,
) *Reconciler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Reconciler{
		Logger:      logger,
		Apps:        apps,
		Prober:      prober,
		Confirmer:   confirmer,
		LinkFor:     linkFor,
		Concurrency: concurrency,
	}
}

// Reconcile probes every region of the app, confirms raw flips, and resolves
// the app verdict as the OR of per-region resolved statuses. Regions without
// a confirmed flip keep the previously persisted status; a raw read alone
// never moves the verdict.
//
// A nil event with nil error means the sweep was a no-op for this app
// (no confirmed changes, or no regions to check).
func (r *Reconciler) Reconcile(ctx context.Context, app *domain.App) (*domain.ChangeEvent, error) {
	if len(app.Regions) == 0 {
		r.Logger.Debug("app_skipped_no_regions", zap.String("app_id", app.AppID))
		return nil, nil
	}

	raw := r.probeRegions(ctx, app)

	var candidates []domain.ChangeCandidate
	for _, region := range app.Regions {
		res := raw[region]
		if res.Status.Available() != app.Available {
			candidates = append(candidates, domain.ChangeCandidate{
				Region:    region,
				OldStatus: app.Available,
				NewStatus: res.Status.Available(),
			})
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	r.Logger.Info("flips_detected",
		zap.String("app_id", app.AppID),
		zap.Int("candidates", len(candidates)),
	)

	confirmed := r.confirmCandidates(ctx, app.AppID, candidates)

	// Resolved status per region: confirmed flips take the new status,
	// everything else keeps the persisted one.
	resolved := make(map[string]bool, len(app.Regions))
	for _, region := range app.Regions {
		resolved[region] = app.Available
	}
	var changes []domain.ConfirmedChange
	for _, cand := range candidates {
		if confirmed[cand.Region] {
			resolved[cand.Region] = cand.NewStatus
			changes = append(changes, domain.ConfirmedChange(cand))
		}
	}
	if len(changes) == 0 {
		r.Logger.Info("all_candidates_rejected", zap.String("app_id", app.AppID))
		return nil, nil
	}

	verdict := false
	var links []domain.RegionLink
	for _, region := range app.Regions {
		if resolved[region] {
			verdict = true
			links = append(links, domain.RegionLink{
				Region: region,
				URL:    r.LinkFor(app.AppID, region),
			})
		}
	}

	now := time.Now().UTC()
	if err := r.Apps.UpdateAvailability(ctx, app, verdict, now); err != nil {
		r.Logger.Error("verdict_persist_failed",
			zap.String("app_id", app.AppID), zap.Error(err))
		return nil, err
	}

	ev := &domain.ChangeEvent{
		ID:               uuid.NewString(),
		AppID:            app.AppID,
		Name:             app.Name,
		Available:        verdict,
		Changes:          changes,
		AvailableRegions: links,
		Fields:           app.Fields,
		At:               now,
	}
	r.Logger.Info("verdict_changed",
		zap.String("app_id", app.AppID),
		zap.Bool("was_available", app.Available),
		zap.Bool("available", verdict),
		zap.Int("confirmed_changes", len(changes)),
		zap.String("event_id", ev.ID),
	)
	app.Available = verdict
	app.UpdatedAt = now
	return ev, nil
}

// probeRegions takes one fresh probe per region, in parallel up to
// Concurrency. Results carry no shared state beyond the map write.
func (r *Reconciler) probeRegions(ctx context.Context, app *domain.App) map[string]probe.Result {
	out := make(map[string]probe.Result, len(app.Regions))

	sem := make(chan struct{}, r.Concurrency)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, region := range app.Regions {
		region := region
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			res := r.Prober.Probe(ctx, app.AppID, region)
			metrics.ProbesTotal.WithLabelValues(region, res.Status.String()).Inc()
			r.Logger.Debug("probe_result",
				zap.String("app_id", app.AppID),
				zap.String("region", region),
				zap.String("status", res.Status.String()),
				zap.Int("http_status", res.HTTPStatus),
			)

			mu.Lock()
			out[region] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}

// confirmCandidates runs the blocking confirmation procedure for each
// candidate on its own goroutine and joins before returning, so one
// suspended confirmation never delays another region's.
func (r *Reconciler) confirmCandidates(ctx context.Context, appID string, candidates []domain.ChangeCandidate) map[string]bool {
	out := make(map[string]bool, len(candidates))

	sem := make(chan struct{}, r.Concurrency)
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, cand := range candidates {
		cand := cand
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() { <-sem }()
			defer wg.Done()

			ok := r.Confirmer.Confirm(ctx, appID, cand.Region, cand.NewStatus)

			mu.Lock()
			out[cand.Region] = ok
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}
