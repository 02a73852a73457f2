package confirm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/metrics"
	"github.com/okunev/appwatch/internal/probe"
)

// Confirmer re-samples a flipped (app, region) pair and applies a
// majority-vote rule before a raw flip is trusted. One Confirm call is a
// blocking sequence of Samples probes, one every Interval.
type Confirmer struct {
	Logger    *zap.Logger
	Prober    probe.Prober
	Samples   int
	Interval  time.Duration
	Threshold int
}

func New(logger *zap.Logger, p probe.Prober, samples int, interval time.Duration, threshold int) *Confirmer {
	if samples < 1 {
		samples = 5
	}
	if threshold < 1 {
		threshold = samples/2 + 1 // majority
	}
	return &Confirmer{
		Logger:    logger,
		Prober:    p,
		Samples:   samples,
		Interval:  interval,
		Threshold: threshold,
	}
}

// Confirm reports whether the flip to expectAvailable is real. It always
// takes exactly Samples probes; there is no early exit, so sample counts in
// logs stay comparable across candidates. A cancelled context rejects the
// candidate; the next sweep will raise a fresh one if the flip persists.
func (c *Confirmer) Confirm(ctx context.Context, appID, region string, expectAvailable bool) bool {
	matches := 0
	for i := 0; i < c.Samples; i++ {
		if !c.pause(ctx) {
			c.Logger.Warn("confirm_interrupted",
				zap.String("app_id", appID),
				zap.String("region", region),
				zap.Int("samples_done", i),
			)
			metrics.ConfirmationsTotal.WithLabelValues("rejected").Inc()
			return false
		}

		out := c.Prober.Probe(ctx, appID, region)
		if out.Status.Available() == expectAvailable {
			matches++
		}
		c.Logger.Debug("confirm_sample",
			zap.String("app_id", appID),
			zap.String("region", region),
			zap.Int("sample", i+1),
			zap.String("status", out.Status.String()),
			zap.Bool("expect_available", expectAvailable),
		)
	}

	confirmed := matches >= c.Threshold
	result := "rejected"
	if confirmed {
		result = "confirmed"
	}
	metrics.ConfirmationsTotal.WithLabelValues(result).Inc()
	c.Logger.Info("confirm_done",
		zap.String("app_id", appID),
		zap.String("region", region),
		zap.Int("matches", matches),
		zap.Int("threshold", c.Threshold),
		zap.Bool("confirmed", confirmed),
	)
	return confirmed
}

// pause waits one inter-sample interval; false means the context ended.
func (c *Confirmer) pause(ctx context.Context) bool {
	if ctx.Err() != nil {
		return false
	}
	if c.Interval <= 0 {
		return true
	}
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.Interval):
		return true
	}
}
