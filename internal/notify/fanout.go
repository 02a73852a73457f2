package notify

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/metrics"
	"github.com/okunev/appwatch/internal/registry"
)

// Fanout delivers one message to every registered destination across all
// configured channels. Destinations are independent: one failure never
// blocks the rest, and one slow endpoint never serializes the others.
type Fanout struct {
	Logger   *zap.Logger
	Registry *registry.Registry
	Channels []Channel
}

func NewFanout(log *zap.Logger, reg *registry.Registry, channels ...Channel) *Fanout {
	active := make([]Channel, 0, len(channels))
	for _, c := range channels {
		if c != nil {
			active = append(active, c)
		}
	}
	return &Fanout{Logger: log, Registry: reg, Channels: active}
}

// Notify sends msg to all destinations and reports per-destination outcomes.
// Destinations that respond with a gone signal are deregistered; every other
// failure is logged and the destination retained.
func (f *Fanout) Notify(ctx context.Context, msg Message) []Outcome {
	byChannel := make(map[string]Channel, len(f.Channels))
	for _, c := range f.Channels {
		byChannel[c.Name()] = c
	}

	dests := f.Registry.List()
	outcomes := make([]Outcome, 0, len(dests))

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, d := range dests {
		ch, ok := byChannel[d.Channel]
		if !ok {
			continue // channel not configured for this run
		}
		d := d
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ch.Send(ctx, d, msg)

			outcome := "ok"
			switch {
			case err == nil:
				f.Logger.Debug("notify_sent", zap.String("destination", d.Key()))
			case errors.Is(err, ErrDestinationGone):
				outcome = "gone"
				f.Registry.Deregister(d)
				f.Logger.Warn("notify_destination_gone",
					zap.String("destination", d.Key()), zap.Error(err))
			default:
				outcome = "error"
				f.Logger.Error("notify_failed",
					zap.String("destination", d.Key()), zap.Error(err))
			}
			metrics.NotificationsTotal.WithLabelValues(d.Channel, outcome).Inc()

			mu.Lock()
			outcomes = append(outcomes, Outcome{Destination: d, Err: err})
			mu.Unlock()
		}()
	}
	wg.Wait()
	return outcomes
}
