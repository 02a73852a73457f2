package registry

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/repo"
)

// Registry is the one owner of the active destination set. Mutation happens
// only through Register and Deregister; everything else gets snapshots.
type Registry struct {
	log   *zap.Logger
	store repo.DestinationStore // nil means in-memory only

	mu    sync.RWMutex
	byKey map[string]domain.Destination
}

func New(log *zap.Logger, store repo.DestinationStore) *Registry {
	return &Registry{
		log:   log,
		store: store,
		byKey: make(map[string]domain.Destination),
	}
}

// Hydrate loads the persisted destinations. Called once at startup, before
// any Deregister can have happened.
func (r *Registry) Hydrate(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	dests, err := r.store.List(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range dests {
		r.byKey[d.Key()] = d
	}
	r.log.Info("destinations_hydrated", zap.Int("count", len(dests)))
	return nil
}

// Register adds a destination and persists it. Idempotent: a destination
// that is already active is not re-appended. Returns whether it was new.
func (r *Registry) Register(ctx context.Context, d domain.Destination) (bool, error) {
	r.mu.Lock()
	_, exists := r.byKey[d.Key()]
	if !exists {
		r.byKey[d.Key()] = d
	}
	r.mu.Unlock()
	if exists {
		return false, nil
	}

	if r.store != nil {
		if err := r.store.Append(ctx, d); err != nil {
			// keep it active; the backend dedups on the read side anyway
			r.log.Error("destination_persist_failed",
				zap.String("destination", d.Key()), zap.Error(err))
			return true, err
		}
	}
	r.log.Info("destination_registered",
		zap.String("destination", d.Key()), zap.String("label", d.Label))
	return true, nil
}

// AddStatic activates a destination without persisting it (env-configured
// webhooks).
func (r *Registry) AddStatic(d domain.Destination) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byKey[d.Key()] = d
}

// Deregister removes a destination from the active set. Removal is
// monotonic: nothing re-adds it short of a fresh Register call.
func (r *Registry) Deregister(d domain.Destination) {
	r.mu.Lock()
	_, existed := r.byKey[d.Key()]
	delete(r.byKey, d.Key())
	r.mu.Unlock()
	if existed {
		r.log.Info("destination_deregistered", zap.String("destination", d.Key()))
	}
}

// List returns a snapshot of active destinations.
func (r *Registry) List() []domain.Destination {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Destination, 0, len(r.byKey))
	for _, d := range r.byKey {
		out = append(out, d)
	}
	return out
}
