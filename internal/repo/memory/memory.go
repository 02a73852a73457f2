package memory

import (
	"context"
	"sync"
	"time"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/repo"
)

// Store is the in-memory backend used for dev runs and tests. It implements
// all three ports.
type Store struct {
	mu     sync.RWMutex
	apps   []*domain.App
	dests  []domain.Destination
	ledger map[string]repo.LedgerEntry
}

func New() *Store {
	return &Store{ledger: make(map[string]repo.LedgerEntry)}
}

// Seed replaces the tracked apps; row hints are assigned by position.
func (m *Store) Seed(apps ...*domain.App) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apps = m.apps[:0]
	for i, a := range apps {
		if a.Row == 0 {
			a.Row = i + 2 // 1-based plus header row, matching tabular backends
		}
		m.apps = append(m.apps, a)
	}
}

func (m *Store) List(ctx context.Context) ([]*domain.App, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.App, len(m.apps))
	copy(out, m.apps)
	return out, nil
}

func (m *Store) UpdateAvailability(ctx context.Context, app *domain.App, available bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.apps {
		if a.AppID == app.AppID {
			a.Available = available
			a.UpdatedAt = at
			return nil
		}
	}
	return nil
}

// ---- DestinationStore ----

func (m *Store) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Destination, len(m.dests))
	copy(out, m.dests)
	return out, nil
}

func (m *Store) Append(ctx context.Context, d domain.Destination) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dests = append(m.dests, d)
	return nil
}

// ---- LedgerStore ----

func (m *Store) Get(ctx context.Context, appID string) (*repo.LedgerEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.ledger[appID]
	if !ok {
		return nil, nil
	}
	cp := e
	return &cp, nil
}

func (m *Store) Set(ctx context.Context, e repo.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ledger[e.AppID] = e
	return nil
}

// Destinations adapts Store to repo.DestinationStore; the method set clashes
// with AppStore.List, so the destination port is a view.
func (m *Store) Destinations() repo.DestinationStore { return destView{m} }

type destView struct{ s *Store }

func (v destView) List(ctx context.Context) ([]domain.Destination, error) {
	return v.s.ListDestinations(ctx)
}

func (v destView) Append(ctx context.Context, d domain.Destination) error {
	return v.s.Append(ctx, d)
}

var _ repo.AppStore = (*Store)(nil)
var _ repo.LedgerStore = (*Store)(nil)
var _ repo.DestinationStore = destView{}
