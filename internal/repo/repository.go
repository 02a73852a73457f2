package repo

import (
	"context"
	"time"

	"github.com/okunev/appwatch/internal/domain"
)

// Ports (interfaces) — swap in any backend later.

// AppStore reads the tracked-app table and writes back availability verdicts.
// UpdateAvailability must touch only the availability and timestamp columns
// of the one row.
type AppStore interface {
	List(ctx context.Context) ([]*domain.App, error)
	UpdateAvailability(ctx context.Context, app *domain.App, available bool, at time.Time) error
}

// DestinationStore persists registered notification destinations.
// Append is append-only; callers dedup against List.
type DestinationStore interface {
	List(ctx context.Context) ([]domain.Destination, error)
	Append(ctx context.Context, d domain.Destination) error
}
