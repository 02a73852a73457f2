package notify

import (
	"context"
	"errors"

	"github.com/okunev/appwatch/internal/domain"
)

// ErrDestinationGone marks a delivery failure that means the destination no
// longer exists; the fan-out deregisters on it and only on it.
var ErrDestinationGone = errors.New("destination gone")

// Channel delivers a message to one destination of its kind.
type Channel interface {
	Name() string
	Send(ctx context.Context, dest domain.Destination, msg Message) error
}

// Outcome is the per-destination delivery result.
type Outcome struct {
	Destination domain.Destination
	Err         error
}
