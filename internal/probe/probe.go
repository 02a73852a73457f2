package probe

import "context"

// Status is the tri-state outcome of a single storefront lookup.
type Status int

const (
	StatusUnavailable Status = iota
	StatusAvailable
	StatusIndeterminate
)

func (s Status) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusIndeterminate:
		return "indeterminate"
	default:
		return "unavailable"
	}
}

// Available collapses the tri-state to the boolean the decision layer uses.
// Indeterminate counts as unavailable.
func (s Status) Available() bool { return s == StatusAvailable }

// Result holds the outcome of a single probe. HTTPStatus is 0 on transport
// errors.
type Result struct {
	Status     Status
	HTTPStatus int
	Message    string
}

// Prober performs one availability check for an (app, region) pair.
type Prober interface {
	Probe(ctx context.Context, appID, region string) Result
}
