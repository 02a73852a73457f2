package domain

import (
	"strconv"
	"strings"
	"time"
)

// App is one tracked storefront application, as hydrated from the app store
// backend. Row is the backing-store row hint used to address updates; the
// engine treats it as opaque.
type App struct {
	AppID     string    `json:"app_id"`
	Name      string    `json:"name"`
	Regions   []string  `json:"regions"`
	Available bool      `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
	Row       int       `json:"-"`
	Fields    Fields    `json:"fields,omitempty"`
}

// ProbeResult is the collapsed outcome of one availability probe.
type ProbeResult struct {
	AppID      string    `json:"app_id"`
	Region     string    `json:"region"`
	Available  bool      `json:"available"`
	HTTPStatus int       `json:"http_status,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// ChangeCandidate is a single-sample disagreement between a fresh probe and
// the last persisted availability, for one region. Candidates live only for
// the duration of one sweep.
type ChangeCandidate struct {
	Region    string `json:"region"`
	OldStatus bool   `json:"old_status"`
	NewStatus bool   `json:"new_status"`
}

// ConfirmedChange is a ChangeCandidate that survived majority confirmation.
type ConfirmedChange struct {
	Region    string `json:"region"`
	OldStatus bool   `json:"old_status"`
	NewStatus bool   `json:"new_status"`
}

// RegionLink pairs a region code with its storefront URL.
type RegionLink struct {
	Region string `json:"region"`
	URL    string `json:"url"`
}

// ChangeEvent is emitted once per app per sweep when at least one regional
// change was confirmed. It carries everything the notifier needs.
type ChangeEvent struct {
	ID               string            `json:"id"`
	AppID            string            `json:"app_id"`
	Name             string            `json:"name"`
	Available        bool              `json:"available"`
	Changes          []ConfirmedChange `json:"changes"`
	AvailableRegions []RegionLink      `json:"available_regions"`
	Fields           Fields            `json:"fields,omitempty"`
	At               time.Time         `json:"at"`
}

// Fingerprint identifies the announced change set: the verdict plus every
// confirmed regional transition. Two sweeps that re-detect the same change
// (e.g. after a lost row write) produce equal fingerprints even though their
// event IDs differ.
func (e *ChangeEvent) Fingerprint() string {
	var b strings.Builder
	b.WriteString(strconv.FormatBool(e.Available))
	for _, c := range e.Changes {
		b.WriteByte('|')
		b.WriteString(c.Region)
		b.WriteByte(':')
		b.WriteString(strconv.FormatBool(c.OldStatus))
		b.WriteByte('>')
		b.WriteString(strconv.FormatBool(c.NewStatus))
	}
	return b.String()
}
