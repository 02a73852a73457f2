package repo

import (
	"context"
	"time"
)

// LedgerEntry records the last notification sent for an app: the verdict it
// announced, a fingerprint of the announced change set, and when. The
// persisted App row is the primary idempotency guard; the ledger catches the
// case where a send succeeded but the row write was lost, so a restart does
// not re-announce the same change.
type LedgerEntry struct {
	AppID       string    `json:"app_id"`
	Available   bool      `json:"available"`
	Fingerprint string    `json:"fingerprint"`
	EventID     string    `json:"event_id"`
	SentAt      time.Time `json:"sent_at"`
}

// LedgerStore is implemented by a persistence layer for notification dedup.
type LedgerStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, appID string) (*LedgerEntry, error)
	// Set upserts the record.
	Set(ctx context.Context, e LedgerEntry) error
}
