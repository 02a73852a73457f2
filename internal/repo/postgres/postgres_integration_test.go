package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/repo"
)

// Integration test; set TEST_DATABASE_URL to run against a real database
// with the schema applied (schema.sql in the repo root).
func testStore(t *testing.T) *Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}
	s, err := New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestPostgres_DestinationsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	d := domain.Destination{Channel: domain.ChannelTelegram, ID: "it-42", Label: "it chat"}
	if err := s.AppendDestination(ctx, d); err != nil {
		t.Fatalf("append: %v", err)
	}
	// append-only with conflict-free dedup
	if err := s.AppendDestination(ctx, d); err != nil {
		t.Fatalf("second append should be a no-op: %v", err)
	}

	all, err := s.ListDestinations(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	n := 0
	for _, got := range all {
		if got.Key() == d.Key() {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("expected exactly one row for %s, got %d", d.Key(), n)
	}
}

func TestPostgres_LedgerUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	e := repo.LedgerEntry{AppID: "it-app", Available: true, Fingerprint: "true|us:false>true", EventID: "ev-1", SentAt: time.Now().UTC()}
	if err := s.Set(ctx, e); err != nil {
		t.Fatalf("set: %v", err)
	}
	e.Available = false
	e.Fingerprint = "false|us:true>false"
	e.EventID = "ev-2"
	if err := s.Set(ctx, e); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Get(ctx, "it-app")
	if err != nil || got == nil {
		t.Fatalf("get: %+v, %v", got, err)
	}
	if got.Available || got.EventID != "ev-2" || got.Fingerprint != e.Fingerprint {
		t.Fatalf("upsert not applied: %+v", got)
	}
}
