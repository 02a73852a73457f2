package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okunev/appwatch/internal/domain"
	"github.com/okunev/appwatch/internal/repo"
)

// Store is the postgres backend for apps and destinations. Custom fields are
// stored as a jsonb array so header order survives round-trips.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: p}, nil
}

func (s *Store) Close() { s.pool.Close() }

// ---- AppStore ----

func (s *Store) List(ctx context.Context) ([]*domain.App, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT app_id, name, regions, available, updated_at, fields
		   FROM apps
		  ORDER BY app_id`)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}
	defer rows.Close()

	var out []*domain.App
	for rows.Next() {
		var (
			a         domain.App
			regions   string
			updatedAt *time.Time
			fields    []byte
		)
		if err := rows.Scan(&a.AppID, &a.Name, &regions, &a.Available, &updatedAt, &fields); err != nil {
			return nil, fmt.Errorf("scan app: %w", err)
		}
		if a.Name == "" {
			a.Name = "Unknown App"
		}
		if updatedAt != nil {
			a.UpdatedAt = *updatedAt
		}
		for _, g := range strings.Split(regions, ",") {
			if g = strings.TrimSpace(g); g != "" {
				a.Regions = append(a.Regions, g)
			}
		}
		if len(fields) > 0 {
			if err := json.Unmarshal(fields, &a.Fields); err != nil {
				return nil, fmt.Errorf("decode fields for %s: %w", a.AppID, err)
			}
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *Store) UpdateAvailability(ctx context.Context, app *domain.App, available bool, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE apps SET available=$2, updated_at=$3 WHERE app_id=$1`,
		app.AppID, available, at)
	if err != nil {
		return fmt.Errorf("update app %s: %w", app.AppID, err)
	}
	return nil
}

// ---- DestinationStore ----

func (s *Store) ListDestinations(ctx context.Context) ([]domain.Destination, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT channel, dest_id, label FROM destinations ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	defer rows.Close()

	var out []domain.Destination
	for rows.Next() {
		var d domain.Destination
		if err := rows.Scan(&d.Channel, &d.ID, &d.Label); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) AppendDestination(ctx context.Context, d domain.Destination) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO destinations (channel, dest_id, label, created_at)
		 VALUES ($1,$2,$3,$4)
		 ON CONFLICT (channel, dest_id) DO NOTHING`,
		d.Channel, d.ID, d.Label, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert destination %s: %w", d.Key(), err)
	}
	return nil
}

// Destinations adapts Store to repo.DestinationStore (List clashes with
// AppStore.List).
func (s *Store) Destinations() repo.DestinationStore { return destView{s} }

type destView struct{ s *Store }

func (v destView) List(ctx context.Context) ([]domain.Destination, error) {
	return v.s.ListDestinations(ctx)
}

func (v destView) Append(ctx context.Context, d domain.Destination) error {
	return v.s.AppendDestination(ctx, d)
}

// ---- LedgerStore ----

func (s *Store) Get(ctx context.Context, appID string) (*repo.LedgerEntry, error) {
	const q = `SELECT available, fingerprint, event_id, sent_at FROM notify_ledger WHERE app_id=$1`
	e := repo.LedgerEntry{AppID: appID}
	err := s.pool.QueryRow(ctx, q, appID).Scan(&e.Available, &e.Fingerprint, &e.EventID, &e.SentAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

func (s *Store) Set(ctx context.Context, e repo.LedgerEntry) error {
	const q = `
		INSERT INTO notify_ledger (app_id, available, fingerprint, event_id, sent_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (app_id)
		DO UPDATE SET available=EXCLUDED.available, fingerprint=EXCLUDED.fingerprint,
		              event_id=EXCLUDED.event_id, sent_at=EXCLUDED.sent_at
	`
	_, err := s.pool.Exec(ctx, q, e.AppID, e.Available, e.Fingerprint, e.EventID, e.SentAt)
	return err
}

var _ repo.AppStore = (*Store)(nil)
var _ repo.LedgerStore = (*Store)(nil)
var _ repo.DestinationStore = destView{}
