package redisledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okunev/appwatch/internal/repo"
)

const keyPrefix = "appwatch:ledger:"

// Ledger is the redis-backed notification ledger. Entries expire after TTL
// so a long-gone app does not pin a key forever.
type Ledger struct {
	rdb *redis.Client
	ttl time.Duration
}

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func New(ctx context.Context, opts Options) (*Ledger, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Ledger{rdb: rdb, ttl: opts.TTL}, nil
}

func (l *Ledger) Close() error { return l.rdb.Close() }

func (l *Ledger) Get(ctx context.Context, appID string) (*repo.LedgerEntry, error) {
	raw, err := l.rdb.Get(ctx, keyPrefix+appID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("ledger get %s: %w", appID, err)
	}
	var e repo.LedgerEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("ledger decode %s: %w", appID, err)
	}
	return &e, nil
}

func (l *Ledger) Set(ctx context.Context, e repo.LedgerEntry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("ledger encode %s: %w", e.AppID, err)
	}
	if err := l.rdb.Set(ctx, keyPrefix+e.AppID, raw, l.ttl).Err(); err != nil {
		return fmt.Errorf("ledger set %s: %w", e.AppID, err)
	}
	return nil
}

var _ repo.LedgerStore = (*Ledger)(nil)
