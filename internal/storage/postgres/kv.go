package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/kart-storefront/internal/kv"
)

const (
	getEntrySQL = `SELECT value FROM kv_entries WHERE key = $1`
	setEntrySQL = `INSERT INTO kv_entries (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

var _ kv.Store = (*KV)(nil)

// KV implements kv.Store on the kv_entries table.
type KV struct {
	pool *pgxpool.Pool
}

// NewKV returns a KV that uses the given pool.
func NewKV(pool *pgxpool.Pool) *KV {
	return &KV{pool: pool}
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	if err := s.pool.QueryRow(ctx, getEntrySQL, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get entry %q", key)
	}
	return value, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if _, err := s.pool.Exec(ctx, setEntrySQL, key, value); err != nil {
		return errors.Wrapf(err, "set entry %q", key)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *KV) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
