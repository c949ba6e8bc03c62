package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/foodie/internal/port"
)

const (
	getEntrySQL    = `SELECT value FROM kv_entries WHERE key = $1`
	upsertEntrySQL = `INSERT INTO kv_entries (key, value, updated_at)
VALUES ($1, $2, NOW())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteEntrySQL = `DELETE FROM kv_entries WHERE key = $1`
)

type postgresStore struct {
	q    dbtx
	pool *pgxpool.Pool
}

// NewPostgresStore expects the kv_entries table from the migrations package.
func NewPostgresStore(pool *pgxpool.Pool) port.KeyValueStore {
	return &postgresStore{
		q:    pool,
		pool: pool,
	}
}

func NewPostgresStoreWithTx(tx pgx.Tx) port.KeyValueStore {
	return &postgresStore{
		q:    tx,
		pool: nil, // use provided transaction instead
	}
}

func (r *postgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	var value []byte
	err := r.q.QueryRow(ctx, getEntrySQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("q.QueryRow: %w", err)
	}

	return value, nil
}

func (r *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if _, err := r.q.Exec(ctx, upsertEntrySQL, key, value); err != nil {
		return fmt.Errorf("q.Exec: %w", err)
	}

	return nil
}

func (r *postgresStore) SetAll(ctx context.Context, entries []port.Entry) error {
	for _, e := range entries {
		if e.Key == "" {
			return fmt.Errorf("key is empty")
		}
	}

	_, err := withTx(ctx, r.pool, r.q, func(q dbtx) (struct{}, error) {
		for _, e := range entries {
			if _, err := q.Exec(ctx, upsertEntrySQL, e.Key, e.Value); err != nil {
				return struct{}{}, fmt.Errorf("q.Exec[%s]: %w", e.Key, err)
			}
		}
		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *postgresStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if _, err := r.q.Exec(ctx, deleteEntrySQL, key); err != nil {
		return fmt.Errorf("q.Exec: %w", err)
	}

	return nil
}
