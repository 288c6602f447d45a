package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// KVRepository stores string blobs by key in the kv_store table
type KVRepository struct {
	db *sqlx.DB
}

// NewKVRepository creates a new repository instance
func NewKVRepository(db *sqlx.DB) *KVRepository {
	return &KVRepository{db: db}
}

// Get returns the payload stored under key
func (r *KVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var payload string
	query := r.db.Rebind("SELECT payload FROM kv_store WHERE storage_key = ?")
	err := r.db.GetContext(ctx, &payload, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return payload, true, nil
}

// Set inserts or replaces the payload stored under key
func (r *KVRepository) Set(ctx context.Context, key, value string) error {
	query := r.db.Rebind(`
		INSERT INTO kv_store (storage_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (storage_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`)
	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Keys returns every stored key with the given prefix, ordered by key
func (r *KVRepository) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	query := r.db.Rebind("SELECT storage_key FROM kv_store WHERE storage_key LIKE ? ORDER BY storage_key")
	if err := r.db.SelectContext(ctx, &keys, query, prefix+"%"); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}
