package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UsageLogRepository persists usage history blobs keyed by storage key. It
// satisfies usage.Store.
type UsageLogRepository struct {
	db *sql.DB
}

func NewUsageLogRepository(db *sql.DB) *UsageLogRepository {
	return &UsageLogRepository{db: db}
}

// Load returns nil data when nothing is stored under key.
func (r *UsageLogRepository) Load(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT payload FROM usage_logs WHERE storage_key = ?`
	var payload string
	if err := r.db.QueryRowContext(ctx, query, key).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load usage log: %w", err)
	}
	return []byte(payload), nil
}

func (r *UsageLogRepository) Save(ctx context.Context, key string, data []byte) error {
	const query = `
INSERT INTO usage_logs (storage_key, payload) VALUES (?, ?)
ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, query, key, string(data)); err != nil {
		return fmt.Errorf("save usage log: %w", err)
	}
	return nil
}
