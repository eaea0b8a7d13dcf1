package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// GetBlob loads the JSON value stored under key into out. It returns false
// when the key is absent. A malformed stored value is treated as absent so a
// corrupt blob can never prevent startup; the caller falls back to defaults.
func (s *SQLiteStorage) GetBlob(ctx context.Context, key string, out any) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(key, "key"); err != nil {
		return false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load blob %q: %w", key, err)
	}

	if err := json.Unmarshal([]byte(value), out); err != nil {
		slog.Warn("stored blob is malformed, using defaults", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// PutBlob stores value as JSON under key, replacing any previous value.
func (s *SQLiteStorage) PutBlob(ctx context.Context, key string, value any) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal blob %q: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, string(data))
	if err != nil {
		return fmt.Errorf("failed to store blob %q: %w", key, err)
	}
	return nil
}

// DeleteBlob removes the value stored under key. Deleting an absent key is
// not an error.
func (s *SQLiteStorage) DeleteBlob(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete blob %q: %w", key, err)
	}
	return nil
}
