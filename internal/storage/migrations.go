package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 2

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					ticket_number TEXT UNIQUE NOT NULL,
					direction TEXT NOT NULL,
					plate_number TEXT NOT NULL,
					driver_name TEXT,
					cargo_type TEXT,
					party_name TEXT,
					first_weight INTEGER NOT NULL,
					second_weight INTEGER,
					net_weight INTEGER,
					first_ts DATETIME NOT NULL,
					second_ts DATETIME,
					status TEXT NOT NULL,
					operator TEXT,
					operator_role TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_status ON transactions(status, direction)`,
				`CREATE INDEX idx_transactions_plate ON transactions(plate_number)`,

				`CREATE TABLE IF NOT EXISTS blobs (
					key TEXT PRIMARY KEY,
					value TEXT NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute migration query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Enforce one pending transaction per vehicle and direction",
		Up: func(tx *sql.Tx) error {
			// Partial unique index backing the double-booking invariant. The
			// ledger checks it first; this is the durable backstop.
			query := `CREATE UNIQUE INDEX IF NOT EXISTS idx_pending_vehicle
				ON transactions(direction, plate_number)
				WHERE status = 'PENDING'`
			if _, err := tx.Exec(query); err != nil {
				return fmt.Errorf("failed to create pending vehicle index: %w", err)
			}
			return nil
		},
	},
}

// Migrate runs all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("applying migration",
			"version", migration.Version,
			"description", migration.Description)

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin migration transaction: %w", err)
		}

		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to set schema version: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}
