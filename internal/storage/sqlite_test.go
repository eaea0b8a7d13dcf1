package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/weighbridge/internal/model"
	"github.com/stretchr/testify/require"
)

// newTestStorage creates a migrated storage backed by a temp database.
func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "weighbridge.db")
	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func pendingTx(id, ticket string, direction model.Direction, plate string) *model.Transaction {
	return &model.Transaction{
		ID:             id,
		TicketNumber:   ticket,
		Direction:      direction,
		PlateNumber:    plate,
		DriverName:     "SUPARMAN",
		CargoType:      "SAWIT (FFB)",
		PartyName:      "PT BANGUN INDUSTRI NUSANTARA",
		FirstWeight:    15000,
		FirstTimestamp: time.Date(2025, 6, 1, 8, 30, 0, 0, time.UTC),
		Status:         model.StatusPending,
		Operator:       "OPERATOR 1",
		OperatorRole:   model.RoleOperator,
	}
}

func TestNewSQLiteStorage_InvalidPath(t *testing.T) {
	_, err := NewSQLiteStorage("")
	require.Error(t, err)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := newTestStorage(t)
	require.NoError(t, store.Migrate(context.Background()))

	var version int
	require.NoError(t, store.db.QueryRow("PRAGMA user_version").Scan(&version))
	require.Equal(t, ExpectedSchemaVersion, version)
}
