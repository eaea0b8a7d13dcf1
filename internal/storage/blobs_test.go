package storage

import (
	"context"
	"testing"
	"time"

	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	cfg := model.DefaultSerialConfig()
	cfg.BaudRate = 19200
	require.NoError(t, store.PutBlob(ctx, service.BlobSerialConfig, cfg))

	var got model.SerialConfig
	found, err := store.GetBlob(ctx, service.BlobSerialConfig, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cfg, got)
}

func TestGetBlob_AbsentKey(t *testing.T) {
	store := newTestStorage(t)

	var cfg model.AppConfig
	found, err := store.GetBlob(context.Background(), service.BlobAppConfig, &cfg)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetBlob_MalformedValueTreatedAsAbsent(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx,
		`INSERT INTO blobs (key, value) VALUES (?, ?)`, service.BlobMasterData, "{not json")
	require.NoError(t, err)

	var master model.MasterData
	found, err := store.GetBlob(ctx, service.BlobMasterData, &master)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPutBlob_Replaces(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.PutBlob(ctx, service.BlobActiveTab, "sales"))
	require.NoError(t, store.PutBlob(ctx, service.BlobActiveTab, "reports"))

	var tab string
	found, err := store.GetBlob(ctx, service.BlobActiveTab, &tab)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "reports", tab)
}

func TestDeleteBlob(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	key := service.DraftKey(model.DirectionOutbound)
	require.NoError(t, store.PutBlob(ctx, key, map[string]string{"plateNumber": "B1234ABC"}))
	require.NoError(t, store.DeleteBlob(ctx, key))

	var draft map[string]string
	found, err := store.GetBlob(ctx, key, &draft)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting again is a no-op.
	require.NoError(t, store.DeleteBlob(ctx, key))
}

func TestBackupRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	open := pendingTx("tx-1", "OUT-111111", model.DirectionOutbound, "B1111AA")
	done := pendingTx("tx-2", "IN-222222", model.DirectionInbound, "B2222BB")
	require.NoError(t, store.SaveTransaction(ctx, open))
	require.NoError(t, store.SaveTransaction(ctx, done))
	require.NoError(t, done.Complete(9000, done.FirstTimestamp.Add(30*time.Minute)))
	require.NoError(t, store.UpdateTransaction(ctx, done))

	master := model.DefaultMasterData()
	master.AddCargoType("BATU BARA")
	require.NoError(t, store.PutBlob(ctx, service.BlobMasterData, master))

	snap, err := store.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Transactions, 2)

	// Restore into a fresh database and snapshot again.
	other := newTestStorage(t)
	require.NoError(t, other.Restore(ctx, snap))

	restored, err := other.Snapshot(ctx)
	require.NoError(t, err)

	require.Len(t, restored.Transactions, 2)
	for i := range snap.Transactions {
		want := snap.Transactions[i]
		got := restored.Transactions[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.TicketNumber, got.TicketNumber)
		assert.Equal(t, want.Status, got.Status)
		assert.Equal(t, want.NetWeight, got.NetWeight)
		assert.True(t, got.FirstTimestamp.Equal(want.FirstTimestamp))
	}
	assert.Equal(t, snap.MasterData, restored.MasterData)
	assert.Equal(t, snap.SerialConfig, restored.SerialConfig)
	assert.Equal(t, snap.AppConfig, restored.AppConfig)
}
