package storage

import (
	"context"
	"fmt"

	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
)

// Backup is the portable snapshot of everything the terminal persists.
// It round-trips losslessly through Snapshot and Restore.
type Backup struct {
	MasterData   model.MasterData    `json:"masterData"`
	SerialConfig model.SerialConfig  `json:"serialConfig"`
	AppConfig    model.AppConfig     `json:"appConfig"`
	Transactions []model.Transaction `json:"transactions"`
}

// Snapshot collects the current ledger and configuration blobs.
func (s *SQLiteStorage) Snapshot(ctx context.Context) (*Backup, error) {
	txs, err := s.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}

	b := &Backup{
		Transactions: txs,
		MasterData:   model.DefaultMasterData(),
		SerialConfig: model.DefaultSerialConfig(),
		AppConfig:    model.DefaultAppConfig(),
	}
	if _, err := s.GetBlob(ctx, service.BlobMasterData, &b.MasterData); err != nil {
		return nil, err
	}
	if _, err := s.GetBlob(ctx, service.BlobSerialConfig, &b.SerialConfig); err != nil {
		return nil, err
	}
	if _, err := s.GetBlob(ctx, service.BlobAppConfig, &b.AppConfig); err != nil {
		return nil, err
	}
	return b, nil
}

// Restore replaces the ledger and configuration with the snapshot contents.
func (s *SQLiteStorage) Restore(ctx context.Context, b *Backup) error {
	if b == nil {
		return fmt.Errorf("backup cannot be nil")
	}

	if err := s.DeleteAllTransactions(ctx); err != nil {
		return err
	}
	for i := len(b.Transactions) - 1; i >= 0; i-- {
		// Ledger order is rowid order, newest first in listings; re-insert
		// oldest first so the restored ledger lists identically.
		tx := b.Transactions[i]
		if err := s.SaveTransaction(ctx, &tx); err != nil {
			return fmt.Errorf("failed to restore transaction %s: %w", tx.ID, err)
		}
	}

	if err := s.PutBlob(ctx, service.BlobMasterData, b.MasterData); err != nil {
		return err
	}
	if err := s.PutBlob(ctx, service.BlobSerialConfig, b.SerialConfig); err != nil {
		return err
	}
	return s.PutBlob(ctx, service.BlobAppConfig, b.AppConfig)
}
