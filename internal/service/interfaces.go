// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"io"

	"github.com/example/weighbridge/internal/model"
)

// Blob keys used by the persistence store. Each key maps to one JSON value;
// absent or malformed values fall back to built-in defaults on load.
const (
	BlobMasterData   = "master_data"
	BlobSerialConfig = "serial_config"
	BlobAppConfig    = "app_config"
	BlobSession      = "session"
	BlobActiveTab    = "active_tab"
)

// DraftKey returns the blob key holding the unsaved first-weigh form for a
// trade direction.
func DraftKey(d model.Direction) string {
	return "draft_" + string(d)
}

// ActiveKey returns the blob key holding the id of the pending transaction
// currently selected for second-weigh entry in a trade direction.
func ActiveKey(d model.Direction) string {
	return "active_" + string(d)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Ledger operations
	SaveTransaction(ctx context.Context, tx *model.Transaction) error
	UpdateTransaction(ctx context.Context, tx *model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	ListTransactions(ctx context.Context) ([]model.Transaction, error)
	ListPending(ctx context.Context, direction model.Direction) ([]model.Transaction, error)
	ListCompleted(ctx context.Context, direction model.Direction, search string) ([]model.Transaction, error)
	TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error)
	DeleteAllTransactions(ctx context.Context) error

	// Blob operations (master data, configs, session, drafts)
	GetBlob(ctx context.Context, key string, out any) (bool, error)
	PutBlob(ctx context.Context, key string, value any) error
	DeleteBlob(ctx context.Context, key string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// LineSource is an abstract measuring instrument: something that can be
// opened with a serial configuration and then read as a byte stream. Closing
// the returned stream releases the device.
type LineSource interface {
	Open(cfg model.SerialConfig) (io.ReadCloser, error)
}

// WeightSource exposes the live weight to consumers that must not reach into
// the reader directly (HTTP handlers, the TUI, the weigh commands).
type WeightSource interface {
	CurrentWeight() int64
	RawLog() []string
	Connected() bool
}
