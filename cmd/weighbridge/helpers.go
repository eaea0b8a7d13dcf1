package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/ledger"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/scale"
	"github.com/example/weighbridge/internal/service"
	"github.com/example/weighbridge/internal/storage"
)

// initStorage opens the sqlite database and runs migrations.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/weighbridge/weighbridge.db"
	}
	dbPath = expandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return store, nil
}

// expandPath resolves ~ and environment variables in configured paths.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	return os.ExpandEnv(path)
}

// newLineSource builds the indicator source from configuration. A TCP
// serial bridge takes precedence; otherwise the configured device path is
// opened as a file.
func newLineSource() service.LineSource {
	if addr := viper.GetString("scale.address"); addr != "" {
		return &scale.TCPSource{Addr: addr}
	}
	path := viper.GetString("scale.device")
	if path == "" {
		path = "/dev/ttyUSB0"
	}
	return &scale.FileSource{Path: expandPath(path)}
}

// loadSerialConfig reads the stored indicator settings, defaulting on first run.
func loadSerialConfig(ctx context.Context, store service.Storage) model.SerialConfig {
	cfg := model.DefaultSerialConfig()
	if _, err := store.GetBlob(ctx, service.BlobSerialConfig, &cfg); err != nil {
		common.LogError(err, "failed to load serial config", nil)
	}
	return cfg
}

// loadMasterData reads the stored reference lists, defaulting on first run.
func loadMasterData(ctx context.Context, store service.Storage) model.MasterData {
	master := model.DefaultMasterData()
	if _, err := store.GetBlob(ctx, service.BlobMasterData, &master); err != nil {
		common.LogError(err, "failed to load master data", nil)
	}
	return master
}

func loadAppConfig(ctx context.Context, store service.Storage) model.AppConfig {
	cfg := model.DefaultAppConfig()
	if _, err := store.GetBlob(ctx, service.BlobAppConfig, &cfg); err != nil {
		common.LogError(err, "failed to load app config", nil)
	}
	return cfg
}

// authOperator resolves the --pin flag against the operator registry.
func authOperator(ctx context.Context, store service.Storage, pin string) (*model.Operator, error) {
	master := loadMasterData(ctx, store)
	op, err := master.OperatorByPIN(pin)
	if err != nil {
		return nil, fmt.Errorf("PIN tidak dikenali: %w", err)
	}
	return op, nil
}

// requireMasterOp is authOperator plus the MASTER role gate.
func requireMasterOp(ctx context.Context, store service.Storage, pin string) (*model.Operator, error) {
	op, err := authOperator(ctx, store, pin)
	if err != nil {
		return nil, err
	}
	if op.Role != model.RoleMaster {
		return nil, fmt.Errorf("operasi ini memerlukan operator MASTER")
	}
	return op, nil
}

// sampleWeight connects to the indicator and waits for a stable reading.
// Used by the weigh commands when no manual --weight is given.
func sampleWeight(ctx context.Context, store service.Storage) (int64, error) {
	reader := scale.NewReader(newLineSource())
	if err := reader.Start(loadSerialConfig(ctx, store)); err != nil {
		return 0, err
	}
	defer reader.Stop()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if w := reader.CurrentWeight(); w >= ledger.WeightThreshold {
			return w, nil
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
	return 0, fmt.Errorf("%w: no reading above %d kg within 5s", common.ErrWeightTooLow, ledger.WeightThreshold)
}

// resolveWeight returns the manual weight when given, the live reading otherwise.
func resolveWeight(ctx context.Context, store service.Storage, manual int64) (int64, error) {
	if manual > 0 {
		return manual, nil
	}
	return sampleWeight(ctx, store)
}

// findByTicket scans the ledger for a transaction by its human-facing number.
func findByTicket(ctx context.Context, store service.Storage, ticket string) (*model.Transaction, error) {
	ticket = model.NormalizeName(ticket)
	txs, err := store.ListTransactions(ctx)
	if err != nil {
		return nil, err
	}
	for i := range txs {
		if txs[i].TicketNumber == ticket {
			return &txs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: ticket %s", common.ErrNotFound, ticket)
}

// userMessage prefers the operator-facing message when one is attached.
func userMessage(err error) string {
	var ue *common.UserError
	if errors.As(err, &ue) {
		return ue.UserMessage
	}
	return err.Error()
}
