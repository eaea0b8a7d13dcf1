package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/weighbridge/internal/model"
)

// validateContext ensures the context is usable.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}
	return nil
}

// validateString ensures a required string field is non-empty.
func validateString(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", field)
	}
	return nil
}

// validateTransaction ensures a transaction is storable.
func validateTransaction(tx *model.Transaction) error {
	if tx == nil {
		return fmt.Errorf("transaction cannot be nil")
	}
	if err := validateString(tx.ID, "transaction ID"); err != nil {
		return err
	}
	if err := validateString(tx.TicketNumber, "ticket number"); err != nil {
		return err
	}
	if !tx.Direction.Valid() {
		return fmt.Errorf("invalid direction: %q", tx.Direction)
	}
	if err := validateString(tx.PlateNumber, "plate number"); err != nil {
		return err
	}
	switch tx.Status {
	case model.StatusPending, model.StatusCompleted:
	default:
		return fmt.Errorf("invalid status: %q", tx.Status)
	}
	return nil
}
