package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/model"
)

// SaveTransaction inserts a newly opened transaction into the ledger.
func (s *SQLiteStorage) SaveTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(tx); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (
			id, ticket_number, direction, plate_number, driver_name,
			cargo_type, party_name, first_weight, second_weight, net_weight,
			first_ts, second_ts, status, operator, operator_role
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID,
		tx.TicketNumber,
		string(tx.Direction),
		tx.PlateNumber,
		tx.DriverName,
		tx.CargoType,
		tx.PartyName,
		tx.FirstWeight,
		nullInt64(tx.SecondWeight, tx.Completed()),
		nullInt64(tx.NetWeight, tx.Completed()),
		tx.FirstTimestamp,
		nullTime(tx.SecondTimestamp, tx.Completed()),
		string(tx.Status),
		tx.Operator,
		string(tx.OperatorRole),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s %s", common.ErrDuplicateEntry, tx.Direction, tx.PlateNumber)
		}
		return fmt.Errorf("failed to save transaction: %w", err)
	}
	return nil
}

// UpdateTransaction writes back a completed transaction.
func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, tx *model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(tx); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET second_weight = ?, net_weight = ?, second_ts = ?, status = ?
		WHERE id = ?`,
		nullInt64(tx.SecondWeight, tx.Completed()),
		nullInt64(tx.NetWeight, tx.Completed()),
		nullTime(tx.SecondTimestamp, tx.Completed()),
		string(tx.Status),
		tx.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: transaction %s", common.ErrNotFound, tx.ID)
	}
	return nil
}

// GetTransactionByID retrieves a single transaction.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, selectTransactions+` WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return tx, nil
}

// ListTransactions returns the whole ledger, most recent first.
func (s *SQLiteStorage) ListTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx, selectTransactions+` ORDER BY rowid DESC`)
}

// ListPending returns pending transactions for one direction, most recent first.
func (s *SQLiteStorage) ListPending(ctx context.Context, direction model.Direction) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryTransactions(ctx,
		selectTransactions+` WHERE status = ? AND direction = ? ORDER BY rowid DESC`,
		string(model.StatusPending), string(direction))
}

// ListCompleted returns completed transactions for one direction, optionally
// filtered by a case-normalized substring match on plate or driver.
func (s *SQLiteStorage) ListCompleted(ctx context.Context, direction model.Direction, search string) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := selectTransactions + ` WHERE status = ? AND direction = ?`
	args := []any{string(model.StatusCompleted), string(direction)}

	search = strings.ToUpper(strings.TrimSpace(search))
	if search != "" {
		query += ` AND (UPPER(plate_number) LIKE ? ESCAPE '\' OR UPPER(driver_name) LIKE ? ESCAPE '\')`
		pattern := "%" + escapeLike(search) + "%"
		args = append(args, pattern, pattern)
	}
	query += ` ORDER BY rowid DESC`

	return s.queryTransactions(ctx, query, args...)
}

// TicketNumberExists reports whether a ticket number is already allocated.
func (s *SQLiteStorage) TicketNumberExists(ctx context.Context, ticketNumber string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(ticketNumber, "ticketNumber"); err != nil {
		return false, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE ticket_number = ?`, ticketNumber).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check ticket number: %w", err)
	}
	return count > 0, nil
}

// DeleteAllTransactions destructively resets the ledger.
func (s *SQLiteStorage) DeleteAllTransactions(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	return nil
}

const selectTransactions = `
	SELECT id, ticket_number, direction, plate_number, driver_name,
		cargo_type, party_name, first_weight, second_weight, net_weight,
		first_ts, second_ts, status, operator, operator_role
	FROM transactions`

func (s *SQLiteStorage) queryTransactions(ctx context.Context, query string, args ...any) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txs []model.Transaction
	for rows.Next() {
		tx, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		txs = append(txs, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		tx           model.Transaction
		direction    string
		status       string
		role         string
		driverName   sql.NullString
		cargoType    sql.NullString
		partyName    sql.NullString
		operator     sql.NullString
		secondWeight sql.NullInt64
		netWeight    sql.NullInt64
		secondTS     sql.NullTime
	)

	err := row.Scan(
		&tx.ID, &tx.TicketNumber, &direction, &tx.PlateNumber, &driverName,
		&cargoType, &partyName, &tx.FirstWeight, &secondWeight, &netWeight,
		&tx.FirstTimestamp, &secondTS, &status, &operator, &role,
	)
	if err != nil {
		return nil, err
	}

	tx.Direction = model.Direction(direction)
	tx.Status = model.Status(status)
	tx.OperatorRole = model.Role(role)
	tx.DriverName = driverName.String
	tx.CargoType = cargoType.String
	tx.PartyName = partyName.String
	tx.Operator = operator.String
	if secondWeight.Valid {
		tx.SecondWeight = secondWeight.Int64
	}
	if netWeight.Valid {
		tx.NetWeight = netWeight.Int64
	}
	if secondTS.Valid {
		tx.SecondTimestamp = secondTS.Time
	}
	return &tx, nil
}

func nullInt64(v int64, present bool) any {
	if !present {
		return nil
	}
	return v
}

func nullTime(v time.Time, present bool) any {
	if !present {
		return nil
	}
	return v
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}
