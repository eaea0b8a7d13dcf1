// Package ledger owns the two-stage weighing transaction workflow.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/weighbridge/internal/common"
	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
	"github.com/google/uuid"
)

// WeightThreshold is the minimum accepted live weight in kg. An unloaded or
// disconnected scale reads near zero; anything below this is noise and must
// not become a ticket.
const WeightThreshold = 10

// Ledger performs the PENDING -> COMPLETED state transitions over the stored
// transaction collection. All mutations are serialized so the invariants hold
// even when the HTTP server and a CLI command race.
type Ledger struct {
	store service.Storage
	now   func() time.Time
	newID func() string
	mu    sync.Mutex
}

// New creates a ledger over the given storage.
func New(store service.Storage) *Ledger {
	return &Ledger{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// OpenRequest carries the operator input for a first weighing.
type OpenRequest struct {
	Direction   model.Direction
	PlateNumber string
	DriverName  string
	CargoType   string
	PartyName   string
	Weight      int64
	Operator    model.Operator
}

// Open records the first weighing of a vehicle visit and creates a PENDING
// transaction. Nothing is mutated when validation fails.
func (l *Ledger) Open(ctx context.Context, req OpenRequest) (*model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !req.Direction.Valid() {
		return nil, fmt.Errorf("%w: direction %q", common.ErrInvalidConfig, req.Direction)
	}

	plate := model.NormalizeName(req.PlateNumber)
	if plate == "" {
		return nil, common.NewUserError("Mohon isi nomor polisi kendaraan", common.ErrEmptyPlate)
	}
	if req.Weight < WeightThreshold {
		return nil, common.NewUserError("Timbangan kosong atau berat terlalu kecil", common.ErrWeightTooLow)
	}

	pending, err := l.store.ListPending(ctx, req.Direction)
	if err != nil {
		return nil, err
	}
	for _, p := range pending {
		if p.PlateNumber == plate {
			return nil, common.NewUserError(
				fmt.Sprintf("Kendaraan %s sudah ada dalam antrian pending", plate),
				fmt.Errorf("%w: %s %s", common.ErrDuplicatePending, req.Direction, plate))
		}
	}

	ticket, err := l.allocateTicketNumber(ctx, req.Direction)
	if err != nil {
		return nil, err
	}

	tx := &model.Transaction{
		ID:             l.newID(),
		TicketNumber:   ticket,
		Direction:      req.Direction,
		PlateNumber:    plate,
		DriverName:     model.NormalizeName(req.DriverName),
		CargoType:      model.NormalizeName(req.CargoType),
		PartyName:      model.NormalizeName(req.PartyName),
		FirstWeight:    req.Weight,
		FirstTimestamp: l.now(),
		Status:         model.StatusPending,
		Operator:       req.Operator.Name,
		OperatorRole:   req.Operator.Role,
	}

	if err := l.store.SaveTransaction(ctx, tx); err != nil {
		return nil, err
	}

	// Submitting clears the unsaved form for this direction; best effort.
	if err := l.store.DeleteBlob(ctx, service.DraftKey(req.Direction)); err != nil {
		common.LogError(err, "failed to clear draft after first weigh", common.Fields{"direction": req.Direction})
	}

	common.LogInfo("first weigh recorded", common.Fields{
		"ticket": tx.TicketNumber,
		"plate":  tx.PlateNumber,
		"weight": tx.FirstWeight,
	})
	return tx, nil
}

// Close records the second weighing and completes the transaction. The
// ledger is left untouched on any validation failure.
func (l *Ledger) Close(ctx context.Context, id string, weight int64) (*model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if weight < WeightThreshold {
		return nil, common.NewUserError("Berat timbangan tidak valid untuk penimbangan kedua", common.ErrWeightTooLow)
	}

	tx, err := l.store.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Complete(weight, l.now()); err != nil {
		return nil, err
	}
	if err := l.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	// The completed vehicle is no longer the active second-weigh selection.
	if err := l.store.DeleteBlob(ctx, service.ActiveKey(tx.Direction)); err != nil {
		common.LogError(err, "failed to clear active selection", common.Fields{"direction": tx.Direction})
	}

	common.LogInfo("second weigh recorded", common.Fields{
		"ticket": tx.TicketNumber,
		"netto":  tx.NetWeight,
	})
	return tx, nil
}

// ListPending returns the waiting queue for one direction, newest first.
func (l *Ledger) ListPending(ctx context.Context, direction model.Direction) ([]model.Transaction, error) {
	return l.store.ListPending(ctx, direction)
}

// ListCompleted returns completed transactions for one direction, filtered
// by a case-normalized substring match on plate or driver.
func (l *Ledger) ListCompleted(ctx context.Context, direction model.Direction, search string) ([]model.Transaction, error) {
	return l.store.ListCompleted(ctx, direction, search)
}

// Get retrieves one transaction by id.
func (l *Ledger) Get(ctx context.Context, id string) (*model.Transaction, error) {
	return l.store.GetTransactionByID(ctx, id)
}

// ClearAll destructively resets the ledger and all per-direction drafts and
// selections. Guarded admin operation, not part of the normal workflow.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.DeleteAllTransactions(ctx); err != nil {
		return err
	}
	for _, d := range []model.Direction{model.DirectionOutbound, model.DirectionInbound} {
		if err := l.store.DeleteBlob(ctx, service.DraftKey(d)); err != nil {
			return err
		}
		if err := l.store.DeleteBlob(ctx, service.ActiveKey(d)); err != nil {
			return err
		}
	}
	common.LogInfo("ledger cleared", common.Fields{})
	return nil
}

// allocateTicketNumber derives a human-facing ticket number from the wall
// clock and verifies it is unused. The suffix is advanced on the rare
// collision instead of trusting timestamp uniqueness.
func (l *Ledger) allocateTicketNumber(ctx context.Context, direction model.Direction) (string, error) {
	suffix := l.now().UnixMilli() % 1_000_000
	for attempt := 0; attempt < 1_000_000; attempt++ {
		ticket := fmt.Sprintf("%s-%06d", direction.TicketPrefix(), suffix)
		exists, err := l.store.TicketNumberExists(ctx, ticket)
		if err != nil {
			return "", err
		}
		if !exists {
			return ticket, nil
		}
		suffix = (suffix + 1) % 1_000_000
	}
	return "", fmt.Errorf("ticket number space exhausted for %s", direction)
}
