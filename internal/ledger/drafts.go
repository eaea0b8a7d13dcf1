package ledger

import (
	"context"

	"github.com/example/weighbridge/internal/model"
	"github.com/example/weighbridge/internal/service"
)

// Draft is the unsaved first-weigh form for one trade direction. It is
// persisted on every edit so an interrupted operator resumes exactly where
// they left off after a restart.
type Draft struct {
	PlateNumber string `json:"plateNumber"`
	DriverName  string `json:"driverName"`
	CargoType   string `json:"cargoType"`
	PartyName   string `json:"partyName"`
}

// Recovery persists per-direction drafts and the per-direction selection of
// which pending transaction is active for second-weigh entry.
type Recovery struct {
	store service.Storage
}

// NewRecovery creates a recovery manager over the given storage.
func NewRecovery(store service.Storage) *Recovery {
	return &Recovery{store: store}
}

// SaveDraft stores the in-progress form for a direction.
func (r *Recovery) SaveDraft(ctx context.Context, direction model.Direction, draft Draft) error {
	return r.store.PutBlob(ctx, service.DraftKey(direction), draft)
}

// LoadDraft returns the saved form for a direction, if any.
func (r *Recovery) LoadDraft(ctx context.Context, direction model.Direction) (Draft, bool, error) {
	var draft Draft
	found, err := r.store.GetBlob(ctx, service.DraftKey(direction), &draft)
	return draft, found, err
}

// ClearDraft discards the saved form for a direction.
func (r *Recovery) ClearDraft(ctx context.Context, direction model.Direction) error {
	return r.store.DeleteBlob(ctx, service.DraftKey(direction))
}

// SelectActive marks a pending transaction as the one being completed in a
// direction, atomically replacing any earlier selection.
func (r *Recovery) SelectActive(ctx context.Context, direction model.Direction, txID string) error {
	return r.store.PutBlob(ctx, service.ActiveKey(direction), txID)
}

// Active returns the id of the currently selected pending transaction for a
// direction, if one is selected.
func (r *Recovery) Active(ctx context.Context, direction model.Direction) (string, bool, error) {
	var id string
	found, err := r.store.GetBlob(ctx, service.ActiveKey(direction), &id)
	if err != nil || !found || id == "" {
		return "", false, err
	}
	return id, true, nil
}

// ClearActive drops the selection for a direction.
func (r *Recovery) ClearActive(ctx context.Context, direction model.Direction) error {
	return r.store.DeleteBlob(ctx, service.ActiveKey(direction))
}
