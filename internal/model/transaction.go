package model

import (
	"fmt"
	"time"

	"github.com/example/weighbridge/internal/common"
)

// Status tracks where a transaction sits in the two-stage weighing flow.
type Status string

// Transaction statuses. PENDING means the vehicle has been weighed once and
// is waiting at the yard for its second weighing; COMPLETED is terminal.
const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
)

// Direction is the trade flow of a vehicle visit.
type Direction string

// Trade directions.
const (
	DirectionOutbound Direction = "OUTBOUND" // sale, vehicle leaves loaded
	DirectionInbound  Direction = "INBOUND"  // purchase, vehicle arrives loaded
)

// ParseDirection converts a string into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionOutbound:
		return DirectionOutbound, nil
	case DirectionInbound:
		return DirectionInbound, nil
	}
	return "", fmt.Errorf("%w: unknown direction %q", common.ErrInvalidConfig, s)
}

// TicketPrefix returns the human-facing ticket number prefix for the direction.
func (d Direction) TicketPrefix() string {
	if d == DirectionInbound {
		return "IN"
	}
	return "OUT"
}

// Valid reports whether the direction is one of the two trade flows.
func (d Direction) Valid() bool {
	return d == DirectionOutbound || d == DirectionInbound
}

// Transaction is one weighing event for one vehicle visit. Identity fields
// and the first weighing are captured at creation and never edited; the
// second weighing fields are set exactly once when the transaction completes.
type Transaction struct {
	FirstTimestamp  time.Time `json:"firstTimestamp"`
	SecondTimestamp time.Time `json:"secondTimestamp,omitempty"`
	ID              string    `json:"id"`
	TicketNumber    string    `json:"ticketNumber"`
	Direction       Direction `json:"direction"`
	PlateNumber     string    `json:"plateNumber"`
	DriverName      string    `json:"driverName"`
	CargoType       string    `json:"cargoType"`
	PartyName       string    `json:"partyName"`
	Status          Status    `json:"status"`
	Operator        string    `json:"operator"`
	OperatorRole    Role      `json:"operatorRole"`
	FirstWeight     int64     `json:"firstWeight"`
	SecondWeight    int64     `json:"secondWeight,omitempty"`
	NetWeight       int64     `json:"netWeight,omitempty"`
}

// Completed reports whether the transaction reached its terminal state.
func (t *Transaction) Completed() bool {
	return t.Status == StatusCompleted
}

// Complete records the second weighing. It is the only legal mutation of a
// transaction and may happen exactly once.
func (t *Transaction) Complete(secondWeight int64, at time.Time) error {
	if t.Status == StatusCompleted {
		return fmt.Errorf("%w: %s", common.ErrAlreadyCompleted, t.TicketNumber)
	}
	t.SecondWeight = secondWeight
	t.SecondTimestamp = at
	t.NetWeight = absInt64(t.FirstWeight - secondWeight)
	t.Status = StatusCompleted
	return nil
}

// Bruto is the gross weight, the larger of the two captured weighings.
func (t *Transaction) Bruto() int64 {
	return maxInt64(t.FirstWeight, t.SecondWeight)
}

// Tara is the empty weight, the smaller of the two captured weighings.
func (t *Transaction) Tara() int64 {
	return minInt64(t.FirstWeight, t.SecondWeight)
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
