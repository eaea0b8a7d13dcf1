package model

import (
	"fmt"
	"strings"

	"github.com/example/weighbridge/internal/common"
)

// Role is the authorization level of an operator.
type Role string

// Operator roles. MASTER unlocks master data, configuration and reset.
const (
	RoleMaster   Role = "MASTER"
	RoleOperator Role = "OPERATOR"
)

// Party is a supplier or customer reference entry.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

// Operator is a terminal user identified by a 4-digit PIN.
type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	PIN  string `json:"pin"`
	Role Role   `json:"role"`
}

// MasterData holds the small reference lists the terminal works against.
type MasterData struct {
	Suppliers  []Party    `json:"suppliers"`
	Customers  []Party    `json:"customers"`
	CargoTypes []string   `json:"cargoTypes"`
	Operators  []Operator `json:"operators"`
}

// DefaultMasterData returns the built-in reference lists used on first run.
func DefaultMasterData() MasterData {
	return MasterData{
		Suppliers: []Party{
			{Name: "CV SUMBER ALAM JAYA", Address: "Jl. Lintas Sumatera KM 12", Contact: "0812-3456-7890"},
		},
		Customers: []Party{
			{Name: "PT BANGUN INDUSTRI NUSANTARA", Address: "Kawasan Industri Jababeka", Contact: "021-998877"},
		},
		CargoTypes: []string{
			"SAWIT (FFB)", "CPO (CRUDE PALM OIL)", "PK (PALM KERNEL)", "CANGKANG", "LIMBAH (EFB)", "PUPUK",
		},
		Operators: []Operator{
			{ID: "master-admin", Name: "SUPERVISOR", PIN: "0000", Role: RoleMaster},
			{ID: "op-01", Name: "OPERATOR 1", PIN: "1234", Role: RoleOperator},
		},
	}
}

// OperatorByPIN looks up the operator registered under pin.
func (m *MasterData) OperatorByPIN(pin string) (*Operator, error) {
	if err := ValidatePIN(pin); err != nil {
		return nil, err
	}
	for i := range m.Operators {
		if m.Operators[i].PIN == pin {
			return &m.Operators[i], nil
		}
	}
	return nil, common.ErrInvalidPIN
}

// ValidatePIN checks the 4-digit PIN convention.
func ValidatePIN(pin string) error {
	if len(pin) != 4 {
		return common.ErrPINFormat
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return common.ErrPINFormat
		}
	}
	return nil
}

// NormalizeName applies the uppercase-on-input convention used across the
// terminal for plates, names and cargo types.
func NormalizeName(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// PartiesFor returns the counterparty list relevant to a trade direction:
// customers for outbound sales, suppliers for inbound purchases.
func (m *MasterData) PartiesFor(d Direction) []Party {
	if d == DirectionInbound {
		return m.Suppliers
	}
	return m.Customers
}

// AddParty appends a supplier or customer, rejecting duplicates by name.
func addParty(list []Party, name string) ([]Party, error) {
	name = NormalizeName(name)
	if name == "" {
		return list, fmt.Errorf("%w: party name is empty", common.ErrInvalidConfig)
	}
	for _, p := range list {
		if p.Name == name {
			return list, fmt.Errorf("%w: %s", common.ErrDuplicateEntry, name)
		}
	}
	return append(list, Party{Name: name, Address: "-", Contact: "-"}), nil
}

// AddSupplier registers a new supplier by name.
func (m *MasterData) AddSupplier(name string) error {
	list, err := addParty(m.Suppliers, name)
	if err != nil {
		return err
	}
	m.Suppliers = list
	return nil
}

// AddCustomer registers a new customer by name.
func (m *MasterData) AddCustomer(name string) error {
	list, err := addParty(m.Customers, name)
	if err != nil {
		return err
	}
	m.Customers = list
	return nil
}

// AddCargoType registers a new cargo type. Duplicates are ignored silently,
// matching free-text tolerance for cargo.
func (m *MasterData) AddCargoType(name string) {
	name = NormalizeName(name)
	if name == "" {
		return
	}
	for _, c := range m.CargoTypes {
		if c == name {
			return
		}
	}
	m.CargoTypes = append(m.CargoTypes, name)
}

// AddOperator registers a new operator with a 4-digit PIN.
func (m *MasterData) AddOperator(id, name, pin string) error {
	if err := ValidatePIN(pin); err != nil {
		return err
	}
	name = NormalizeName(name)
	if name == "" {
		return fmt.Errorf("%w: operator name is empty", common.ErrInvalidConfig)
	}
	m.Operators = append(m.Operators, Operator{ID: id, Name: name, PIN: pin, Role: RoleOperator})
	return nil
}

// RemoveOperator deletes an operator by id. The MASTER operator cannot be
// removed, so the terminal always keeps at least one privileged login.
func (m *MasterData) RemoveOperator(id string) error {
	for i, op := range m.Operators {
		if op.ID != id {
			continue
		}
		if op.Role == RoleMaster {
			return fmt.Errorf("%w: cannot remove master operator", common.ErrInvalidConfig)
		}
		m.Operators = append(m.Operators[:i], m.Operators[i+1:]...)
		return nil
	}
	return common.ErrNotFound
}
