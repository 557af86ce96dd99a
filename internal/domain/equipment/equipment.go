// Package equipment defines the equipment registry domain model.
package equipment

import (
	"errors"
	"time"
)

// Type categorizes a piece of equipment.
type Type string

const (
	TypeVehicle   Type = "vehicle"
	TypeTrailer   Type = "trailer"
	TypeMachine   Type = "machine"
	TypeContainer Type = "container"
)

// Status is the operational state of a piece of equipment.
type Status string

const (
	StatusOperational Status = "operational"
	StatusMaintenance Status = "maintenance"
	StatusOutOfOrder  Status = "out_of_order"
)

// Equipment represents a vehicle or piece of equipment owned by a company.
type Equipment struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	Name         string    `json:"name"`
	Type         Type      `json:"type"`
	InternalID   string    `json:"internal_id,omitempty"`
	LicensePlate string    `json:"license_plate,omitempty"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PartnerEquipment is an equipment record surfaced across a tenant boundary.
// The same equipment may appear once per partnership it is visible through,
// since access rules differ per partnership.
type PartnerEquipment struct {
	Equipment
	PartnershipID  string `json:"partnership_id"`
	PartnerCompany string `json:"partner_company"`
}

// CreateRequest holds the fields needed to register equipment.
type CreateRequest struct {
	Name         string `json:"name"`
	Type         Type   `json:"type"`
	InternalID   string `json:"internal_id,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("equipment name is required")
	}
	switch r.Type {
	case TypeVehicle, TypeTrailer, TypeMachine, TypeContainer:
	default:
		return errors.New("invalid equipment type")
	}
	return nil
}
