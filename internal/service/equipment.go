package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/equipment"
	"github.com/billun/fleetcore/internal/port/database"
)

// EquipmentService manages a company's own equipment registry. Cross-tenant
// visibility is the access resolver's job, not this service's.
type EquipmentService struct {
	store database.Store
}

// NewEquipmentService creates a new equipment service.
func NewEquipmentService(store database.Store) *EquipmentService {
	return &EquipmentService{store: store}
}

// Create registers a piece of equipment owned by the given company.
func (s *EquipmentService) Create(ctx context.Context, companyID string, req *equipment.CreateRequest) (*equipment.Equipment, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	e := &equipment.Equipment{
		ID:           uuid.NewString(),
		CompanyID:    companyID,
		Name:         req.Name,
		Type:         req.Type,
		InternalID:   req.InternalID,
		LicensePlate: req.LicensePlate,
		Status:       equipment.StatusOperational,
	}

	if err := s.store.CreateEquipment(ctx, e); err != nil {
		return nil, fmt.Errorf("create equipment: %w", err)
	}
	return e, nil
}

// Get returns one piece of equipment, restricted to its owning company.
func (s *EquipmentService) Get(ctx context.Context, companyID, id string) (*equipment.Equipment, error) {
	e, err := s.store.GetEquipment(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get equipment: %w", err)
	}
	if e.CompanyID != companyID {
		return nil, fmt.Errorf("%w: equipment belongs to another company", domain.ErrForbidden)
	}
	return e, nil
}

// List returns all equipment owned by the company.
func (s *EquipmentService) List(ctx context.Context, companyID string) ([]equipment.Equipment, error) {
	return s.store.ListEquipmentByCompany(ctx, companyID, nil)
}
