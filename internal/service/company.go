package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/company"
	"github.com/billun/fleetcore/internal/domain/user"
	"github.com/billun/fleetcore/internal/port/database"
)

// CompanyService manages the company directory, including placeholder
// provisioning for invited partners that have not onboarded yet.
type CompanyService struct {
	store      database.Store
	bcryptCost int
	log        *slog.Logger
}

// NewCompanyService creates a new company service.
func NewCompanyService(store database.Store, bcryptCost int, log *slog.Logger) *CompanyService {
	return &CompanyService{store: store, bcryptCost: bcryptCost, log: log}
}

// Get returns a company by ID.
func (s *CompanyService) Get(ctx context.Context, id string) (*company.Company, error) {
	return s.store.GetCompany(ctx, id)
}

// Create registers a new active company.
func (s *CompanyService) Create(ctx context.Context, req *company.CreateRequest) (*company.Company, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	c := &company.Company{
		ID:     uuid.NewString(),
		Name:   req.Name,
		SIRET:  req.SIRET,
		Status: company.StatusActive,
	}

	if err := s.store.CreateCompany(ctx, c); err != nil {
		return nil, fmt.Errorf("create company: %w", err)
	}
	return c, nil
}

// ResolveOrProvision returns the company with the given name, creating a
// placeholder when it does not exist yet. The placeholder gets a disabled
// temporary manager account tied to the invitation contact so the invited
// company has a login to activate later.
func (s *CompanyService) ResolveOrProvision(ctx context.Context, name, siret string, contact user.CreateRequest) (*company.Company, error) {
	c, err := s.store.GetCompanyByName(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("lookup company: %w", err)
	}

	c = &company.Company{
		ID:     uuid.NewString(),
		Name:   name,
		SIRET:  siret,
		Status: company.StatusPendingPartnership,
	}
	if err := s.store.CreateCompany(ctx, c); err != nil {
		return nil, fmt.Errorf("provision company: %w", err)
	}

	u, err := s.provisionContact(ctx, c.ID, contact)
	if err != nil {
		return nil, err
	}

	c.MainManagerID = u.ID
	if err := s.store.UpdateCompany(ctx, c); err != nil {
		return nil, fmt.Errorf("set main manager: %w", err)
	}

	s.log.Info("provisioned placeholder company",
		"company_id", c.ID, "name", c.Name, "manager_id", u.ID)
	return c, nil
}

// provisionContact creates a disabled temporary manager user for a
// placeholder company. The password is random and unusable until an
// activation flow resets it.
func (s *CompanyService) provisionContact(ctx context.Context, companyID string, contact user.CreateRequest) (*user.User, error) {
	randomPass, err := generateRandomToken(24)
	if err != nil {
		return nil, fmt.Errorf("generate password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(randomPass), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        contact.Email,
		Name:         contact.Name,
		PasswordHash: string(hash),
		Role:         user.RoleManager,
		CompanyID:    companyID,
		Enabled:      false,
		Temporary:    true,
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("provision contact user: %w", err)
	}
	return u, nil
}
