// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/billun/fleetcore/internal/domain/anomaly"
	"github.com/billun/fleetcore/internal/domain/company"
	"github.com/billun/fleetcore/internal/domain/equipment"
	"github.com/billun/fleetcore/internal/domain/partnership"
	"github.com/billun/fleetcore/internal/domain/user"
)

// StatusUpdate is a partial update applied to one directed partnership
// record. Nil timestamp fields are left untouched.
type StatusUpdate struct {
	Status      partnership.Status
	AcceptedAt  *time.Time
	SuspendedAt *time.Time
}

// Store is the port interface for database operations.
type Store interface {
	// Companies
	GetCompany(ctx context.Context, id string) (*company.Company, error)
	GetCompanyByName(ctx context.Context, name string) (*company.Company, error)
	CreateCompany(ctx context.Context, c *company.Company) error
	UpdateCompany(ctx context.Context, c *company.Company) error

	// Users
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error
	ListUsers(ctx context.Context, companyID string) ([]user.User, error)

	// Refresh tokens
	CreateRefreshToken(ctx context.Context, rt *user.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*user.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID string, newRT *user.RefreshToken) error
	DeleteRefreshToken(ctx context.Context, id string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error

	// Equipment
	CreateEquipment(ctx context.Context, e *equipment.Equipment) error
	GetEquipment(ctx context.Context, id string) (*equipment.Equipment, error)
	ListEquipmentByCompany(ctx context.Context, companyID string, excludeIDs []string) ([]equipment.Equipment, error)
	CountEquipmentByCompany(ctx context.Context, companyID string) (int, error)

	// Partnerships. Records are directed: one row per direction, and the
	// store never writes both directions in one call — paired consistency
	// is the lifecycle manager's job.
	CreatePartnership(ctx context.Context, p *partnership.Partnership) error
	GetPartnership(ctx context.Context, id string) (*partnership.Partnership, error)
	FindDirected(ctx context.Context, initiatorID, partnerID string) (*partnership.Partnership, error)
	FindBetween(ctx context.Context, companyA, companyB string) (*partnership.Partnership, error)
	ListPartnershipsForCompany(ctx context.Context, companyID string, status partnership.Status) ([]partnership.Partnership, error)
	UpdatePartnershipStatus(ctx context.Context, id string, upd StatusUpdate) error
	IncrementPartnershipMetrics(ctx context.Context, id string, receivedDelta, providedDelta int) error

	// Anomalies
	CreateAnomaly(ctx context.Context, a *anomaly.Anomaly) error
	ListAnomaliesForCompany(ctx context.Context, companyID string) ([]anomaly.Anomaly, error)
}
