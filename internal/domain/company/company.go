// Package company defines the company directory domain model.
package company

import (
	"errors"
	"time"
)

// Status represents the onboarding state of a company.
type Status string

const (
	// StatusActive is a fully onboarded company.
	StatusActive Status = "active"
	// StatusPendingPartnership marks a placeholder company provisioned while
	// inviting a partner that has not yet onboarded itself.
	StatusPendingPartnership Status = "pending_partnership"
	// StatusSuspended is an administratively disabled company.
	StatusSuspended Status = "suspended"
)

// Company represents a registered fleet operator.
type Company struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	SIRET         string    `json:"siret,omitempty"`
	Status        Status    `json:"status"`
	MainManagerID string    `json:"main_manager_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Provisional reports whether the company is a placeholder created during a
// partnership invitation and has not activated its account yet.
func (c *Company) Provisional() bool {
	return c.Status == StatusPendingPartnership
}

// CreateRequest holds the fields needed to register a company.
type CreateRequest struct {
	Name  string `json:"name"`
	SIRET string `json:"siret,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return errors.New("company name is required")
	}
	return nil
}
