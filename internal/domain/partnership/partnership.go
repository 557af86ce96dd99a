// Package partnership defines the cross-company partnership domain model.
//
// A relationship between two companies is stored as two directed records,
// one per direction. Each directed record encodes the equipment access that
// its initiator grants to its partner, so access rules stay asymmetric:
// A may grant viewing to B while B grants nothing to A.
package partnership

import (
	"errors"
	"net/mail"
	"time"
)

// Status is the lifecycle state of a directed partnership record.
type Status string

const (
	// StatusPending is the initial state of both directed records.
	StatusPending Status = "pending"
	// StatusAccepted means the invited side accepted; both directions move
	// to accepted in lockstep.
	StatusAccepted Status = "accepted"
	// StatusDeclined is terminal. A fresh invitation creates new records.
	StatusDeclined Status = "declined"
	// StatusSuspended means the initiator side unilaterally paused outbound
	// sharing. The reverse record is intentionally left untouched.
	StatusSuspended Status = "suspended"
)

// ValidStatuses is the set of all valid partnership statuses.
var ValidStatuses = map[Status]bool{
	StatusPending:   true,
	StatusAccepted:  true,
	StatusDeclined:  true,
	StatusSuspended: true,
}

// ContactPerson is the invitation contact, not an identity credential.
type ContactPerson struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// EquipmentAccess controls what the partner company may do with the
// initiator company's equipment on this directed record.
type EquipmentAccess struct {
	AllowReporting         bool     `json:"allow_reporting"`
	AllowViewing           bool     `json:"allow_viewing"`
	RestrictedEquipmentIDs []string `json:"restricted_equipment_ids"`
}

// DefaultAccess grants viewing and reporting with no restrictions.
func DefaultAccess() EquipmentAccess {
	return EquipmentAccess{AllowReporting: true, AllowViewing: true}
}

// Restricted reports whether the given equipment ID is excluded from sharing.
func (a EquipmentAccess) Restricted(equipmentID string) bool {
	for _, id := range a.RestrictedEquipmentIDs {
		if id == equipmentID {
			return true
		}
	}
	return false
}

// Metrics counts cross-tenant anomaly report activity on a directed record.
type Metrics struct {
	ReportsReceived int       `json:"reports_received"`
	ReportsProvided int       `json:"reports_provided"`
	LastActivity    time.Time `json:"last_activity"`
}

// Partnership is one directed half of a company-to-company relationship.
type Partnership struct {
	ID                string          `json:"id"`
	InitiatorID       string          `json:"initiator_id"`
	PartnerID         string          `json:"partner_id"`
	InitiatorName     string          `json:"initiator_name,omitempty"`
	PartnerName       string          `json:"partner_name,omitempty"`
	Status            Status          `json:"status"`
	InvitationMessage string          `json:"invitation_message,omitempty"`
	ContactPerson     ContactPerson   `json:"contact_person"`
	EquipmentAccess   EquipmentAccess `json:"equipment_access"`
	Metrics           Metrics         `json:"metrics"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	AcceptedAt        *time.Time      `json:"accepted_at,omitempty"`
	SuspendedAt       *time.Time      `json:"suspended_at,omitempty"`
	Notes             string          `json:"notes,omitempty"`
}

// OtherParty returns the company on the opposite side of the record from
// companyID, and whether companyID is a party at all.
func (p *Partnership) OtherParty(companyID string) (string, bool) {
	switch companyID {
	case p.InitiatorID:
		return p.PartnerID, true
	case p.PartnerID:
		return p.InitiatorID, true
	}
	return "", false
}

// InviteRequest is the input for sending a partnership invitation.
type InviteRequest struct {
	TargetCompanyName string           `json:"targetCompanyName"`
	ContactName       string           `json:"contactName"`
	ContactEmail      string           `json:"contactEmail"`
	ContactPhone      string           `json:"contactPhone,omitempty"`
	SIRET             string           `json:"siret,omitempty"`
	Message           string           `json:"message,omitempty"`
	EquipmentAccess   *EquipmentAccess `json:"equipmentAccess,omitempty"`
}

// Validate checks that the InviteRequest has all required fields.
func (r *InviteRequest) Validate() error {
	if r.TargetCompanyName == "" {
		return errors.New("targetCompanyName is required")
	}
	if r.ContactName == "" {
		return errors.New("contactName is required")
	}
	if r.ContactEmail == "" {
		return errors.New("contactEmail is required")
	}
	if _, err := mail.ParseAddress(r.ContactEmail); err != nil {
		return errors.New("invalid contactEmail format")
	}
	return nil
}

// Access returns the equipment access rules from the request, falling back
// to the default grant when none were provided.
func (r *InviteRequest) Access() EquipmentAccess {
	if r.EquipmentAccess == nil {
		return DefaultAccess()
	}
	return *r.EquipmentAccess
}

// Stats summarizes partnership activity for one company.
type Stats struct {
	ActivePartnerships   int `json:"active_partnerships"`
	PendingInvitations   int `json:"pending_invitations"`
	SentInvitations      int `json:"sent_invitations"`
	TotalSharedEquipment int `json:"total_shared_equipment"`
}
