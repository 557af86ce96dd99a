// Package anomaly defines the anomaly report domain model.
package anomaly

import (
	"errors"
	"time"
)

// Severity grades how urgent an anomaly is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Status is the handling state of an anomaly report.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
)

// Anomaly is a reported defect on a piece of equipment. Reports filed by a
// partner company carry the partnership they were authorized through.
type Anomaly struct {
	ID                     string    `json:"id"`
	EquipmentID            string    `json:"equipment_id"`
	ReporterCompanyID      string    `json:"reporter_company_id"`
	Description            string    `json:"description"`
	Severity               Severity  `json:"severity"`
	Status                 Status    `json:"status"`
	ReportedViaPartnership bool      `json:"reported_via_partnership"`
	PartnershipID          string    `json:"partnership_id,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// PartnerReportRequest is the input for filing an anomaly via a partnership.
type PartnerReportRequest struct {
	EquipmentID   string   `json:"equipment_id"`
	PartnershipID string   `json:"partnership_id"`
	Description   string   `json:"description"`
	Severity      Severity `json:"severity"`
}

// Validate checks that the PartnerReportRequest has all required fields.
func (r *PartnerReportRequest) Validate() error {
	if r.EquipmentID == "" {
		return errors.New("equipment_id is required")
	}
	if r.PartnershipID == "" {
		return errors.New("partnership_id is required")
	}
	if r.Description == "" {
		return errors.New("description is required")
	}
	switch r.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		return errors.New("invalid severity")
	}
	return nil
}
