package postgres

import (
	"context"
	"fmt"

	"github.com/billun/fleetcore/internal/domain/anomaly"
)

func (s *Store) CreateAnomaly(ctx context.Context, a *anomaly.Anomaly) error {
	var partnershipID *string
	if a.PartnershipID != "" {
		partnershipID = &a.PartnershipID
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO anomalies
		   (id, equipment_id, reporter_company_id, description, severity, status,
		    reported_via_partnership, partnership_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		a.ID, a.EquipmentID, a.ReporterCompanyID, a.Description, a.Severity, a.Status,
		a.ReportedViaPartnership, partnershipID,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create anomaly: %w", err)
	}
	return nil
}

// ListAnomaliesForCompany returns anomalies on the company's own equipment
// plus reports the company filed on partner equipment.
func (s *Store) ListAnomaliesForCompany(ctx context.Context, companyID string) ([]anomaly.Anomaly, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.equipment_id, a.reporter_company_id, a.description, a.severity,
		        a.status, a.reported_via_partnership, a.partnership_id, a.created_at, a.updated_at
		 FROM anomalies a
		 JOIN equipment e ON e.id = a.equipment_id
		 WHERE e.company_id = $1 OR a.reporter_company_id = $1
		 ORDER BY a.created_at DESC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list anomalies for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var items []anomaly.Anomaly
	for rows.Next() {
		var a anomaly.Anomaly
		var partnershipID *string
		if err := rows.Scan(&a.ID, &a.EquipmentID, &a.ReporterCompanyID, &a.Description,
			&a.Severity, &a.Status, &a.ReportedViaPartnership, &partnershipID,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan anomaly: %w", err)
		}
		if partnershipID != nil {
			a.PartnershipID = *partnershipID
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
