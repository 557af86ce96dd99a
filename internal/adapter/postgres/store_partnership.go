package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/partnership"
	"github.com/billun/fleetcore/internal/port/database"
)

// partnershipColumns selects one directed record with joined company names.
const partnershipColumns = `
	p.id, p.initiator_id, p.partner_id, ci.name, cp.name, p.status,
	p.invitation_message, p.contact_name, p.contact_email, p.contact_phone,
	p.allow_reporting, p.allow_viewing, p.restricted_equipment_ids::text[],
	p.reports_received, p.reports_provided, p.last_activity,
	p.accepted_at, p.suspended_at, p.notes, p.created_at, p.updated_at`

const partnershipFrom = `
	FROM partnerships p
	JOIN companies ci ON ci.id = p.initiator_id
	JOIN companies cp ON cp.id = p.partner_id`

func scanPartnership(row pgx.Row) (partnership.Partnership, error) {
	var p partnership.Partnership
	err := row.Scan(&p.ID, &p.InitiatorID, &p.PartnerID, &p.InitiatorName, &p.PartnerName,
		&p.Status, &p.InvitationMessage,
		&p.ContactPerson.Name, &p.ContactPerson.Email, &p.ContactPerson.Phone,
		&p.EquipmentAccess.AllowReporting, &p.EquipmentAccess.AllowViewing,
		&p.EquipmentAccess.RestrictedEquipmentIDs,
		&p.Metrics.ReportsReceived, &p.Metrics.ReportsProvided, &p.Metrics.LastActivity,
		&p.AcceptedAt, &p.SuspendedAt, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreatePartnership inserts one directed record. The partial unique index on
// (initiator_id, partner_id) WHERE status <> 'declined' makes concurrent
// duplicate invitations fail here with ErrConflict.
func (s *Store) CreatePartnership(ctx context.Context, p *partnership.Partnership) error {
	restricted := p.EquipmentAccess.RestrictedEquipmentIDs
	if restricted == nil {
		restricted = []string{}
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO partnerships
		   (id, initiator_id, partner_id, status, invitation_message,
		    contact_name, contact_email, contact_phone,
		    allow_reporting, allow_viewing, restricted_equipment_ids, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::uuid[], $12)
		 RETURNING last_activity, created_at, updated_at`,
		p.ID, p.InitiatorID, p.PartnerID, p.Status, p.InvitationMessage,
		p.ContactPerson.Name, p.ContactPerson.Email, p.ContactPerson.Phone,
		p.EquipmentAccess.AllowReporting, p.EquipmentAccess.AllowViewing,
		restricted, p.Notes,
	).Scan(&p.Metrics.LastActivity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create partnership %s->%s: %w", p.InitiatorID, p.PartnerID, domain.ErrConflict)
		}
		return fmt.Errorf("create partnership: %w", err)
	}
	return nil
}

func (s *Store) GetPartnership(ctx context.Context, id string) (*partnership.Partnership, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+partnershipColumns+partnershipFrom+` WHERE p.id = $1`, id)

	p, err := scanPartnership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get partnership %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get partnership %s: %w", id, err)
	}
	return &p, nil
}

// FindDirected returns the non-declined record where initiatorID granted
// access to partnerID, or ErrNotFound.
func (s *Store) FindDirected(ctx context.Context, initiatorID, partnerID string) (*partnership.Partnership, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+partnershipColumns+partnershipFrom+`
		 WHERE p.initiator_id = $1 AND p.partner_id = $2 AND p.status <> 'declined'`,
		initiatorID, partnerID)

	p, err := scanPartnership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("find partnership %s->%s: %w", initiatorID, partnerID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find partnership %s->%s: %w", initiatorID, partnerID, err)
	}
	return &p, nil
}

// FindBetween returns any non-declined record between the two companies in
// either direction, or ErrNotFound. Used for duplicate-invitation checks.
func (s *Store) FindBetween(ctx context.Context, companyA, companyB string) (*partnership.Partnership, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+partnershipColumns+partnershipFrom+`
		 WHERE ((p.initiator_id = $1 AND p.partner_id = $2)
		     OR (p.initiator_id = $2 AND p.partner_id = $1))
		   AND p.status <> 'declined'
		 LIMIT 1`,
		companyA, companyB)

	p, err := scanPartnership(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("find partnership between %s and %s: %w", companyA, companyB, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("find partnership between %s and %s: %w", companyA, companyB, err)
	}
	return &p, nil
}

// ListPartnershipsForCompany returns all directed records where the company
// is initiator or partner, newest first, optionally filtered by status.
func (s *Store) ListPartnershipsForCompany(ctx context.Context, companyID string, status partnership.Status) ([]partnership.Partnership, error) {
	query := `SELECT ` + partnershipColumns + partnershipFrom + `
		 WHERE (p.initiator_id = $1 OR p.partner_id = $1)`
	args := []any{companyID}
	if status != "" {
		query += ` AND p.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY p.created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list partnerships for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var items []partnership.Partnership
	for rows.Next() {
		p, err := scanPartnership(rows)
		if err != nil {
			return nil, fmt.Errorf("scan partnership: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// UpdatePartnershipStatus applies a status transition to one directed record.
func (s *Store) UpdatePartnershipStatus(ctx context.Context, id string, upd database.StatusUpdate) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE partnerships
		 SET status = $2,
		     accepted_at = COALESCE($3, accepted_at),
		     suspended_at = COALESCE($4, suspended_at),
		     updated_at = now()
		 WHERE id = $1`,
		id, upd.Status, upd.AcceptedAt, upd.SuspendedAt)
	if err != nil {
		return fmt.Errorf("update partnership %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update partnership %s status: %w", id, domain.ErrNotFound)
	}
	return nil
}

// IncrementPartnershipMetrics bumps the report counters on one directed
// record and refreshes last_activity.
func (s *Store) IncrementPartnershipMetrics(ctx context.Context, id string, receivedDelta, providedDelta int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE partnerships
		 SET reports_received = reports_received + $2,
		     reports_provided = reports_provided + $3,
		     last_activity = now(),
		     updated_at = now()
		 WHERE id = $1`,
		id, receivedDelta, providedDelta)
	if err != nil {
		return fmt.Errorf("increment partnership %s metrics: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("increment partnership %s metrics: %w", id, domain.ErrNotFound)
	}
	return nil
}
