package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/equipment"
)

const equipmentColumns = `id, company_id, name, type, internal_id, license_plate, status, created_at, updated_at`

func scanEquipment(row pgx.Row) (equipment.Equipment, error) {
	var e equipment.Equipment
	err := row.Scan(&e.ID, &e.CompanyID, &e.Name, &e.Type, &e.InternalID,
		&e.LicensePlate, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (s *Store) CreateEquipment(ctx context.Context, e *equipment.Equipment) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO equipment (id, company_id, name, type, internal_id, license_plate, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at, updated_at`,
		e.ID, e.CompanyID, e.Name, e.Type, e.InternalID, e.LicensePlate, e.Status,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create equipment: %w", err)
	}
	return nil
}

func (s *Store) GetEquipment(ctx context.Context, id string) (*equipment.Equipment, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+equipmentColumns+` FROM equipment WHERE id = $1`, id)

	e, err := scanEquipment(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get equipment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get equipment %s: %w", id, err)
	}
	return &e, nil
}

// ListEquipmentByCompany returns all equipment owned by a company, excluding
// the given IDs. Used by the access resolver to apply restriction lists.
func (s *Store) ListEquipmentByCompany(ctx context.Context, companyID string, excludeIDs []string) ([]equipment.Equipment, error) {
	if excludeIDs == nil {
		excludeIDs = []string{}
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+equipmentColumns+` FROM equipment
		 WHERE company_id = $1 AND NOT (id = ANY($2::uuid[]))
		 ORDER BY created_at ASC`,
		companyID, excludeIDs)
	if err != nil {
		return nil, fmt.Errorf("list equipment for company %s: %w", companyID, err)
	}
	defer rows.Close()

	var items []equipment.Equipment
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

func (s *Store) CountEquipmentByCompany(ctx context.Context, companyID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM equipment WHERE company_id = $1`, companyID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count equipment for company %s: %w", companyID, err)
	}
	return n, nil
}
