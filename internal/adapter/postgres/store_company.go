package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/company"
)

func scanCompany(row pgx.Row) (company.Company, error) {
	var c company.Company
	var managerID *string
	err := row.Scan(&c.ID, &c.Name, &c.SIRET, &c.Status, &managerID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, err
	}
	if managerID != nil {
		c.MainManagerID = *managerID
	}
	return c, nil
}

func (s *Store) GetCompany(ctx context.Context, id string) (*company.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, siret, status, main_manager_id, created_at, updated_at
		 FROM companies WHERE id = $1`, id)

	c, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get company %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get company %s: %w", id, err)
	}
	return &c, nil
}

func (s *Store) GetCompanyByName(ctx context.Context, name string) (*company.Company, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, name, siret, status, main_manager_id, created_at, updated_at
		 FROM companies WHERE name = $1`, name)

	c, err := scanCompany(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get company %q: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get company %q: %w", name, err)
	}
	return &c, nil
}

func (s *Store) CreateCompany(ctx context.Context, c *company.Company) error {
	var managerID *string
	if c.MainManagerID != "" {
		managerID = &c.MainManagerID
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO companies (id, name, siret, status, main_manager_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at, updated_at`,
		c.ID, c.Name, c.SIRET, c.Status, managerID,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create company %q: %w", c.Name, domain.ErrConflict)
		}
		return fmt.Errorf("create company: %w", err)
	}
	return nil
}

func (s *Store) UpdateCompany(ctx context.Context, c *company.Company) error {
	var managerID *string
	if c.MainManagerID != "" {
		managerID = &c.MainManagerID
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE companies SET name = $2, siret = $3, status = $4, main_manager_id = $5, updated_at = now()
		 WHERE id = $1`,
		c.ID, c.Name, c.SIRET, c.Status, managerID)
	if err != nil {
		return fmt.Errorf("update company %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update company %s: %w", c.ID, domain.ErrNotFound)
	}
	return nil
}
