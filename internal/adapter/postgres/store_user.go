package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/billun/fleetcore/internal/domain"
	"github.com/billun/fleetcore/internal/domain/user"
)

const userColumns = `id, email, name, password_hash, role, company_id, enabled, temporary, created_at, updated_at`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var companyID *string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &companyID,
		&u.Enabled, &u.Temporary, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	if companyID != nil {
		u.CompanyID = *companyID
	}
	return u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	var companyID *string
	if u.CompanyID != "" {
		companyID = &u.CompanyID
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, name, password_hash, role, company_id, enabled, temporary)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, companyID, u.Enabled, u.Temporary,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %s: %w", u.Email, domain.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get user by email: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, u *user.User) error {
	var companyID *string
	if u.CompanyID != "" {
		companyID = &u.CompanyID
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email = $2, name = $3, password_hash = $4, role = $5,
		        company_id = $6, enabled = $7, temporary = $8, updated_at = now()
		 WHERE id = $1`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Role, companyID, u.Enabled, u.Temporary)
	if err != nil {
		return fmt.Errorf("update user %s: %w", u.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update user %s: %w", u.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context, companyID string) ([]user.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users WHERE company_id = $1 ORDER BY created_at ASC`, companyID)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// --- Refresh tokens ---

func (s *Store) CreateRefreshToken(ctx context.Context, rt *user.RefreshToken) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		rt.ID, rt.UserID, rt.TokenHash, rt.ExpiresAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, hash string) (*user.RefreshToken, error) {
	var rt user.RefreshToken
	err := s.pool.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at
		 FROM refresh_tokens WHERE token_hash = $1`, hash,
	).Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get refresh token: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &rt, nil
}

// RotateRefreshToken atomically deletes the old token and inserts the new one.
func (s *Store) RotateRefreshToken(ctx context.Context, oldID string, newRT *user.RefreshToken) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	tag, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, oldID)
	if err != nil {
		return fmt.Errorf("delete old refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Another request already rotated this token.
		return fmt.Errorf("rotate refresh token %s: %w", oldID, domain.ErrConflict)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at)
		 VALUES ($1, $2, $3, $4)`,
		newRT.ID, newRT.UserID, newRT.TokenHash, newRT.ExpiresAt)
	if err != nil {
		return fmt.Errorf("insert new refresh token: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *Store) DeleteRefreshToken(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (s *Store) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete refresh tokens for user %s: %w", userID, err)
	}
	return nil
}
