package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/rs/zerolog/log"
)

const userColumns = `id, tenant_id, email, name, password_hash, role, provider, created_at`

// UserStore implements users.Repo using PostgreSQL.
type UserStore struct {
	pool *pgxpool.Pool
}

var _ users.Repo = (*UserStore)(nil)

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Create inserts the user and its membership in one transaction
func (s *UserStore) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (`+userColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`,
			user.ID,
			user.TenantID,
			user.Email,
			user.Name,
			user.PasswordHash,
			user.Role,
			user.Provider,
			user.CreatedAt,
		)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO memberships (id, tenant_id, user_id, role, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), user.TenantID, user.ID, membershipRole(user), user.CreatedAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapPostgresError(err))
	}

	log.Debug().Str("user_id", user.ID).Str("tenant_id", user.TenantID).Msg("Created user")
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*users.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStore) GetByEmail(ctx context.Context, tenantID, email string) (*users.User, error) {
	return s.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE tenant_id = $1 AND email = $2`, tenantID, email)
}

func (s *UserStore) getOne(ctx context.Context, query string, args ...any) (*users.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapPostgresError(err))
	}
	return u, nil
}

func (s *UserStore) UpdatePasswordHash(ctx context.Context, tenantID, email, passwordHash string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE users SET password_hash = $3
		WHERE tenant_id = $1 AND email = $2
	`, tenantID, email, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdateName(ctx context.Context, id, name string) error {
	result, err := s.pool.Exec(ctx, `UPDATE users SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("failed to update name: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *UserStore) List(ctx context.Context) ([]*users.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var list []*users.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		list = append(list, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return list, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var u users.User
	err := row.Scan(
		&u.ID,
		&u.TenantID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.Provider,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// membershipRole is the role granted alongside a new account
func membershipRole(user *users.User) users.RoleType {
	if user.Role == "" {
		return users.RoleUser
	}
	return user.Role
}
