package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	"github.com/jrsteele09/tenant-auth-server/users"
)

const membershipColumns = `id, tenant_id, user_id, role, created_at`

// MembershipStore implements memberships.Repo using PostgreSQL.
type MembershipStore struct {
	pool *pgxpool.Pool
}

var _ memberships.Repo = (*MembershipStore)(nil)

func NewMembershipStore(pool *pgxpool.Pool) *MembershipStore {
	return &MembershipStore{pool: pool}
}

func (s *MembershipStore) Create(ctx context.Context, m *memberships.Membership) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO memberships (`+membershipColumns+`)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.TenantID, m.UserID, m.Role, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create membership: %w", mapPostgresError(err))
	}
	return nil
}

func (s *MembershipStore) Get(ctx context.Context, id string) (*memberships.Membership, error) {
	return s.getOne(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE id = $1`, id)
}

func (s *MembershipStore) GetByTenantUser(ctx context.Context, tenantID, userID string) (*memberships.Membership, error) {
	return s.getOne(ctx, `SELECT `+membershipColumns+` FROM memberships WHERE tenant_id = $1 AND user_id = $2`, tenantID, userID)
}

func (s *MembershipStore) getOne(ctx context.Context, query string, args ...any) (*memberships.Membership, error) {
	m, err := scanMembership(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", mapPostgresError(err))
	}
	return m, nil
}

func (s *MembershipStore) UpdateRole(ctx context.Context, id string, role users.RoleType) (*memberships.Membership, error) {
	m, err := scanMembership(s.pool.QueryRow(ctx, `
		UPDATE memberships SET role = $2
		WHERE id = $1
		RETURNING `+membershipColumns, id, role))
	if err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", mapPostgresError(err))
	}
	return m, nil
}

func (s *MembershipStore) Delete(ctx context.Context, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM memberships WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete membership: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *MembershipStore) ListByTenant(ctx context.Context, tenantID string) ([]*memberships.Membership, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+membershipColumns+` FROM memberships
		WHERE tenant_id = $1
		ORDER BY created_at
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	defer rows.Close()

	var list []*memberships.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating memberships: %w", err)
	}
	return list, nil
}

func scanMembership(row pgx.Row) (*memberships.Membership, error) {
	var m memberships.Membership
	if err := row.Scan(&m.ID, &m.TenantID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}
