package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/resets"
)

// ResetStore implements resets.Repo using PostgreSQL.
type ResetStore struct {
	pool *pgxpool.Pool
}

var _ resets.Repo = (*ResetStore)(nil)

func NewResetStore(pool *pgxpool.Pool) *ResetStore {
	return &ResetStore{pool: pool}
}

func (s *ResetStore) Create(ctx context.Context, t *resets.PasswordResetToken) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (id, token, tenant_id, email, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, t.ID, t.Token, t.TenantID, t.Email, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reset token: %w", mapPostgresError(err))
	}
	return nil
}

func (s *ResetStore) Get(ctx context.Context, token string) (*resets.PasswordResetToken, error) {
	var t resets.PasswordResetToken
	err := s.pool.QueryRow(ctx, `
		SELECT id, token, tenant_id, email, expires_at, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`, token).Scan(&t.ID, &t.Token, &t.TenantID, &t.Email, &t.ExpiresAt, &t.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get reset token: %w", mapPostgresError(err))
	}
	return &t, nil
}

func (s *ResetStore) Delete(ctx context.Context, token string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete reset token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *ResetStore) DeleteByEmail(ctx context.Context, tenantID, email string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE tenant_id = $1 AND email = $2`, tenantID, email)
	if err != nil {
		return fmt.Errorf("failed to delete reset tokens: %w", err)
	}
	return nil
}
