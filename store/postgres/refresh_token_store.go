package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/token/refresh"
)

// RefreshTokenStore implements refresh.Repo using PostgreSQL.
type RefreshTokenStore struct {
	pool *pgxpool.Pool
}

var _ refresh.Repo = (*RefreshTokenStore)(nil)

func NewRefreshTokenStore(pool *pgxpool.Pool) *RefreshTokenStore {
	return &RefreshTokenStore{pool: pool}
}

func (s *RefreshTokenStore) Create(ctx context.Context, rt *refresh.StoredRefreshToken) error {
	if err := insertRefreshToken(ctx, s.pool, rt); err != nil {
		return fmt.Errorf("failed to create refresh token: %w", mapPostgresError(err))
	}
	return nil
}

func (s *RefreshTokenStore) Get(ctx context.Context, token string) (*refresh.StoredRefreshToken, error) {
	var rt refresh.StoredRefreshToken
	err := s.pool.QueryRow(ctx, `
		SELECT token, user_id, expires_at, created_at
		FROM refresh_tokens
		WHERE token = $1
	`, token).Scan(&rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", mapPostgresError(err))
	}
	return &rt, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, token string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *RefreshTokenStore) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	return nil
}

// Replace revokes the user's tokens and inserts next in one transaction. A transaction scoped advisory
// lock on the user id serialises concurrent logins, which would otherwise both see no rows to delete.
func (s *RefreshTokenStore) Replace(ctx context.Context, next *refresh.StoredRefreshToken) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, next.UserID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, next.UserID); err != nil {
			return err
		}
		return insertRefreshToken(ctx, tx, next)
	})
	if err != nil {
		return fmt.Errorf("failed to replace refresh tokens: %w", mapPostgresError(err))
	}
	return nil
}

// Rotate deletes the old row and inserts the new one in a single transaction.
// Two concurrent rotations of the same token serialise on the row lock; the loser sees no row.
func (s *RefreshTokenStore) Rotate(ctx context.Context, oldToken string, next *refresh.StoredRefreshToken) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		return insertRefreshToken(ctx, tx, next)
	})
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", mapPostgresError(err))
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func insertRefreshToken(ctx context.Context, db execer, rt *refresh.StoredRefreshToken) error {
	if rt.CreatedAt.IsZero() {
		rt.CreatedAt = time.Now()
	}
	_, err := db.Exec(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)
	`, rt.Token, rt.UserID, rt.ExpiresAt, rt.CreatedAt)
	return err
}
