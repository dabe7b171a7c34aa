package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken is the server side record of an issued refresh token.
// A token is only honoured while its row exists, which makes refresh tokens revocable.
type StoredRefreshToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Lifetime is the duration the token was issued for
func (t *StoredRefreshToken) Lifetime() time.Duration {
	return t.ExpiresAt.Sub(t.CreatedAt)
}

// Repo persists refresh tokens. Token values are unique; Create fails with errors.ErrDuplicate on collision.
type Repo interface {
	Create(ctx context.Context, refreshToken *StoredRefreshToken) error
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
	// Replace deletes every token of next.UserID and stores next as one unit of work.
	// Concurrent replacements for the same user leave exactly one token.
	Replace(ctx context.Context, next *StoredRefreshToken) error
	// Rotate deletes oldToken and stores next as one unit of work.
	// It fails with errors.ErrNotFound, storing nothing, if oldToken no longer exists.
	Rotate(ctx context.Context, oldToken string, next *StoredRefreshToken) error
}
