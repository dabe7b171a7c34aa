package resets

import (
	"context"
	"time"
)

// PasswordResetToken authorises one password change for an email within a tenant
type PasswordResetToken struct {
	ID        string
	Token     string
	TenantID  string
	Email     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token can no longer be redeemed at now
func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

type Repo interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	Get(ctx context.Context, token string) (*PasswordResetToken, error)
	// Delete removes the token, failing with errors.ErrNotFound if another caller removed it first
	Delete(ctx context.Context, token string) error
	DeleteByEmail(ctx context.Context, tenantID, email string) error
}
