package memberships

import (
	"context"
	"time"

	"github.com/jrsteele09/tenant-auth-server/users"
)

// Membership grants a user a role within a tenant. (TenantID, UserID) is unique.
type Membership struct {
	ID        string         `json:"id"`
	TenantID  string         `json:"tenantId"`
	UserID    string         `json:"userId"`
	Role      users.RoleType `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (m *Membership) IsOwner() bool {
	return m.Role == users.RoleOwner
}

type Repo interface {
	// Create fails with errors.ErrDuplicate when the user is already a member of the tenant
	Create(ctx context.Context, membership *Membership) error
	Get(ctx context.Context, id string) (*Membership, error)
	GetByTenantUser(ctx context.Context, tenantID, userID string) (*Membership, error)
	UpdateRole(ctx context.Context, id string, role users.RoleType) (*Membership, error)
	Delete(ctx context.Context, id string) error
	ListByTenant(ctx context.Context, tenantID string) ([]*Membership, error)
}
