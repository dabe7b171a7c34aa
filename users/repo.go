package users

import "context"

type Repo interface {
	// Create stores the user and, in the same unit of work, a membership in user.TenantID with user.Role.
	// A second user with the same tenant and email fails with errors.ErrDuplicate.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
	UpdatePasswordHash(ctx context.Context, tenantID, email, passwordHash string) error
	UpdateName(ctx context.Context, id, name string) error
	List(ctx context.Context) ([]*User, error)
}
