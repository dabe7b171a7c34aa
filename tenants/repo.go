package tenants

import "context"

// Repo persists tenants. Lookups return errors.ErrNotFound from internal/errors when absent.
type Repo interface {
	Create(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, tenantID string) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
}
