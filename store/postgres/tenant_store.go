package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/tenant-auth-server/tenants"
	"github.com/rs/zerolog/log"
)

// TenantStore implements tenants.Repo using PostgreSQL.
type TenantStore struct {
	pool *pgxpool.Pool
}

var _ tenants.Repo = (*TenantStore)(nil)

func NewTenantStore(pool *pgxpool.Pool) *TenantStore {
	return &TenantStore{pool: pool}
}

func (s *TenantStore) Create(ctx context.Context, tenant *tenants.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO tenants (id, slug, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, tenant.ID, tenant.Slug, tenant.Name, tenant.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create tenant: %w", mapPostgresError(err))
	}

	log.Debug().Str("tenant_id", tenant.ID).Str("slug", tenant.Slug).Msg("Created tenant")
	return nil
}

func (s *TenantStore) Get(ctx context.Context, tenantID string) (*tenants.Tenant, error) {
	return s.getOne(ctx, `SELECT id, slug, name, created_at FROM tenants WHERE id = $1`, tenantID)
}

func (s *TenantStore) GetBySlug(ctx context.Context, slug string) (*tenants.Tenant, error) {
	return s.getOne(ctx, `SELECT id, slug, name, created_at FROM tenants WHERE slug = $1`, slug)
}

func (s *TenantStore) getOne(ctx context.Context, query string, arg string) (*tenants.Tenant, error) {
	var t tenants.Tenant
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&t.ID, &t.Slug, &t.Name, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to get tenant: %w", mapPostgresError(err))
	}
	return &t, nil
}

func (s *TenantStore) List(ctx context.Context) ([]*tenants.Tenant, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, slug, name, created_at FROM tenants ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	var list []*tenants.Tenant
	for rows.Next() {
		var t tenants.Tenant
		if err := rows.Scan(&t.ID, &t.Slug, &t.Name, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		list = append(list, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}
	return list, nil
}
