package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Stores bundles every repository backed by one pool
type Stores struct {
	Pool          *pgxpool.Pool
	Tenants       *TenantStore
	Users         *UserStore
	Memberships   *MembershipStore
	Projects      *ProjectStore
	RefreshTokens *RefreshTokenStore
	Resets        *ResetStore
}

func NewStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Pool:          pool,
		Tenants:       NewTenantStore(pool),
		Users:         NewUserStore(pool),
		Memberships:   NewMembershipStore(pool),
		Projects:      NewProjectStore(pool),
		RefreshTokens: NewRefreshTokenStore(pool),
		Resets:        NewResetStore(pool),
	}
}

// Open connects, optionally migrates, and returns the stores
func Open(ctx context.Context, connString string, autoMigrate bool) (*Stores, error) {
	pool, err := NewPool(ctx, &PoolConfig{ConnString: connString})
	if err != nil {
		return nil, err
	}
	if autoMigrate {
		if err := RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return NewStores(pool), nil
}

func (s *Stores) Close() {
	s.Pool.Close()
}
