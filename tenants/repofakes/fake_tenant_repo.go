package tenantrepofakes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	tenants map[string]*tenants.Tenant
	slugIDs map[string]string // slug to tenant id
	lock    sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		tenants: make(map[string]*tenants.Tenant),
		slugIDs: make(map[string]string),
	}
}

func (tr *FakeTenantRepo) Create(_ context.Context, tenant *tenants.Tenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.slugIDs[tenant.Slug]; ok {
		return apperrors.ErrDuplicate
	}
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}
	stored := *tenant
	tr.tenants[tenant.ID] = &stored
	tr.slugIDs[tenant.Slug] = tenant.ID
	return nil
}

func (tr *FakeTenantRepo) Get(_ context.Context, tenantID string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	tenant, ok := tr.tenants[tenantID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *tenant
	return &cp, nil
}

func (tr *FakeTenantRepo) GetBySlug(ctx context.Context, slug string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	id, ok := tr.slugIDs[slug]
	tr.lock.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return tr.Get(ctx, id)
}

func (tr *FakeTenantRepo) List(_ context.Context) ([]*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	list := make([]*tenants.Tenant, 0, len(tr.tenants))
	for _, t := range tr.tenants {
		cp := *t
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Slug < list[j].Slug
	})
	return list, nil
}
