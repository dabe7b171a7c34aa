package membershiprepofake

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	"github.com/jrsteele09/tenant-auth-server/users"
)

var _ memberships.Repo = (*FakeMembershipRepo)(nil)

type FakeMembershipRepo struct {
	members   map[string]*memberships.Membership
	tenantIDs map[string]string // tenantID/userID to membership id
	lock      sync.RWMutex
}

func NewFakeMembershipRepo() *FakeMembershipRepo {
	return &FakeMembershipRepo{
		members:   make(map[string]*memberships.Membership),
		tenantIDs: make(map[string]string),
	}
}

func tenantUserKey(tenantID, userID string) string {
	return tenantID + "/" + userID
}

func (mr *FakeMembershipRepo) Create(_ context.Context, membership *memberships.Membership) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	key := tenantUserKey(membership.TenantID, membership.UserID)
	if _, ok := mr.tenantIDs[key]; ok {
		return apperrors.ErrDuplicate
	}
	if membership.ID == "" {
		membership.ID = uuid.New().String()
	}
	if membership.CreatedAt.IsZero() {
		membership.CreatedAt = time.Now()
	}
	stored := *membership
	mr.members[membership.ID] = &stored
	mr.tenantIDs[key] = membership.ID
	return nil
}

func (mr *FakeMembershipRepo) Get(_ context.Context, id string) (*memberships.Membership, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()
	m, ok := mr.members[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (mr *FakeMembershipRepo) GetByTenantUser(ctx context.Context, tenantID, userID string) (*memberships.Membership, error) {
	mr.lock.RLock()
	id, ok := mr.tenantIDs[tenantUserKey(tenantID, userID)]
	mr.lock.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return mr.Get(ctx, id)
}

func (mr *FakeMembershipRepo) UpdateRole(_ context.Context, id string, role users.RoleType) (*memberships.Membership, error) {
	mr.lock.Lock()
	defer mr.lock.Unlock()
	m, ok := mr.members[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	m.Role = role
	cp := *m
	return &cp, nil
}

func (mr *FakeMembershipRepo) Delete(_ context.Context, id string) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()
	m, ok := mr.members[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	delete(mr.tenantIDs, tenantUserKey(m.TenantID, m.UserID))
	delete(mr.members, id)
	return nil
}

func (mr *FakeMembershipRepo) ListByTenant(_ context.Context, tenantID string) ([]*memberships.Membership, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	list := make([]*memberships.Membership, 0)
	for _, m := range mr.members {
		if m.TenantID != tenantID {
			continue
		}
		cp := *m
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
