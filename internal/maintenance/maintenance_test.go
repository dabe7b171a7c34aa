package maintenance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jrsteele09/tenant-auth-server/internal/maintenance"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	membershiprepofake "github.com/jrsteele09/tenant-auth-server/memberships/repofake"
	tenantrepofakes "github.com/jrsteele09/tenant-auth-server/tenants/repofakes"
	"github.com/jrsteele09/tenant-auth-server/users"
	fakeuserrepo "github.com/jrsteele09/tenant-auth-server/users/repofake"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	memberRepo *membershiprepofake.FakeMembershipRepo
	userRepo   *fakeuserrepo.FakeUserRepo
}

func setupTestFixture() *testFixture {
	memberRepo := membershiprepofake.NewFakeMembershipRepo()
	return &testFixture{
		memberRepo: memberRepo,
		userRepo:   fakeuserrepo.NewFakeUserRepo(memberRepo),
	}
}

// legacy inserts a user the way accounts were stored before memberships existed
func (f *testFixture) legacy(email string, role users.RoleType, createdAt time.Time) *users.User {
	u := &users.User{TenantID: "t1", Email: email, Role: role, CreatedAt: createdAt}
	f.userRepo.Insert(u)
	return u
}

// failingMembers refuses every create
type failingMembers struct {
	memberships.Repo
}

func (failingMembers) Create(context.Context, *memberships.Membership) error {
	return errors.New("database unavailable")
}

func TestSeedTenant(t *testing.T) {
	ctx := context.Background()
	repo := tenantrepofakes.NewFakeTenantRepo()

	tenant, created, err := maintenance.SeedTenant(ctx, repo, "acme", "Acme Corp")
	require.NoError(t, err)
	require.True(t, created)
	require.NotEmpty(t, tenant.ID)
	require.Equal(t, "Acme Corp", tenant.Name)

	t.Run("existing slug is returned unchanged", func(t *testing.T) {
		again, created, err := maintenance.SeedTenant(ctx, repo, "acme", "Other")
		require.NoError(t, err)
		require.False(t, created)
		require.Equal(t, tenant.ID, again.ID)
		require.Equal(t, "Acme Corp", again.Name)
	})

	t.Run("name defaults to slug", func(t *testing.T) {
		tenant, created, err := maintenance.SeedTenant(ctx, repo, "globex", " ")
		require.NoError(t, err)
		require.True(t, created)
		require.Equal(t, "globex", tenant.Name)
	})

	t.Run("invalid slug", func(t *testing.T) {
		_, _, err := maintenance.SeedTenant(ctx, repo, "Not A Slug", "")
		require.Error(t, err)
	})
}

func TestBackfillMemberships(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture()
	now := time.Now()
	owner := f.legacy("owner@x.com", users.RoleOwner, now)
	blank := f.legacy("blank@x.com", "", now.Add(time.Second))
	require.NoError(t, f.userRepo.Create(ctx, &users.User{TenantID: "t1", Email: "new@x.com", Role: users.RoleAdmin, CreatedAt: now.Add(2 * time.Second)}))

	t.Run("dry run changes nothing", func(t *testing.T) {
		report, err := maintenance.BackfillMemberships(ctx, f.userRepo, f.memberRepo, true)
		require.NoError(t, err)
		require.Equal(t, maintenance.Report{Scanned: 3, Updated: 2, Skipped: 1}, report)

		list, err := f.memberRepo.ListByTenant(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("creates missing memberships with the legacy role", func(t *testing.T) {
		report, err := maintenance.BackfillMemberships(ctx, f.userRepo, f.memberRepo, false)
		require.NoError(t, err)
		require.Equal(t, maintenance.Report{Scanned: 3, Updated: 2, Skipped: 1}, report)

		m, err := f.memberRepo.GetByTenantUser(ctx, "t1", owner.ID)
		require.NoError(t, err)
		require.Equal(t, users.RoleOwner, m.Role)

		m, err = f.memberRepo.GetByTenantUser(ctx, "t1", blank.ID)
		require.NoError(t, err)
		require.Equal(t, users.RoleUser, m.Role)
	})

	t.Run("rerun is a no-op", func(t *testing.T) {
		report, err := maintenance.BackfillMemberships(ctx, f.userRepo, f.memberRepo, false)
		require.NoError(t, err)
		require.Equal(t, maintenance.Report{Scanned: 3, Skipped: 3}, report)
	})
}

func TestBackfillMembershipsContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture()
	f.legacy("a@x.com", users.RoleUser, time.Now())
	f.legacy("b@x.com", users.RoleUser, time.Now().Add(time.Second))

	report, err := maintenance.BackfillMemberships(ctx, f.userRepo, failingMembers{Repo: f.memberRepo}, false)
	require.NoError(t, err)
	require.Equal(t, maintenance.Report{Scanned: 2, Failed: 2}, report)
}

func TestBackfillNames(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture()
	unnamed := f.legacy("grace.hopper@x.com", users.RoleUser, time.Now())
	named := &users.User{TenantID: "t1", Email: "ada@x.com", Name: "Ada", CreatedAt: time.Now().Add(time.Second)}
	f.userRepo.Insert(named)

	report, err := maintenance.BackfillNames(ctx, f.userRepo, true)
	require.NoError(t, err)
	require.Equal(t, maintenance.Report{Scanned: 2, Updated: 1, Skipped: 1}, report)
	u, err := f.userRepo.GetByID(ctx, unnamed.ID)
	require.NoError(t, err)
	require.Empty(t, u.Name)

	report, err = maintenance.BackfillNames(ctx, f.userRepo, false)
	require.NoError(t, err)
	require.Equal(t, maintenance.Report{Scanned: 2, Updated: 1, Skipped: 1}, report)

	u, err = f.userRepo.GetByID(ctx, unnamed.ID)
	require.NoError(t, err)
	require.Equal(t, "grace.hopper", u.Name)
	u, err = f.userRepo.GetByID(ctx, named.ID)
	require.NoError(t, err)
	require.Equal(t, "Ada", u.Name)
}
