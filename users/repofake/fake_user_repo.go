package fakeuserrepo

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

var _ users.Repo = (*FakeUserRepo)(nil)

type FakeUserRepo struct {
	users    map[string]*users.User
	emailIds map[string]string // tenantID/email to user id
	members  memberships.Repo
	lock     sync.RWMutex
}

// NewFakeUserRepo creates an in-memory user repo that provisions memberships in members
func NewFakeUserRepo(members memberships.Repo) *FakeUserRepo {
	return &FakeUserRepo{
		users:    make(map[string]*users.User),
		emailIds: make(map[string]string),
		members:  members,
	}
}

func emailKey(tenantID, email string) string {
	return tenantID + "/" + email
}

func (ur *FakeUserRepo) Create(ctx context.Context, user *users.User) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	key := emailKey(user.TenantID, user.Email)
	if _, ok := ur.emailIds[key]; ok {
		return apperrors.ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	role := user.Role
	if role == "" {
		role = users.RoleUser
	}
	if err := ur.members.Create(ctx, &memberships.Membership{
		TenantID: user.TenantID,
		UserID:   user.ID,
		Role:     role,
	}); err != nil {
		return err
	}

	stored := *user
	ur.users[user.ID] = &stored
	ur.emailIds[key] = user.ID
	return nil
}

func (ur *FakeUserRepo) GetByID(_ context.Context, id string) (*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	u, ok := ur.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (ur *FakeUserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*users.User, error) {
	ur.lock.RLock()
	id, ok := ur.emailIds[emailKey(tenantID, email)]
	ur.lock.RUnlock()
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return ur.GetByID(ctx, id)
}

func (ur *FakeUserRepo) UpdatePasswordHash(_ context.Context, tenantID, email, passwordHash string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	id, ok := ur.emailIds[emailKey(tenantID, email)]
	if !ok {
		return apperrors.ErrNotFound
	}
	ur.users[id].PasswordHash = passwordHash
	return nil
}

func (ur *FakeUserRepo) UpdateName(_ context.Context, id, name string) error {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	u, ok := ur.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.Name = name
	return nil
}

func (ur *FakeUserRepo) List(_ context.Context) ([]*users.User, error) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	userList := make([]*users.User, 0, len(ur.users))
	for _, v := range ur.users {
		cp := *v
		userList = append(userList, &cp)
	}
	sort.Slice(userList, func(i, j int) bool {
		return userList[i].CreatedAt.Before(userList[j].CreatedAt)
	})
	return userList, nil
}

// Insert stores a user without provisioning a membership, reproducing accounts created before memberships existed
func (ur *FakeUserRepo) Insert(user *users.User) {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	stored := *user
	ur.users[user.ID] = &stored
	ur.emailIds[emailKey(user.TenantID, user.Email)] = user.ID
}
