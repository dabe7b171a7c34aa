package resetrepofake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/resets"
)

var _ resets.Repo = (*FakeResetRepo)(nil)

type FakeResetRepo struct {
	tokens map[string]*resets.PasswordResetToken
	lock   sync.RWMutex
}

func NewFakeResetRepo() *FakeResetRepo {
	return &FakeResetRepo{
		tokens: make(map[string]*resets.PasswordResetToken),
	}
}

func (rr *FakeResetRepo) Create(_ context.Context, token *resets.PasswordResetToken) error {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	if _, ok := rr.tokens[token.Token]; ok {
		return apperrors.ErrDuplicate
	}
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}
	stored := *token
	rr.tokens[token.Token] = &stored
	return nil
}

func (rr *FakeResetRepo) Get(_ context.Context, token string) (*resets.PasswordResetToken, error) {
	rr.lock.RLock()
	defer rr.lock.RUnlock()
	t, ok := rr.tokens[token]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (rr *FakeResetRepo) Delete(_ context.Context, token string) error {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	if _, ok := rr.tokens[token]; !ok {
		return apperrors.ErrNotFound
	}
	delete(rr.tokens, token)
	return nil
}

func (rr *FakeResetRepo) DeleteByEmail(_ context.Context, tenantID, email string) error {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	for k, t := range rr.tokens {
		if t.TenantID == tenantID && t.Email == email {
			delete(rr.tokens, k)
		}
	}
	return nil
}

// Put overwrites a stored token, letting tests control expiry
func (rr *FakeResetRepo) Put(token *resets.PasswordResetToken) {
	rr.lock.Lock()
	defer rr.lock.Unlock()
	stored := *token
	rr.tokens[token.Token] = &stored
}
