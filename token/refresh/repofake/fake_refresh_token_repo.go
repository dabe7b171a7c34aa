package refreshrepofake

import (
	"context"
	"sync"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/token/refresh"
)

var _ refresh.Repo = (*FakeRefreshTokenRepo)(nil)

type FakeRefreshTokenRepo struct {
	tokens map[string]*refresh.StoredRefreshToken
	lock   sync.RWMutex
}

func NewFakeRefreshTokenRepo() *FakeRefreshTokenRepo {
	return &FakeRefreshTokenRepo{
		tokens: make(map[string]*refresh.StoredRefreshToken),
	}
}

func (tr *FakeRefreshTokenRepo) Create(_ context.Context, refreshToken *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	return tr.insert(refreshToken)
}

// insert must be called with the lock held
func (tr *FakeRefreshTokenRepo) insert(refreshToken *refresh.StoredRefreshToken) error {
	if _, ok := tr.tokens[refreshToken.Token]; ok {
		return apperrors.ErrDuplicate
	}
	stored := *refreshToken
	tr.tokens[refreshToken.Token] = &stored
	return nil
}

func (tr *FakeRefreshTokenRepo) Get(_ context.Context, token string) (*refresh.StoredRefreshToken, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	rt, ok := tr.tokens[token]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (tr *FakeRefreshTokenRepo) Delete(_ context.Context, token string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if _, ok := tr.tokens[token]; !ok {
		return apperrors.ErrNotFound
	}
	delete(tr.tokens, token)
	return nil
}

func (tr *FakeRefreshTokenRepo) DeleteByUserID(_ context.Context, userID string) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	for k, rt := range tr.tokens {
		if rt.UserID == userID {
			delete(tr.tokens, k)
		}
	}
	return nil
}

func (tr *FakeRefreshTokenRepo) Replace(_ context.Context, next *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if existing, ok := tr.tokens[next.Token]; ok && existing.UserID != next.UserID {
		return apperrors.ErrDuplicate
	}
	for k, rt := range tr.tokens {
		if rt.UserID == next.UserID {
			delete(tr.tokens, k)
		}
	}
	return tr.insert(next)
}

func (tr *FakeRefreshTokenRepo) Rotate(_ context.Context, oldToken string, next *refresh.StoredRefreshToken) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()
	if _, ok := tr.tokens[oldToken]; !ok {
		return apperrors.ErrNotFound
	}
	if err := tr.insert(next); err != nil {
		return err
	}
	delete(tr.tokens, oldToken)
	return nil
}

// Count returns the number of stored tokens for userID
func (tr *FakeRefreshTokenRepo) Count(userID string) int {
	tr.lock.RLock()
	defer tr.lock.RUnlock()
	n := 0
	for _, rt := range tr.tokens {
		if rt.UserID == userID {
			n++
		}
	}
	return n
}
