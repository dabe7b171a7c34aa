package session_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/tenant-auth-server/internal/config"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/token"
	"github.com/jrsteele09/tenant-auth-server/token/refresh"
	refreshrepofake "github.com/jrsteele09/tenant-auth-server/token/refresh/repofake"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/stretchr/testify/require"
)

var testIdentity = token.Identity{
	UserID:   "user-1",
	Email:    "a@x.com",
	TenantID: "tenant-1",
	Role:     users.RoleUser,
}

type testFixture struct {
	now     time.Time
	repo    *refreshrepofake.FakeRefreshTokenRepo
	manager *session.Manager
}

func (f *testFixture) Now() time.Time {
	return f.now
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{
		now:  time.Now(),
		repo: refreshrepofake.NewFakeRefreshTokenRepo(),
	}
	codec, err := token.NewCodec(
		token.NewHMACSigner("access-secret-at-least-32-bytes-long!!"),
		token.NewHMACSigner("refresh-secret-at-least-32-bytes-long!"),
		15*time.Minute,
		token.WithNowTime(f.Now),
	)
	require.NoError(t, err)

	f.manager, err = session.NewManager(codec, f.repo, config.Security{SecureCookies: true}, session.WithNowTime(f.Now))
	require.NoError(t, err)
	return f
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestCreateSetsCookieLifetimes(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		rememberMe    bool
		refreshMaxAge int
	}{
		{rememberMe: false, refreshMaxAge: 604800},
		{rememberMe: true, refreshMaxAge: 2592000},
	}
	for _, tc := range cases {
		f := setupTestFixture(t)
		s, err := f.manager.Create(ctx, testIdentity, tc.rememberMe)
		require.NoError(t, err)

		cookies := s.Cookies(f.manager.SecureCookies())
		access := cookieByName(cookies, session.AccessCookieName)
		refreshCookie := cookieByName(cookies, session.RefreshCookieName)
		require.NotNil(t, access)
		require.NotNil(t, refreshCookie)

		require.Equal(t, 900, access.MaxAge)
		require.Equal(t, tc.refreshMaxAge, refreshCookie.MaxAge)
		for _, c := range cookies {
			require.True(t, c.HttpOnly)
			require.True(t, c.Secure)
			require.Equal(t, http.SameSiteStrictMode, c.SameSite)
			require.Equal(t, "/", c.Path)
		}
	}
}

func TestCreateRevokesPreviousSessions(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	first, err := f.manager.Create(ctx, testIdentity, false)
	require.NoError(t, err)
	second, err := f.manager.Create(ctx, testIdentity, false)
	require.NoError(t, err)

	require.Equal(t, 1, f.repo.Count(testIdentity.UserID))
	_, err = f.manager.Rotate(ctx, first.RefreshToken)
	require.ErrorIs(t, err, session.ErrRefreshTokenNotRecognized)
	_, err = f.manager.Rotate(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestConcurrentLoginsLeaveOneSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.manager.Create(ctx, testIdentity, false)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, f.repo.Count(testIdentity.UserID))
}

func TestRotate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.manager.Rotate(ctx, "")
		require.ErrorIs(t, err, session.ErrMissingRefreshToken)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.manager.Rotate(ctx, "garbage")
		require.ErrorIs(t, err, session.ErrInvalidRefreshToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		f := setupTestFixture(t)
		s, err := f.manager.Create(ctx, testIdentity, false)
		require.NoError(t, err)
		_, err = f.manager.Rotate(ctx, s.AccessToken)
		require.ErrorIs(t, err, session.ErrInvalidRefreshToken)
	})

	t.Run("rotated token cannot be reused", func(t *testing.T) {
		f := setupTestFixture(t)
		original, err := f.manager.Create(ctx, testIdentity, false)
		require.NoError(t, err)

		rotated, err := f.manager.Rotate(ctx, original.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, original.RefreshToken, rotated.RefreshToken)

		_, err = f.manager.Rotate(ctx, original.RefreshToken)
		require.ErrorIs(t, err, session.ErrRefreshTokenNotRecognized)
		require.Equal(t, 1, f.repo.Count(testIdentity.UserID))
	})

	t.Run("revoked token is not recognized", func(t *testing.T) {
		f := setupTestFixture(t)
		s, err := f.manager.Create(ctx, testIdentity, false)
		require.NoError(t, err)
		require.NoError(t, f.manager.Revoke(ctx, s.RefreshToken))

		_, err = f.manager.Rotate(ctx, s.RefreshToken)
		require.ErrorIs(t, err, session.ErrRefreshTokenNotRecognized)
	})

	t.Run("expired token", func(t *testing.T) {
		f := setupTestFixture(t)
		s, err := f.manager.Create(ctx, testIdentity, false)
		require.NoError(t, err)

		f.now = f.now.Add(7*24*time.Hour + time.Second)
		_, err = f.manager.Rotate(ctx, s.RefreshToken)
		require.ErrorIs(t, err, session.ErrInvalidRefreshToken)
	})

	t.Run("stored expiry is enforced", func(t *testing.T) {
		f := setupTestFixture(t)
		s, err := f.manager.Create(ctx, testIdentity, false)
		require.NoError(t, err)

		require.NoError(t, f.repo.Delete(ctx, s.RefreshToken))
		require.NoError(t, f.repo.Create(ctx, &refresh.StoredRefreshToken{
			Token:     s.RefreshToken,
			UserID:    testIdentity.UserID,
			CreatedAt: f.now,
			ExpiresAt: f.now.Add(time.Hour),
		}))

		f.now = f.now.Add(time.Hour + time.Second)
		_, err = f.manager.Rotate(ctx, s.RefreshToken)
		require.ErrorIs(t, err, session.ErrRefreshTokenExpired)
		require.Zero(t, f.repo.Count(testIdentity.UserID))
	})

	t.Run("rotation keeps remember me lifetime", func(t *testing.T) {
		f := setupTestFixture(t)
		s, err := f.manager.Create(ctx, testIdentity, true)
		require.NoError(t, err)

		rotated, err := f.manager.Rotate(ctx, s.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, 30*24*time.Hour, rotated.RefreshLifetime)

		f2 := setupTestFixture(t)
		s, err = f2.manager.Create(ctx, testIdentity, false)
		require.NoError(t, err)
		rotated, err = f2.manager.Rotate(ctx, s.RefreshToken)
		require.NoError(t, err)
		require.Equal(t, 7*24*time.Hour, rotated.RefreshLifetime)
	})
}

func TestRevokeIgnoresUnknownTokens(t *testing.T) {
	f := setupTestFixture(t)
	require.NoError(t, f.manager.Revoke(context.Background(), "unknown"))
	require.NoError(t, f.manager.Revoke(context.Background(), ""))
}

func TestClearCookies(t *testing.T) {
	cookies := session.ClearCookies(true)
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		require.Empty(t, c.Value)
		require.Less(t, c.MaxAge, 0)
	}
}
