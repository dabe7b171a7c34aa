package auth_test

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/tenant-auth-server/auth"
	"github.com/jrsteele09/tenant-auth-server/internal/config"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/magiclink"
	"github.com/jrsteele09/tenant-auth-server/mail"
	membershiprepofake "github.com/jrsteele09/tenant-auth-server/memberships/repofake"
	"github.com/jrsteele09/tenant-auth-server/resets"
	resetrepofake "github.com/jrsteele09/tenant-auth-server/resets/repofake"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/tenants"
	tenantrepofakes "github.com/jrsteele09/tenant-auth-server/tenants/repofakes"
	"github.com/jrsteele09/tenant-auth-server/token"
	refreshrepofake "github.com/jrsteele09/tenant-auth-server/token/refresh/repofake"
	"github.com/jrsteele09/tenant-auth-server/users"
	fakeuserrepo "github.com/jrsteele09/tenant-auth-server/users/repofake"
	"github.com/stretchr/testify/require"
)

const (
	testTenantSlug   = "acme"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "password123"
	testAppURL       = "https://app.example.com"
)

var tokenPattern = regexp.MustCompile(`token=([0-9a-f]{64})`)

type testConfig struct {
	config.EnvVars
	config.Security
}

// recordingMailer keeps every delivered message
type recordingMailer struct {
	lock sync.Mutex
	fail bool
	sent []mail.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.lock.Lock()
	defer m.lock.Unlock()
	require.NotEmpty(t, m.sent)
	match := tokenPattern.FindStringSubmatch(m.sent[len(m.sent)-1].HTML)
	require.Len(t, match, 2)
	return match[1]
}

// fakeProvider stands in for Google
type fakeProvider struct {
	profile *auth.Profile
	err     error
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (*auth.Profile, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.profile, nil
}

// testFixture holds all test dependencies
type testFixture struct {
	now         time.Time
	tenant      *tenants.Tenant
	config      *testConfig
	tenantRepo  *tenantrepofakes.FakeTenantRepo
	userRepo    *fakeuserrepo.FakeUserRepo
	memberRepo  *membershiprepofake.FakeMembershipRepo
	resetRepo   *resetrepofake.FakeResetRepo
	refreshRepo *refreshrepofake.FakeRefreshTokenRepo
	codec       *token.Codec
	mailer      *recordingMailer
	dispatcher  *mail.Dispatcher
	provider    *fakeProvider
	service     *auth.Service
	authorizer  *auth.Authorizer
}

func (f *testFixture) Now() time.Time {
	return f.now
}

// setupTestFixture creates a new test fixture with all dependencies
func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	ctx := context.Background()

	f := &testFixture{
		now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		config: &testConfig{
			EnvVars:  config.EnvVars{AppName: "Acme", AppURL: testAppURL},
			Security: config.Security{StrictEnumerationProtection: true, SecureCookies: true},
		},
		tenantRepo:  tenantrepofakes.NewFakeTenantRepo(),
		memberRepo:  membershiprepofake.NewFakeMembershipRepo(),
		resetRepo:   resetrepofake.NewFakeResetRepo(),
		refreshRepo: refreshrepofake.NewFakeRefreshTokenRepo(),
		mailer:      &recordingMailer{},
		provider:    &fakeProvider{profile: &auth.Profile{Email: "Grace@Example.com", Name: "Grace"}},
	}
	f.userRepo = fakeuserrepo.NewFakeUserRepo(f.memberRepo)
	f.dispatcher = mail.NewDispatcher(f.mailer, time.Second, 1)

	f.tenant = &tenants.Tenant{Slug: testTenantSlug, Name: "Acme"}
	require.NoError(t, f.tenantRepo.Create(ctx, f.tenant))

	var err error
	f.codec, err = token.NewCodec(
		token.NewHMACSigner("access-secret-at-least-32-bytes-long!!"),
		token.NewHMACSigner("refresh-secret-at-least-32-bytes-long!"),
		15*time.Minute,
		token.WithNowTime(f.Now),
	)
	require.NoError(t, err)

	sessions, err := session.NewManager(f.codec, f.refreshRepo, f.config, session.WithNowTime(f.Now))
	require.NoError(t, err)

	f.service, err = auth.NewService(
		auth.Repos{
			Tenants:     f.tenantRepo,
			Users:       f.userRepo,
			Memberships: f.memberRepo,
			Resets:      f.resetRepo,
		},
		sessions,
		magiclink.NewMemoryStore(f.Now),
		f.dispatcher,
		f.config,
		auth.WithNowTime(f.Now),
		auth.WithIdentityProvider(f.provider),
	)
	require.NoError(t, err)

	f.authorizer, err = auth.NewAuthorizer(f.codec, f.tenantRepo, f.memberRepo)
	require.NoError(t, err)
	return f
}

// registerUser creates a credentials account in the fixture tenant
func (f *testFixture) registerUser(t *testing.T, email string) *users.User {
	t.Helper()
	u, err := f.service.Register(context.Background(), testTenantSlug, email, testUserPassword, "")
	require.NoError(t, err)
	return u
}

func requireKind(t *testing.T, err error, target *apperrors.Error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.Is(err, target), "expected %q, got %v", target.Message, err)
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := auth.NewService(auth.Repos{}, nil, nil, nil, nil)
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with membership", func(t *testing.T) {
		f := setupTestFixture(t)
		u, err := f.service.Register(ctx, testTenantSlug, "  John.Doe@Example.com ", testUserPassword, "")
		require.NoError(t, err)
		require.Equal(t, testUserEmail, u.Email)
		require.Equal(t, "john.doe", u.Name)
		require.Equal(t, users.RoleUser, u.Role)
		require.Equal(t, users.ProviderCredentials, u.Provider)

		m, err := f.memberRepo.GetByTenantUser(ctx, f.tenant.ID, u.ID)
		require.NoError(t, err)
		require.Equal(t, users.RoleUser, m.Role)
		require.Zero(t, f.refreshRepo.Count(u.ID))
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)
		_, err := f.service.Register(ctx, testTenantSlug, testUserEmail, testUserPassword, "")
		requireKind(t, err, auth.ErrEmailTaken)
		require.Equal(t, 400, apperrors.KindOf(err).HTTPStatus())
	})

	t.Run("validation", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.Register(ctx, testTenantSlug, "", testUserPassword, "")
		requireKind(t, err, auth.ErrEmailAndPasswordRequired)
		_, err = f.service.Register(ctx, testTenantSlug, "not-an-email", testUserPassword, "")
		requireKind(t, err, auth.ErrInvalidEmail)
		_, err = f.service.Register(ctx, testTenantSlug, testUserEmail, "short", "")
		requireKind(t, err, auth.ErrWeakPassword)
		_, err = f.service.Register(ctx, testTenantSlug, testUserEmail, strings.Repeat("a", 80), "")
		requireKind(t, err, auth.ErrPasswordTooLong)
		require.Equal(t, 400, apperrors.KindOf(err).HTTPStatus())
		_, err = f.service.Register(ctx, "missing", testUserEmail, testUserPassword, "")
		requireKind(t, err, auth.ErrTenantNotFound)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	u := f.registerUser(t, testUserEmail)

	t.Run("success", func(t *testing.T) {
		res, err := f.service.Login(ctx, testTenantSlug, testUserEmail, testUserPassword, false)
		require.NoError(t, err)
		require.Equal(t, u.ID, res.User.ID)
		require.Equal(t, 7*24*time.Hour, res.Session.RefreshLifetime)

		claims, err := f.codec.VerifyAccess(res.Session.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.UserID)
		require.Equal(t, f.tenant.ID, claims.TenantID)
	})

	t.Run("remember me", func(t *testing.T) {
		res, err := f.service.Login(ctx, testTenantSlug, testUserEmail, testUserPassword, true)
		require.NoError(t, err)
		require.Equal(t, 30*24*time.Hour, res.Session.RefreshLifetime)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		_, errUnknown := f.service.Login(ctx, testTenantSlug, "nobody@example.com", testUserPassword, false)
		_, errWrong := f.service.Login(ctx, testTenantSlug, testUserEmail, "wrong-password", false)
		requireKind(t, errUnknown, auth.ErrInvalidCredentials)
		requireKind(t, errWrong, auth.ErrInvalidCredentials)
		require.Equal(t, apperrors.PublicMessage(errUnknown), apperrors.PublicMessage(errWrong))
	})

	t.Run("unknown tenant", func(t *testing.T) {
		_, err := f.service.Login(ctx, "nope", testUserEmail, testUserPassword, false)
		requireKind(t, err, auth.ErrTenantNotFound)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.service.Login(ctx, testTenantSlug, testUserEmail, "", false)
		requireKind(t, err, auth.ErrEmailAndPasswordRequired)
	})

	t.Run("federated account has no password", func(t *testing.T) {
		f.userRepo.Insert(&users.User{TenantID: f.tenant.ID, Email: "fed@example.com", Provider: users.ProviderGoogle})
		_, err := f.service.Login(ctx, testTenantSlug, "fed@example.com", "", false)
		requireKind(t, err, auth.ErrEmailAndPasswordRequired)
		_, err = f.service.Login(ctx, testTenantSlug, "fed@example.com", testUserPassword, false)
		requireKind(t, err, auth.ErrInvalidCredentials)
	})
}

func TestLoginThenMe(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	u := f.registerUser(t, testUserEmail)

	res, err := f.service.Login(ctx, testTenantSlug, testUserEmail, testUserPassword, false)
	require.NoError(t, err)

	claims, err := f.authorizer.Verify(res.Session.AccessToken)
	require.NoError(t, err)
	me, err := f.service.Me(ctx, claims, testTenantSlug)
	require.NoError(t, err)
	require.Equal(t, u.ID, me.ID)
}

func TestLoginRevokesPreviousSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	f.registerUser(t, testUserEmail)

	first, err := f.service.Login(ctx, testTenantSlug, testUserEmail, testUserPassword, false)
	require.NoError(t, err)
	_, err = f.service.Login(ctx, testTenantSlug, testUserEmail, testUserPassword, false)
	require.NoError(t, err)

	_, err = f.service.Refresh(ctx, first.Session.RefreshToken)
	requireKind(t, err, session.ErrRefreshTokenNotRecognized)
}

func TestRefreshAndLogout(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	u := f.registerUser(t, testUserEmail)

	res, err := f.service.Login(ctx, testTenantSlug, testUserEmail, testUserPassword, true)
	require.NoError(t, err)

	rotated, err := f.service.Refresh(ctx, res.Session.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, res.Session.RefreshToken, rotated.RefreshToken)
	require.Equal(t, 30*24*time.Hour, rotated.RefreshLifetime)

	_, err = f.service.Refresh(ctx, res.Session.RefreshToken)
	requireKind(t, err, session.ErrRefreshTokenNotRecognized)

	require.NoError(t, f.service.Logout(ctx, rotated.RefreshToken))
	require.Zero(t, f.refreshRepo.Count(u.ID))
	require.NoError(t, f.service.Logout(ctx, rotated.RefreshToken))
	require.NoError(t, f.service.Logout(ctx, ""))
}

func TestMagicLink(t *testing.T) {
	ctx := context.Background()

	t.Run("request and redeem once", func(t *testing.T) {
		f := setupTestFixture(t)
		u := f.registerUser(t, testUserEmail)

		msg, err := f.service.RequestMagicLink(ctx, testTenantSlug, testUserEmail)
		require.NoError(t, err)
		require.Equal(t, auth.MagicLinkGenericMessage, msg)
		require.Contains(t, f.mailer.sent[0].HTML, testAppURL+"/acme/auth/verify?token=")
		require.Contains(t, f.mailer.sent[0].HTML, "15 minutes")

		linkToken := f.mailer.lastToken(t)
		res, err := f.service.RedeemMagicLink(ctx, linkToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, res.User.ID)
		require.Equal(t, 7*24*time.Hour, res.Session.RefreshLifetime)

		_, err = f.service.RedeemMagicLink(ctx, linkToken)
		requireKind(t, err, auth.ErrInvalidMagicLink)
	})

	t.Run("expires after fifteen minutes", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)
		_, err := f.service.RequestMagicLink(ctx, testTenantSlug, testUserEmail)
		require.NoError(t, err)

		f.now = f.now.Add(15*time.Minute + time.Second)
		_, err = f.service.RedeemMagicLink(ctx, f.mailer.lastToken(t))
		requireKind(t, err, auth.ErrInvalidMagicLink)
	})

	t.Run("unknown account with strict protection", func(t *testing.T) {
		f := setupTestFixture(t)
		msg, err := f.service.RequestMagicLink(ctx, testTenantSlug, "nobody@example.com")
		require.NoError(t, err)
		require.Equal(t, auth.MagicLinkGenericMessage, msg)
		require.Empty(t, f.mailer.sent)
	})

	t.Run("unknown account without strict protection", func(t *testing.T) {
		f := setupTestFixture(t)
		f.config.StrictEnumerationProtection = false
		f.registerUser(t, testUserEmail)

		_, err := f.service.RequestMagicLink(ctx, testTenantSlug, "nobody@example.com")
		requireKind(t, err, auth.ErrUserNotFound)

		msg, err := f.service.RequestMagicLink(ctx, testTenantSlug, testUserEmail)
		require.NoError(t, err)
		require.Equal(t, auth.MagicLinkSentMessage, msg)
	})

	t.Run("delivery failure is reported", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)
		f.mailer.fail = true

		_, err := f.service.RequestMagicLink(ctx, testTenantSlug, testUserEmail)
		require.Error(t, err)
		require.Equal(t, apperrors.KindServer, apperrors.KindOf(err))
	})

	t.Run("deleted account still spends the token", func(t *testing.T) {
		f := setupTestFixture(t)
		store := magiclink.NewMemoryStore(f.Now)
		svc, err := auth.NewService(
			auth.Repos{Tenants: f.tenantRepo, Users: f.userRepo, Memberships: f.memberRepo, Resets: f.resetRepo},
			f.service.Sessions(), store, f.dispatcher, f.config,
		)
		require.NoError(t, err)
		require.NoError(t, store.Put(ctx, "abc", magiclink.Entry{UserID: "gone"}, time.Minute))

		_, err = svc.RedeemMagicLink(ctx, "abc")
		requireKind(t, err, auth.ErrUserNotFound)
		_, err = svc.RedeemMagicLink(ctx, "abc")
		requireKind(t, err, auth.ErrInvalidMagicLink)
	})

	t.Run("token required", func(t *testing.T) {
		f := setupTestFixture(t)
		_, err := f.service.RedeemMagicLink(ctx, "")
		requireKind(t, err, auth.ErrTokenRequired)
	})
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("request validate redeem", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)

		msg, err := f.service.RequestPasswordReset(ctx, testTenantSlug, testUserEmail)
		require.NoError(t, err)
		require.Equal(t, auth.ResetGenericMessage, msg)
		f.dispatcher.Wait()
		require.Contains(t, f.mailer.sent[0].HTML, testAppURL+"/auth/acme/reset-password?token=")
		resetToken := f.mailer.lastToken(t)

		valid, err := f.service.ValidateResetToken(ctx, testTenantSlug, resetToken)
		require.NoError(t, err)
		require.True(t, valid)

		require.NoError(t, f.service.ResetPassword(ctx, testTenantSlug, resetToken, "new-password-1"))
		_, err = f.service.Login(ctx, testTenantSlug, testUserEmail, testUserPassword, false)
		requireKind(t, err, auth.ErrInvalidCredentials)
		_, err = f.service.Login(ctx, testTenantSlug, testUserEmail, "new-password-1", false)
		require.NoError(t, err)

		err = f.service.ResetPassword(ctx, testTenantSlug, resetToken, "new-password-2")
		requireKind(t, err, auth.ErrInvalidResetToken)
		valid, err = f.service.ValidateResetToken(ctx, testTenantSlug, resetToken)
		require.NoError(t, err)
		require.False(t, valid)
	})

	t.Run("unknown account gets the same message", func(t *testing.T) {
		f := setupTestFixture(t)
		msg, err := f.service.RequestPasswordReset(ctx, testTenantSlug, "nobody@example.com")
		require.NoError(t, err)
		require.Equal(t, auth.ResetGenericMessage, msg)
		f.dispatcher.Wait()
		require.Empty(t, f.mailer.sent)
	})

	t.Run("new request invalidates the previous token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)

		_, err := f.service.RequestPasswordReset(ctx, testTenantSlug, testUserEmail)
		require.NoError(t, err)
		f.dispatcher.Wait()
		first := f.mailer.lastToken(t)

		_, err = f.service.RequestPasswordReset(ctx, testTenantSlug, testUserEmail)
		require.NoError(t, err)
		f.dispatcher.Wait()
		second := f.mailer.lastToken(t)

		err = f.service.ResetPassword(ctx, testTenantSlug, first, "new-password-1")
		requireKind(t, err, auth.ErrInvalidResetToken)
		require.NoError(t, f.service.ResetPassword(ctx, testTenantSlug, second, "new-password-1"))
	})

	t.Run("expiry boundary", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)
		f.resetRepo.Put(&resets.PasswordResetToken{
			Token:     "tok",
			TenantID:  f.tenant.ID,
			Email:     testUserEmail,
			ExpiresAt: f.now.Add(time.Hour),
		})

		f.now = f.now.Add(time.Hour + time.Second)
		err := f.service.ResetPassword(ctx, testTenantSlug, "tok", "new-password-1")
		requireKind(t, err, auth.ErrResetTokenExpired)

		f.now = f.now.Add(-2 * time.Second)
		require.NoError(t, f.service.ResetPassword(ctx, testTenantSlug, "tok", "new-password-1"))
	})

	t.Run("token is bound to its tenant", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)
		other := &tenants.Tenant{Slug: "other", Name: "Other"}
		require.NoError(t, f.tenantRepo.Create(ctx, other))
		f.resetRepo.Put(&resets.PasswordResetToken{
			Token:     "tok",
			TenantID:  f.tenant.ID,
			Email:     testUserEmail,
			ExpiresAt: f.now.Add(time.Hour),
		})

		err := f.service.ResetPassword(ctx, "other", "tok", "new-password-1")
		requireKind(t, err, auth.ErrInvalidResetToken)
	})

	t.Run("validation", func(t *testing.T) {
		f := setupTestFixture(t)
		err := f.service.ResetPassword(ctx, testTenantSlug, "", "")
		requireKind(t, err, auth.ErrTokenAndPasswordRequired)
		err = f.service.ResetPassword(ctx, testTenantSlug, "tok", "short")
		requireKind(t, err, auth.ErrWeakPassword)
		err = f.service.ResetPassword(ctx, testTenantSlug, "missing", "new-password-1")
		requireKind(t, err, auth.ErrInvalidResetToken)
	})

	t.Run("over long password keeps the token", func(t *testing.T) {
		f := setupTestFixture(t)
		f.registerUser(t, testUserEmail)
		f.resetRepo.Put(&resets.PasswordResetToken{
			Token:     "tok",
			TenantID:  f.tenant.ID,
			Email:     testUserEmail,
			ExpiresAt: f.now.Add(time.Hour),
		})

		err := f.service.ResetPassword(ctx, testTenantSlug, "tok", strings.Repeat("a", 80))
		requireKind(t, err, auth.ErrPasswordTooLong)

		valid, err := f.service.ValidateResetToken(ctx, testTenantSlug, "tok")
		require.NoError(t, err)
		require.True(t, valid)
		require.NoError(t, f.service.ResetPassword(ctx, testTenantSlug, "tok", "new-password-1"))
	})
}

func TestGoogleFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("redirect carries tenant state", func(t *testing.T) {
		f := setupTestFixture(t)
		redirect, err := f.service.GoogleAuthURL(testTenantSlug)
		require.NoError(t, err)
		require.Contains(t, redirect, "state="+auth.EncodeState(testTenantSlug))
	})

	t.Run("first sign in provisions the account", func(t *testing.T) {
		f := setupTestFixture(t)
		res, err := f.service.GoogleCallback(ctx, "code", auth.EncodeState(testTenantSlug))
		require.NoError(t, err)
		require.Equal(t, testTenantSlug, res.TenantSlug)
		require.Equal(t, "grace@example.com", res.User.Email)
		require.Equal(t, users.ProviderGoogle, res.User.Provider)
		require.False(t, res.User.HasPassword())
		require.Equal(t, 30*24*time.Hour, res.Session.RefreshLifetime)

		m, err := f.memberRepo.GetByTenantUser(ctx, f.tenant.ID, res.User.ID)
		require.NoError(t, err)
		require.Equal(t, users.RoleUser, m.Role)

		again, err := f.service.GoogleCallback(ctx, "code", auth.EncodeState(testTenantSlug))
		require.NoError(t, err)
		require.Equal(t, res.User.ID, again.User.ID)
	})

	t.Run("legacy account without membership is repaired", func(t *testing.T) {
		f := setupTestFixture(t)
		f.userRepo.Insert(&users.User{TenantID: f.tenant.ID, Email: "grace@example.com", Role: users.RoleAdmin})

		res, err := f.service.GoogleCallback(ctx, "code", auth.EncodeState(testTenantSlug))
		require.NoError(t, err)
		m, err := f.memberRepo.GetByTenantUser(ctx, f.tenant.ID, res.User.ID)
		require.NoError(t, err)
		require.Equal(t, users.RoleAdmin, m.Role)
	})

	t.Run("failures", func(t *testing.T) {
		f := setupTestFixture(t)

		_, err := f.service.GoogleCallback(ctx, "code", "%%%")
		requireKind(t, err, auth.ErrInvalidState)

		res, err := f.service.GoogleCallback(ctx, "code", auth.EncodeState("missing"))
		requireKind(t, err, auth.ErrTenantNotFound)
		require.Equal(t, "missing", res.TenantSlug)

		f.provider.err = errors.New("bad code")
		res, err = f.service.GoogleCallback(ctx, "code", auth.EncodeState(testTenantSlug))
		requireKind(t, err, auth.ErrOAuthFailed)
		require.Equal(t, testTenantSlug, res.TenantSlug)
	})
}

func TestDecodeStateAcceptsStandardBase64(t *testing.T) {
	slug, err := auth.DecodeState("eyJ0ZW5hbnQiOiJhY21lIn0=")
	require.NoError(t, err)
	require.Equal(t, "acme", slug)

	_, err = auth.DecodeState("e30=")
	requireKind(t, err, auth.ErrInvalidState)
}
