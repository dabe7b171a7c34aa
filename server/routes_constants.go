package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Password login & registration
	RouteAuthLogin    = "/api/{tenant}/auth/login"
	RouteAuthRegister = "/api/{tenant}/auth/register"
	RouteAuthLogout   = "/api/{tenant}/auth/logout"
	RouteAuthRefresh  = "/api/{tenant}/auth/refresh"
	RouteAuthMe       = "/api/{tenant}/auth/me"

	// Auth Routes - Passwordless
	RouteAuthMagicLink  = "/api/{tenant}/auth/magic-link"
	RouteAuthMagicLogin = "/api/{tenant}/auth/magic-login"

	// Auth Routes - Google federation. The callback is shared by all tenants, the tenant travels in the state.
	RouteAuthGoogle         = "/api/{tenant}/auth/google"
	RouteAuthGoogleCallback = "/api/auth/google/callback"

	// Auth Routes - Password Management
	RouteAuthForgotPassword     = "/api/{tenant}/auth/forgot-password"
	RouteAuthValidateResetToken = "/api/{tenant}/auth/validate-reset-token"
	RouteAuthResetPassword      = "/api/{tenant}/auth/reset-password"

	// Tenant resources
	RouteProjects = "/api/{tenant}/projects"
	RouteProject  = "/api/{tenant}/projects/{id}"
	RouteMembers  = "/api/{tenant}/members"
	RouteMember   = "/api/{tenant}/members/{id}"

	RouteHealth = "/healthz"

	// Browser redirect targets after the Google callback
	RedirectInvalidTenant   = "/error?msg=InvalidTenant"
	redirectGoogleFailedFmt = "/%s/auth/login?error=google_auth_failed"
	redirectTenantHomeFmt   = "/%s"
)
