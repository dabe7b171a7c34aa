package auth

import apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"

var (
	ErrEmailAndPasswordRequired = apperrors.Validation("Email and password are required")
	ErrEmailRequired            = apperrors.Validation("Email is required")
	ErrTokenRequired            = apperrors.Validation("Token is required")
	ErrTokenAndPasswordRequired = apperrors.Validation("Missing required fields")
	ErrInvalidEmail             = apperrors.Validation("Invalid email address")
	ErrWeakPassword             = apperrors.Validation("Password must be at least 8 characters long")
	ErrPasswordTooLong          = apperrors.Validation("Password must be at most 72 bytes")
	ErrInvalidState             = apperrors.Validation("Invalid state")
	ErrInvalidResetToken        = apperrors.Validation("Invalid or expired token")
	ErrResetTokenExpired        = apperrors.Validation("Token has expired")
	ErrEmailTaken               = apperrors.Conflict("Email already exists for this tenant")

	ErrTenantNotFound = apperrors.NotFound("Tenant not found")
	ErrUserNotFound   = apperrors.NotFound("User not found")

	ErrInvalidCredentials = apperrors.Authentication("Invalid email or password")
	ErrInvalidMagicLink   = apperrors.Authentication("Invalid or expired magic link")
	ErrOAuthFailed        = apperrors.Authentication("Google authentication failed")
	ErrMissingAccessToken = apperrors.Authentication("Missing access token")
	ErrInvalidAccessToken = apperrors.Authentication("Invalid or expired token")
	ErrUnauthorizedTenant = apperrors.Authorization("Unauthorized Access to Tenant")
	ErrInsufficientRole   = apperrors.Authorization("Forbidden: insufficient role")
)

// Caller facing messages for flows that must not reveal whether an account exists
const (
	MagicLinkSentMessage    = "Magic link sent successfully"
	MagicLinkGenericMessage = "If an account exists, a login link has been sent."
	ResetGenericMessage     = "If an account exists, a reset link has been sent."
)
