package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/pkg/errors"
)

// Identity is the minimal subject carried by access and refresh tokens
type Identity struct {
	UserID   string         `json:"id"`
	Email    string         `json:"email"`
	TenantID string         `json:"tenantId"`
	Role     users.RoleType `json:"role"`
}

// IdentityOf builds the token subject for a user. Accounts predating roles are treated as USER.
func IdentityOf(u *users.User) Identity {
	role := u.Role
	if role == "" {
		role = users.RoleUser
	}
	return Identity{UserID: u.ID, Email: u.Email, TenantID: u.TenantID, Role: role}
}

// Claims is the full decoded payload. The registered ID is the jti and keeps otherwise identical tokens distinct.
type Claims struct {
	Identity
	jwt.RegisteredClaims
}

// Validate is called by the jwt parser after the registered claims have been checked
func (c *Claims) Validate() error {
	switch {
	case c.UserID == "":
		return errors.New("missing id claim")
	case c.Email == "":
		return errors.New("missing email claim")
	case c.TenantID == "":
		return errors.New("missing tenantId claim")
	case c.RegisteredClaims.ID == "":
		return errors.New("missing jti claim")
	}
	if _, ok := users.ParseRole(string(c.Role)); !ok {
		return errors.Errorf("unknown role claim %q", c.Role)
	}
	return nil
}
