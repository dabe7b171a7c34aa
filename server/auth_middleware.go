package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/tenant-auth-server/auth"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyPrincipal stores the authorised caller of a tenant route
const ContextKeyPrincipal ContextKey = "principal"

// RequireTenantRole authorises the caller against the {tenant} path value.
// With no roles any member passes, otherwise the membership role must be one of roles.
func (s *Server) RequireTenantRole(roles ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			principal, err := s.authz.Authorize(r.Context(), cookieValue(r, session.AccessCookieName), r.PathValue("tenant"))
			if err != nil {
				writeError(w, r, err)
				return
			}
			if len(roles) > 0 {
				if err := principal.RequireRole(roles...); err != nil {
					writeError(w, r, err)
					return
				}
			}

			ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
			next(w, r.WithContext(ctx))
		}
	}
}

// principalFrom returns the caller stored by RequireTenantRole
func principalFrom(ctx context.Context) *auth.Principal {
	p, _ := ctx.Value(ContextKeyPrincipal).(*auth.Principal)
	return p
}

// cookieValue returns the named cookie's value, or "" when absent
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
