package server

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/tenant-auth-server/auth"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// GoogleRedirectHandler starts the authorization code flow for the tenant in the path
func (s *Server) GoogleRedirectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.auth.GoogleAuthURL(r.PathValue("tenant"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// GoogleCallbackHandler finishes the flow and sends the browser back to the web application.
// Only a malformed state is answered with JSON, every other outcome is a redirect.
func (s *Server) GoogleCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		result, err := s.auth.GoogleCallback(r.Context(), q.Get("code"), q.Get("state"))
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrInvalidState):
			writeError(w, r, err)
			return
		case errors.Is(err, auth.ErrTenantNotFound):
			s.redirectToApp(w, r, RedirectInvalidTenant)
			return
		case result != nil && result.TenantSlug != "":
			log.Err(err).Str("tenant", result.TenantSlug).Msg("google sign in failed")
			s.redirectToApp(w, r, fmt.Sprintf(redirectGoogleFailedFmt, url.PathEscape(result.TenantSlug)))
			return
		default:
			writeError(w, r, err)
			return
		}

		session.SetCookies(w, result.Session.Cookies(s.config.GetSecureCookies()))
		s.redirectToApp(w, r, fmt.Sprintf(redirectTenantHomeFmt, url.PathEscape(result.TenantSlug)))
	}
}

func (s *Server) redirectToApp(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, s.config.GetAppURL()+path, http.StatusFound)
}
