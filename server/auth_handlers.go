package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/tenant-auth-server/auth"
	"github.com/jrsteele09/tenant-auth-server/session"
	"github.com/jrsteele09/tenant-auth-server/users"
	"github.com/rs/zerolog/log"
)

type loginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type tokenRequest struct {
	Token string `json:"token"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// userSummary is the public view of an account returned after sign in
type userSummary struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type userProfile struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Name      string         `json:"name"`
	Role      users.RoleType `json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
}

type loginResponse struct {
	Message string      `json:"message"`
	User    userSummary `json:"user"`
}

func summaryOf(u *users.User) userSummary {
	return userSummary{ID: u.ID, Email: u.Email, Name: u.Name}
}

// writeSession sets the session cookies and the sign in body
func (s *Server) writeSession(w http.ResponseWriter, result *auth.LoginResult) {
	session.SetCookies(w, result.Session.Cookies(s.config.GetSecureCookies()))
	writeJSON(w, http.StatusOK, loginResponse{Message: "Login successful", User: summaryOf(result.User)})
}

func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := s.auth.Login(r.Context(), r.PathValue("tenant"), req.Email, req.Password, req.RememberMe)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.writeSession(w, result)
	}
}

func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.auth.Register(r.Context(), r.PathValue("tenant"), req.Email, req.Password, req.Name)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, struct {
			Message string      `json:"message"`
			User    userSummary `json:"user"`
		}{Message: "User created", User: summaryOf(user)})
	}
}

// LogoutHandler always succeeds; a failed revocation is only logged
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.auth.Logout(r.Context(), cookieValue(r, session.RefreshCookieName)); err != nil {
			log.Err(err).Str("tenant", r.PathValue("tenant")).Msg("failed to revoke refresh token on logout")
		}
		session.SetCookies(w, session.ClearCookies(s.config.GetSecureCookies()))
		writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.auth.Refresh(r.Context(), cookieValue(r, session.RefreshCookieName))
		if err != nil {
			writeError(w, r, err)
			return
		}
		session.SetCookies(w, sess.Cookies(s.config.GetSecureCookies()))
		writeJSON(w, http.StatusOK, messageResponse{Message: "Token rotated"})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.authz.Verify(cookieValue(r, session.AccessCookieName))
		if err != nil {
			writeError(w, r, err)
			return
		}
		user, err := s.auth.Me(r.Context(), claims, r.PathValue("tenant"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]userProfile{"user": {
			ID:        user.ID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			CreatedAt: user.CreatedAt,
		}})
	}
}

func (s *Server) MagicLinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		msg, err := s.auth.RequestMagicLink(r.Context(), r.PathValue("tenant"), req.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: msg})
	}
}

func (s *Server) MagicLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tokenRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		result, err := s.auth.RedeemMagicLink(r.Context(), req.Token)
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.writeSession(w, result)
	}
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req emailRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		msg, err := s.auth.RequestPasswordReset(r.Context(), r.PathValue("tenant"), req.Email)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: msg})
	}
}

func (s *Server) ValidateResetTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		valid, err := s.auth.ValidateResetToken(r.Context(), r.PathValue("tenant"), r.URL.Query().Get("token"))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"valid": valid})
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resetPasswordRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
		if err := s.auth.ResetPassword(r.Context(), r.PathValue("tenant"), req.Token, req.Password); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset successfully."})
	}
}
