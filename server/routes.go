package server

import (
	"net/http"

	"github.com/jrsteele09/tenant-auth-server/auth"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())

	// LOGIN
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRegister, ChainMiddleware(s.RegisterHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteAuthMagicLink, ChainMiddleware(s.MagicLinkHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthMagicLogin, ChainMiddleware(s.MagicLoginHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteAuthGoogle, ChainMiddleware(s.GoogleRedirectHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthGoogleCallback, ChainMiddleware(s.GoogleCallbackHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("POST "+RouteAuthForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAuthValidateResetToken, ChainMiddleware(s.ValidateResetTokenHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthResetPassword, ChainMiddleware(s.ResetPasswordHandler(), s.APIMiddleware()...))

	// Tenant resources, any member may read
	anyMember := s.RequireTenantRole()
	managers := s.RequireTenantRole(auth.ManagerRoles...)

	s.RegisterRouteHandler("GET "+RouteProjects, ChainMiddleware(s.ListProjectsHandler(), s.APIMiddleware(anyMember)...))
	s.RegisterRouteHandler("POST "+RouteProjects, ChainMiddleware(s.CreateProjectHandler(), s.APIMiddleware(managers)...))
	s.RegisterRouteHandler("GET "+RouteProject, ChainMiddleware(s.GetProjectHandler(), s.APIMiddleware(anyMember)...))
	s.RegisterRouteHandler("PUT "+RouteProject, ChainMiddleware(s.UpdateProjectHandler(), s.APIMiddleware(managers)...))
	s.RegisterRouteHandler("DELETE "+RouteProject, ChainMiddleware(s.DeleteProjectHandler(), s.APIMiddleware(managers)...))

	s.RegisterRouteHandler("GET "+RouteMembers, ChainMiddleware(s.ListMembersHandler(), s.APIMiddleware(anyMember)...))
	s.RegisterRouteHandler("POST "+RouteMembers, ChainMiddleware(s.AddMemberHandler(), s.APIMiddleware(managers)...))
	s.RegisterRouteHandler("PUT "+RouteMember, ChainMiddleware(s.UpdateMemberHandler(), s.APIMiddleware(managers)...))
	s.RegisterRouteHandler("DELETE "+RouteMember, ChainMiddleware(s.RemoveMemberHandler(), s.APIMiddleware(managers)...))
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
