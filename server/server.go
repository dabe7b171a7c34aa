package server

import (
	"fmt"
	"net/http"
	"strings"

	"filippo.io/csrf"
	"github.com/jrsteele09/tenant-auth-server/auth"
	"github.com/jrsteele09/tenant-auth-server/internal/config"
	"github.com/jrsteele09/tenant-auth-server/memberships"
	"github.com/jrsteele09/tenant-auth-server/projects"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

// Config is the configuration read by the HTTP layer
type Config interface {
	config.EnvConfig
	config.CorsConfig
	config.SecurityConfig
}

// Services holds the application services the handlers call into
type Services struct {
	Auth       *auth.Service
	Authorizer *auth.Authorizer
	Members    *memberships.Service
	Projects   *projects.Service
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	handler  http.Handler
	routes   []string
	config   Config
	auth     *auth.Service
	authz    *auth.Authorizer
	members  *memberships.Service
	projects *projects.Service
}

func New(cfg Config, services Services) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if services.Auth == nil || services.Authorizer == nil {
		return nil, errors.New("[Server New] auth service and authorizer are required")
	}
	if services.Members == nil || services.Projects == nil {
		return nil, errors.New("[Server New] member and project services are required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     services.Auth,
		authz:    services.Authorizer,
		members:  services.Members,
		projects: services.Projects,
	}

	s.initRoutes()
	s.logRoutes()

	handler, err := s.protect(s.mux)
	if err != nil {
		return nil, err
	}
	s.handler = handler
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// protect wraps the mux with CORS for the browser client and cross-origin protection for unsafe methods.
// The configured CORS origins are trusted by the cross-origin check as well.
func (s *Server) protect(next http.Handler) (http.Handler, error) {
	protection := csrf.New()
	for _, origin := range s.config.GetAllowedOrigins() {
		if origin == "" || origin == "*" {
			continue
		}
		if err := protection.AddTrustedOrigin(origin); err != nil {
			return nil, errors.Wrapf(err, "[Server New] invalid allowed origin %q", origin)
		}
	}

	middleware := cors.New(cors.Options{
		AllowedOrigins:   s.config.GetAllowedOrigins(),
		AllowedMethods:   s.config.GetAllowedMethods(),
		AllowedHeaders:   s.config.GetAllowedHeaders(),
		AllowCredentials: true,
		MaxAge:           86400,
	})
	return middleware.Handler(protection.Handler(next)), nil
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
