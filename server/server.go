// Package server is the HTTP surface over the session authentication
// core: request parsing, error-to-status mapping, and token cookies.
package server

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-session-auth/auth"
	"github.com/jrsteele09/go-session-auth/internal/config"
)

// Pinger reports backend connectivity for the health endpoint.
type Pinger interface {
	Health(ctx context.Context) error
}

// Server routes auth API requests to the auth service.
type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string
	auth   *auth.Service
	cfg    config.AuthConfig
	log    zerolog.Logger

	// Optional backend probes for /health. A nil probe is skipped.
	dbPing    Pinger
	cachePing Pinger
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithHealthProbes wires backend connectivity probes into /health.
func WithHealthProbes(db, cache Pinger) ServerOption {
	return func(s *Server) {
		s.dbPing = db
		s.cachePing = cache
	}
}

// New creates the HTTP server around an auth service.
func New(cfg *config.AppConfig, authService *auth.Service, log zerolog.Logger, options ...ServerOption) (*Server, error) {
	if authService == nil {
		return nil, errors.New("[server.New] auth service is required")
	}

	s := &Server{
		env:  cfg.Env,
		mux:  http.NewServeMux(),
		auth: authService,
		cfg:  cfg.Auth,
		log:  log,
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// RegisterRouteFunc registers a handler and remembers the pattern for
// startup logging.
func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) initRoutes() {
	mw := s.APIMiddleware()

	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), mw...))
	s.RegisterRouteFunc("POST "+RouteRegister, ChainMiddleware(s.RegisterHandler(), mw...))
	s.RegisterRouteFunc("POST "+RouteRefreshToken, ChainMiddleware(s.RefreshTokenHandler(), mw...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), mw...))
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), mw...))
}

// Routes returns the registered route patterns.
func (s *Server) Routes() []string {
	return s.routes
}
