package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentstation/catalogsync/internal/server/handlers"
	"github.com/agentstation/catalogsync/internal/server/middleware"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(s.providers, s.logger, s.startTime)
	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)

	mux.HandleFunc("GET "+prefix+"/providers", h.HandleListProviders)
	mux.HandleFunc("GET "+prefix+"/providers/{name}", h.HandleGetProvider)
	mux.HandleFunc("POST "+prefix+"/providers/{name}/refresh", h.HandleRefresh)

	if s.config.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
}

// applyMiddleware applies the middleware chain to the handler.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.Logger(s.logger),
		middleware.Auth(middleware.AuthConfig{
			Enabled:    s.config.AuthEnabled,
			APIKey:     s.config.APIKey,
			HeaderName: s.config.AuthHeader,
			Methods:    []string{http.MethodPost},
		}, s.logger),
	)(handler)
}
