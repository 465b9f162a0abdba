// Package server provides HTTP server initialization and management.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/container"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/presentation/http/routes"
	"github.com/AtRiskMedia/pagegrid-go/pkg/config"
)

// Server owns the editor API listener.
type Server struct {
	http   *http.Server
	logger *logging.ChanneledLogger
}

// New builds the router for c and wraps it with the configured timeouts.
func New(port string, c *container.Container) *Server {
	return &Server{
		http: &http.Server{
			Addr:         ":" + port,
			Handler:      routes.SetupRoutes(c),
			ReadTimeout:  config.ServerReadTimeout,
			WriteTimeout: config.ServerWriteTimeout,
			IdleTimeout:  config.ServerIdleTimeout,
		},
		logger: c.Logger,
	}
}

// Start listens on the configured address and serves until Stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop. A clean stop returns nil.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.System().Info("HTTP server listening", "address", ln.Addr().String())
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Shutdown().Info("Draining HTTP server")
	return s.http.Shutdown(ctx)
}
