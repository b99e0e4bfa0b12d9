// Package server owns the HTTP listener in front of the tracking engine.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/syab726/project2-face-sub001/internal/application/container"
	"github.com/syab726/project2-face-sub001/internal/presentation/http/routes"
	"github.com/syab726/project2-face-sub001/pkg/config"
)

// Server couples the gin router over the tracking services with the standard
// http.Server lifecycle. Timeouts come from the central configuration.
type Server struct {
	httpServer *http.Server
	container  *container.Container
}

// New builds the router from the service container and wraps it in a server
// listening on the given port.
func New(port string, container *container.Container) *Server {
	router := routes.SetupRoutes(container)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	return &Server{
		httpServer: httpServer,
		container:  container,
	}
}

// Start serves the tracking API until Stop is called. ErrServerClosed from a
// graceful shutdown is not an error.
func (s *Server) Start() error {
	log.Printf("Tracking API listening on %s", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("tracking API server failed: %w", err)
	}

	return nil
}

// Stop drains in-flight requests within the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	log.Println("Stopping tracking API server...")
	return s.httpServer.Shutdown(ctx)
}
