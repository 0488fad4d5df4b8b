package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/readsync/kosync-server/internal/model"
)

var _ model.Server = (*HTTPServer)(nil)

// HTTPServer serves the sync protocol over HTTP on a listener provided
// by a security layer.
type HTTPServer struct {
	server *http.Server
	addr   string
}

// NewHTTPServer creates a new HTTPServer for the given handler and
// address.
func NewHTTPServer(handler http.Handler, addr string) *HTTPServer {
	return &HTTPServer{
		server: &http.Server{Handler: handler},
		addr:   addr,
	}
}

// Start listens via the security layer and serves until Stop is called.
func (s *HTTPServer) Start(securityLayer model.SecurityLayer) error {
	listener, err := securityLayer.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Stop shuts the server down gracefully, waiting for in-flight
// requests up to the context deadline.
func (s *HTTPServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Address returns the configured listen address.
func (s *HTTPServer) Address() string {
	return s.addr
}
