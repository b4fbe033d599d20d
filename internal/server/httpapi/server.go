package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/logging"
)

// Server hosts the JSON account API.
type Server struct {
	addr       string
	httpServer *http.Server
	logger     logging.Logger
}

// NewServer builds an HTTP server with the account routes registered.
func NewServer(addr string, accounts AccountFlows, logger logging.Logger) (*Server, error) {
	if addr == "" {
		return nil, errors.New("http address is required")
	}

	mux := http.NewServeMux()
	NewHandler(accounts, logger).RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{addr: addr, httpServer: httpServer, logger: logger}, nil
}

// ListenAndServe runs the HTTP server until the context ends, then shuts it
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	serveErr := make(chan error, 1)
	s.logger.Info(ctx, "http listening", "addr", s.addr)

	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
