// Package server serves the local web dashboard.
package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/bobmcallan/folio/internal/app"
	"github.com/bobmcallan/folio/internal/common"
)

// Server wraps the HTTP server and application reference.
type Server struct {
	app          *app.App
	server       *http.Server
	logger       *common.Logger
	shutdownChan chan struct{}

	// background work (quote polling) lives until Shutdown
	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu      sync.Mutex
	current *sessionState
}

// SetShutdownChannel sets the channel that will be signaled when HTTP shutdown is requested.
func (s *Server) SetShutdownChannel(ch chan struct{}) {
	s.shutdownChan = ch
}

// NewServer creates the web dashboard server.
func NewServer(a *app.App) *Server {
	s := &Server{
		app:    a,
		logger: a.Logger,
	}
	s.baseCtx, s.baseCancel = context.WithCancel(context.Background())

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	handler := applyMiddleware(mux, a.Logger)

	s.server = &http.Server{
		Addr:         a.Config.ServerAddr(),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server (blocking).
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.server.Addr).
		Msg("Starting web dashboard")
	return s.server.ListenAndServe()
}

// Shutdown stops background polling and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.dropSession()
	s.baseCancel()
	return s.server.Shutdown(ctx)
}
