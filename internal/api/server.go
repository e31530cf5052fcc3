// Package api provides the REST and WebSocket server for finch.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/rahulmohankumar24/finch-demo/internal/service"
)

// Server is the finch API server.
type Server struct {
	addr      string
	mux       *http.ServeMux
	logger    *slog.Logger
	svc       *service.Service
	wsHandler *WSHandler

	shutdownTimeout time.Duration
}

// Config holds server configuration.
type Config struct {
	Addr    string
	Logger  *slog.Logger
	Service *service.Service

	// ShutdownTimeout bounds graceful shutdown. Defaults to 5s.
	ShutdownTimeout time.Duration
}

// New creates a new API server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = "127.0.0.1:8080"
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &Server{
		addr:            addr,
		mux:             http.NewServeMux(),
		logger:          logger,
		svc:             cfg.Service,
		shutdownTimeout: timeout,
	}
	s.wsHandler = NewWSHandler(cfg.Service.Publisher(), s, logger)

	s.registerRoutes()
	return s
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))
	s.mux.HandleFunc("OPTIONS /api/", cors(func(http.ResponseWriter, *http.Request) {}))

	// Matters
	s.mux.HandleFunc("GET /api/matters", cors(s.handleListMatters))
	s.mux.HandleFunc("POST /api/matters", cors(s.handleCreateMatter))
	s.mux.HandleFunc("GET /api/matters/{id}", cors(s.handleGetMatter))
	s.mux.HandleFunc("GET /api/matters/{id}/dependencies", cors(s.handleGetDependencies))
	s.mux.HandleFunc("POST /api/matters/{id}/repair", cors(s.handleRepairMatter))

	// Tasks
	s.mux.HandleFunc("POST /api/tasks/create", cors(s.handleCreateTask))
	s.mux.HandleFunc("POST /api/tasks/execute", cors(s.handleExecuteTask))
	s.mux.HandleFunc("POST /api/tasks/add-dependency", cors(s.handleAddDependency))
	s.mux.HandleFunc("POST /api/tasks/edit-dependencies", cors(s.handleEditDependencies))
	s.mux.HandleFunc("POST /api/tasks/insert-after", cors(s.handleInsertAfter))

	// Clients
	s.mux.HandleFunc("GET /api/clients", cors(s.handleListClients))
	s.mux.HandleFunc("POST /api/clients", cors(s.handleCreateClient))
	s.mux.HandleFunc("GET /api/clients/{id}/matters", cors(s.handleListClientMatters))
	s.mux.HandleFunc("POST /api/clients/{id}/matters", cors(s.handleCreateClientMatter))

	// Snapshots
	s.mux.HandleFunc("GET /api/export", cors(s.handleExport))
	s.mux.HandleFunc("POST /api/import", cors(s.handleImport))

	// Live events
	s.mux.Handle("GET /api/ws", s.wsHandler)
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// StartContext serves until ctx is cancelled, then shuts down gracefully.
// Returns nil after a clean shutdown.
func (s *Server) StartContext(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		s.wsHandler.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("server shutdown", "error", err)
		}
	}()

	s.logger.Info("starting API server", "addr", ln.Addr().String())
	err := server.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		<-shutdownDone
		s.logger.Info("API server stopped")
		return nil
	}
	return err
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(w, map[string]string{"status": "ok"})
}
