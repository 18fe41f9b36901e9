// Package api exposes a small HTTP control surface for remote transport
// commands and status polling. It is disabled unless an address is
// configured.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/metcalfc/aloud/internal/config"
)

// Command is a transport command dispatched into the playback owner loop.
type Command string

const (
	CmdPlay  Command = "play"
	CmdPause Command = "pause"
	CmdStop  Command = "stop"
	CmdNext  Command = "next"
	CmdPrev  Command = "prev"
	CmdReset Command = "reset"
)

// Snapshot is a point-in-time view of playback state.
type Snapshot struct {
	State      string  `json:"state"`
	Status     string  `json:"status"`
	Chunk      int     `json:"chunk"`
	ChunkCount int     `json:"chunk_count"`
	Word       int     `json:"word"`
	Seconds    float64 `json:"seconds"`
	Rate       float64 `json:"rate"`
	Voice      string  `json:"voice,omitempty"`
	ChunkText  string  `json:"-"`
}

// Controller is the bridge to the playback owner loop. Dispatch must hand
// the command to that loop rather than touch the engine directly.
type Controller interface {
	Dispatch(cmd Command) error
	Snapshot() Snapshot
}

// Server handles HTTP control requests.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	server *http.Server
	ctrl   Controller
}

// New creates a new control server listening on cfg.APIAddr.
func New(cfg *config.Config, logger *slog.Logger, ctrl Controller) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		ctrl:   ctrl,
	}

	s.server = &http.Server{
		Addr:         cfg.APIAddr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/healthz", s.handleHealthz)
	mux.HandleFunc("GET /v1/status", s.withAuth(s.handleStatus))
	mux.HandleFunc("GET /v1/chunk", s.withAuth(s.handleChunk))
	for _, cmd := range []Command{CmdPlay, CmdPause, CmdStop, CmdNext, CmdPrev, CmdReset} {
		cmd := cmd
		mux.HandleFunc("POST /v1/"+string(cmd), s.withAuth(func(w http.ResponseWriter, r *http.Request) {
			s.handleCommand(w, r, cmd)
		}))
	}
	return mux
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting control server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("control server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down control server")
	return s.server.Shutdown(ctx)
}
