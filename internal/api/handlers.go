package api

import (
	"encoding/json"
	"net/http"

	"github.com/metcalfc/aloud/internal/playback"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the response body for /v1/healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

// ChunkResponse represents the response body for /v1/chunk: the current
// chunk rendered as HTML with the active word marked.
type ChunkResponse struct {
	Chunk      int    `json:"chunk"`
	ChunkCount int    `json:"chunk_count"`
	Word       int    `json:"word"`
	HTML       string `json:"html"`
}

// handleHealthz handles GET /v1/healthz requests.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// handleStatus handles GET /v1/status requests.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.ctrl.Snapshot())
}

// handleChunk handles GET /v1/chunk requests.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	snap := s.ctrl.Snapshot()
	json.NewEncoder(w).Encode(ChunkResponse{
		Chunk:      snap.Chunk,
		ChunkCount: snap.ChunkCount,
		Word:       snap.Word,
		HTML:       playback.HighlightHTML(snap.ChunkText, snap.Word),
	})
}

// handleCommand handles the POST /v1/{play,pause,stop,next,prev,reset}
// transport endpoints.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, cmd Command) {
	w.Header().Set("Content-Type", "application/json")

	if err := s.ctrl.Dispatch(cmd); err != nil {
		s.logger.Error("command dispatch failed", "command", cmd, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ErrorResponse{Error: err.Error()})
		return
	}

	s.logger.Info("command dispatched", "command", cmd)
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(s.ctrl.Snapshot())
}
