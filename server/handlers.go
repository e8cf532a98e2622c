package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"seep/world"
)

// routes configures the router.
func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/world", s.handleWorld)
		r.Get("/chunks/{x}/{y}", s.handleChunk)
		r.Get("/stats", s.handleStats)
	})
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWorld handles GET /api/world - returns the world manifest.
func (s *Server) handleWorld(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.info)
}

// handleChunk handles GET /api/chunks/{x}/{y} - returns one chunk's
// terrain and fluid state.
func (s *Server) handleChunk(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.Atoi(chi.URLParam(r, "x"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid x coordinate")
		return
	}
	y, err := strconv.Atoi(chi.URLParam(r, "y"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid y coordinate")
		return
	}

	st, ok := s.chunkAt(world.ChunkCoord{X: int32(x), Y: int32(y)})
	if !ok {
		respondError(w, http.StatusNotFound, "chunk out of range")
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// handleStats handles GET /api/stats - returns the latest flushed
// telemetry window.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.latestStats()
	if st == nil {
		respondError(w, http.StatusNotFound, "no stats window flushed yet")
		return
	}
	respondJSON(w, http.StatusOK, st)
}

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("state server response failed", "error", err)
	}
}

// respondError writes an error JSON response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
