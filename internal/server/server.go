// Package server exposes the read-only HTTP API, the live leaderboard
// websocket feed and the operational endpoints. Mutations stay at the CLI
// and library level; the server is a viewer over the portal.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/veloportal/internal/config"
	"github.com/yourusername/veloportal/internal/metrics"
	"github.com/yourusername/veloportal/internal/models"
	"github.com/yourusername/veloportal/internal/portal"
)

// Server serves the portal over HTTP.
type Server struct {
	portal *portal.Portal
	hub    *Hub
	cache  *classificationCache
	log    *logrus.Logger
	http   *http.Server
}

// New creates a server and subscribes it to the portal's stage change
// notifications.
func New(cfg config.ServerConfig, p *portal.Portal, log *logrus.Logger, metricsEnabled bool) *Server {
	if log == nil {
		log = logrus.New()
	}
	s := &Server{
		portal: p,
		hub:    NewHub(log),
		cache:  newClassificationCache(time.Duration(cfg.CacheTTLSeconds) * time.Second),
		log:    log,
	}
	p.Subscribe(s)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/races/{id}", s.handleRaceDetails)
	mux.HandleFunc("GET /api/v1/stages/{id}/classification", s.handleStageClassification)
	mux.HandleFunc("GET /api/v1/teams/{id}/riders", s.handleTeamRiders)
	mux.HandleFunc("GET /ws/stages/{id}", s.handleStageFeed)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if metricsEnabled {
		mux.Handle("GET /metrics", metrics.Handler())
	}

	readTimeout := time.Duration(cfg.ReadTimeoutSecs) * time.Second
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	s.http = &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     mux,
		ReadTimeout: readTimeout,
	}
	return s
}

// StageChanged implements portal.StageObserver: flush the cached
// classification and push the fresh leaderboard to subscribers.
func (s *Server) StageChanged(stageID int) {
	s.cache.flush(stageID)

	cls, err := s.portal.ClassifyStage(stageID)
	if err != nil {
		// Stage removed: tell subscribers the leaderboard is gone.
		s.hub.Broadcast(stageID, map[string]interface{}{"stage_id": stageID, "removed": true})
		return
	}
	s.cache.put(stageID, cls)
	s.hub.Broadcast(stageID, cls)
}

// Start runs the HTTP server until Shutdown.
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops the server and closes all websocket subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.http.Shutdown(ctx)
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.WithError(err).Warn("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, models.ErrIDNotRecognised) {
		status = http.StatusNotFound
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleRaceDetails(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid race id"})
		return
	}
	details, err := s.portal.ViewRaceDetails(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	stages, err := s.portal.RaceStages(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":      id,
		"details": details,
		"stages":  stages,
	})
}

func (s *Server) handleStageClassification(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid stage id"})
		return
	}

	if cls, ok := s.cache.get(id); ok {
		s.writeJSON(w, http.StatusOK, cls)
		return
	}

	cls, err := s.portal.ClassifyStage(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.cache.put(id, cls)
	s.writeJSON(w, http.StatusOK, cls)
}

func (s *Server) handleTeamRiders(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid team id"})
		return
	}
	riders, err := s.portal.TeamRiders(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"team_id": id, "riders": riders})
}

func (s *Server) handleStageFeed(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "invalid stage id", http.StatusBadRequest)
		return
	}
	s.hub.Subscribe(w, r, id)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "veloportal",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	// The portal is in-memory; once the process serves, it is ready.
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "service": "veloportal"})
}
