package worker

import (
	"net/http"
	"time"

	"github.com/thebtf/flowcheck/internal/telemetry"
	"github.com/thebtf/flowcheck/internal/vector"
)

// upcomingFeatures is served by /coming_soon.
var upcomingFeatures = []map[string]string{
	{"feature": "User Profile Management", "status": "In Development"},
	{"feature": "Achievements Leaderboard", "status": "Planned"},
	{"feature": "Real-Time Notifications", "status": "In Planning"},
}

// handleRoot godoc
// @Summary Welcome message
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (s *Service) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to the Fact-Checking API!"})
}

// handleHealth godoc
// @Summary Service health
// @Description Reports readiness, database reachability and the build version.
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 503 {object} map[string]any
// @Router /health [get]
func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	code := http.StatusOK
	if !s.ready.Load() {
		status = "starting"
	}

	database := "ok"
	if err := s.store.PingContext(r.Context()); err != nil {
		requestLog(r).Warn().Err(err).Msg("Health check: database unreachable")
		database = err.Error()
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]any{
		"status":   status,
		"version":  s.version,
		"database": database,
		"dialect":  s.store.Dialect(),
		"uptime":   time.Since(s.startTime).Round(time.Second).String(),
	})
}

// handleVersion godoc
// @Summary Build version
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /version [get]
func (s *Service) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// handleReady godoc
// @Summary Readiness probe
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /ready [get]
func (s *Service) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "starting"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleComingSoon godoc
// @Summary Upcoming features
// @Tags system
// @Produce json
// @Success 200 {object} map[string]any
// @Router /coming_soon [get]
func (s *Service) handleComingSoon(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"coming_soon": upcomingFeatures})
}

// Stats is the body of /api/stats.
type Stats struct {
	Metrics    telemetry.Snapshot `json:"metrics"`
	Index      vector.Stats       `json:"index"`
	Uptime     string             `json:"uptime"`
	Threshold  float64            `json:"similarity_threshold"`
	SSEClients int                `json:"sse_clients"`
}

// GetStats returns counters for the running service.
func (s *Service) GetStats() Stats {
	return Stats{
		Metrics:    s.metrics.Snapshot(),
		Index:      s.index.Stats(),
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Threshold:  s.claims.Threshold(),
		SSEClients: s.sseBroadcaster.ClientCount(),
	}
}

// handleStats godoc
// @Summary Service counters
// @Tags system
// @Produce json
// @Success 200 {object} Stats
// @Router /api/stats [get]
func (s *Service) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetStats())
}
