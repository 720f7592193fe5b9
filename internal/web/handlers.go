package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"linkmon/internal/linkstate"
	"linkmon/internal/models"
	"linkmon/internal/monitor"
	"linkmon/internal/schedule"
	"linkmon/internal/stats"
	"linkmon/internal/transport"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps monitor errors to status codes. Backend failures are 502, a stopped
// or abandoned request is 503, a timed out one is 504 and anything else was a bad request.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	var te *transport.TransportError
	switch {
	case errors.As(err, &te):
		status = http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, monitor.ErrStopped), errors.Is(err, context.Canceled):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func linkParam(r *http.Request) (models.LinkID, error) {
	return models.ParseLinkID(mux.Vars(r)["link"])
}

// handleHealth handles /health requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := s.mon.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"connected": snap.Connected,
	})
}

// handleSnapshot handles /api/snapshot requests
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mon.Snapshot())
}

type linksResponse struct {
	Connected bool             `json:"connected"`
	UpdatedAt time.Time        `json:"updated_at"`
	Links     []linkstate.View `json:"links"`
}

// handleLinks handles /api/links requests
func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	snap := s.mon.Snapshot()
	writeJSON(w, http.StatusOK, linksResponse{
		Connected: snap.Connected,
		UpdatedAt: snap.UpdatedAt,
		Links:     snap.Links,
	})
}

type stabilityResponse struct {
	Range   string                 `json:"range"`
	Metrics stats.Metrics          `json:"metrics"`
	Classes map[string]stats.Class `json:"classes"`
}

// handleStability handles /api/stability requests
func (s *Server) handleStability(w http.ResponseWriter, r *http.Request) {
	window := r.URL.Query().Get("range")
	if window == "" {
		window = s.mon.Snapshot().StatsRange
	}

	m, err := s.mon.Stability(r.Context(), window)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stabilityResponse{
		Range:   window,
		Metrics: m,
		Classes: m.Classes(),
	})
}

// handleAverages handles /api/averages requests
func (s *Server) handleAverages(w http.ResponseWriter, r *http.Request) {
	snap := s.mon.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stats_range": snap.StatsRange,
		"signal_bars": snap.SignalBars,
		"averages":    snap.Averages,
	})
}

// handleChart handles /api/chart requests
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	snap := s.mon.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"range":     snap.ChartRange,
		"samples":   snap.Chart,
		"synthetic": snap.SyntheticSamples,
	})
}

// handleActivity handles /api/activity requests
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	activity := s.mon.Snapshot().Activity
	if activity == nil {
		activity = []models.ActivityEntry{}
	}
	writeJSON(w, http.StatusOK, activity)
}

type scheduleResponse struct {
	models.RestartSchedule
	Description string `json:"description"`
	NextRestart int64  `json:"next_restart,omitempty"`
}

// handleSchedules handles /api/schedules requests
func (s *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	snap := s.mon.Snapshot()
	out := make(map[models.LinkID]scheduleResponse, len(snap.Schedules))
	for id, sch := range snap.Schedules {
		resp := scheduleResponse{RestartSchedule: sch, Description: schedule.Describe(sch)}
		if next, ok := schedule.NextOccurrence(sch, snap.UpdatedAt); ok {
			resp.NextRestart = next.Unix()
		}
		out[id] = resp
	}
	writeJSON(w, http.StatusOK, out)
}

// handleNetwork handles /api/network requests
func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mon.Snapshot().Network)
}

type restartRequest struct {
	Mode            models.RestartMode `json:"mode"`
	DurationMinutes int                `json:"duration_minutes"`
}

// handleRestart handles /api/links/{link}/restart requests
func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	link, err := linkParam(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	var req restartRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return
	}

	cmd := models.RestartCommand{Link: link, Mode: req.Mode, DurationMinutes: req.DurationMinutes}
	if err := s.mon.RequestRestart(r.Context(), cmd); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, cmd)
}

// handleSchedule handles /api/links/{link}/schedule requests
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	link, err := linkParam(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	var sch models.RestartSchedule
	if err := decode(r, &sch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return
	}

	upd := models.ScheduleUpdate{Link: link, Schedule: sch}
	if err := s.mon.SaveSchedule(r.Context(), upd); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, upd)
}

type toggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// handleAutorestart handles /api/links/{link}/autorestart requests
func (s *Server) handleAutorestart(w http.ResponseWriter, r *http.Request) {
	link, err := linkParam(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	var req toggleRequest
	if err := decode(r, &req); err != nil || req.Enabled == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be {\"enabled\": bool}"})
		return
	}

	if err := s.mon.ToggleAutorestart(r.Context(), link, *req.Enabled); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]interface{}{"link": link, "enabled": *req.Enabled})
}

type rangeRequest struct {
	Range string `json:"range"`
}

// handleChartRange handles /api/ranges/chart requests
func (s *Server) handleChartRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return
	}
	if err := s.mon.SelectChartRange(r.Context(), req.Range); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// handleStatsRange handles /api/ranges/stats requests
func (s *Server) handleStatsRange(w http.ResponseWriter, r *http.Request) {
	var req rangeRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body: " + err.Error()})
		return
	}
	if err := s.mon.SelectStatsRange(r.Context(), req.Range); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}
