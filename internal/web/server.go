package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"linkmon/internal/models"
	"linkmon/internal/monitor"
	"linkmon/internal/stats"
)

// Monitor is the live state and command surface served over HTTP
type Monitor interface {
	Snapshot() monitor.Snapshot
	Stability(ctx context.Context, windowID string) (stats.Metrics, error)
	RequestRestart(ctx context.Context, cmd models.RestartCommand) error
	SaveSchedule(ctx context.Context, upd models.ScheduleUpdate) error
	ToggleAutorestart(ctx context.Context, link models.LinkID, enabled bool) error
	SelectChartRange(ctx context.Context, rangeID string) error
	SelectStatsRange(ctx context.Context, windowID string) error
}

var _ Monitor = (*monitor.Monitor)(nil)

// Server handles web requests
type Server struct {
	mon  Monitor
	port int
	srv  *http.Server
}

// New creates a new web server
func New(mon Monitor, port int) *Server {
	s := &Server{
		mon:  mon,
		port: port,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed and request-logged API
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/snapshot", s.handleSnapshot).Methods("GET")
	api.HandleFunc("/links", s.handleLinks).Methods("GET")
	api.HandleFunc("/stability", s.handleStability).Methods("GET")
	api.HandleFunc("/averages", s.handleAverages).Methods("GET")
	api.HandleFunc("/chart", s.handleChart).Methods("GET")
	api.HandleFunc("/activity", s.handleActivity).Methods("GET")
	api.HandleFunc("/schedules", s.handleSchedules).Methods("GET")
	api.HandleFunc("/network", s.handleNetwork).Methods("GET")

	api.HandleFunc("/links/{link}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/links/{link}/schedule", s.handleSchedule).Methods("POST")
	api.HandleFunc("/links/{link}/autorestart", s.handleAutorestart).Methods("POST")
	api.HandleFunc("/ranges/chart", s.handleChartRange).Methods("POST")
	api.HandleFunc("/ranges/stats", s.handleStatsRange).Methods("POST")

	return handlers.LoggingHandler(log.Writer(), r)
}

// Start starts the web server and blocks until it is shut down
func (s *Server) Start() error {
	log.Printf("Web server starting on port %d", s.port)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for active ones to finish
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
