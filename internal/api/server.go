// Package api exposes the admin calendar over HTTP for the frontend:
// view state, navigation, occupancy printing and export jobs.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/carlsburger/GastroCore-sub003/internal/calendar"
	"github.com/carlsburger/GastroCore-sub003/internal/export"
	"github.com/carlsburger/GastroCore-sub003/internal/occupancy"
)

// Controller is the calendar view state the handlers drive.
type Controller interface {
	State() calendar.ViewState
	SelectDay(ctx context.Context, day time.Time) error
	SetMode(ctx context.Context, mode calendar.Mode) error
	Today(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Refresh(ctx context.Context) error
}

// Projector builds and dispatches occupancy print snapshots.
type Projector interface {
	Project(ctx context.Context, date, slot string) (*occupancy.Snapshot, string, error)
}

// Exporter runs tax export jobs.
type Exporter interface {
	Run(ctx context.Context, year int, month time.Month) (*export.JobResult, error)
}

// HTTPServer serves the admin calendar API.
type HTTPServer struct {
	server     *http.Server
	controller Controller
	projector  Projector
	exporter   Exporter
	apiKey     string
	log        *zerolog.Logger
}

// NewHTTPServer wires the handlers onto a mux. An empty apiKey disables
// authentication (local development).
func NewHTTPServer(port int, apiKey string, controller Controller, projector Projector, exporter Exporter, log *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		controller: controller,
		projector:  projector,
		exporter:   exporter,
		apiKey:     apiKey,
		log:        log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/calendar/view", s.auth(s.handleView))
	mux.HandleFunc("/api/calendar/select-day", s.auth(s.handleSelectDay))
	mux.HandleFunc("/api/calendar/mode", s.auth(s.handleMode))
	mux.HandleFunc("/api/calendar/today", s.auth(s.handleNav(Controller.Today, "today")))
	mux.HandleFunc("/api/calendar/next", s.auth(s.handleNav(Controller.Next, "next")))
	mux.HandleFunc("/api/calendar/prev", s.auth(s.handleNav(Controller.Prev, "prev")))
	mux.HandleFunc("/api/occupancy/print", s.auth(s.handlePrint))
	mux.HandleFunc("/api/export/tax", s.auth(s.handleExport))
	mux.HandleFunc("/api/audit/diff", s.auth(handleAuditDiff))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	return s
}

// Handler returns the underlying handler, for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until the context is cancelled.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	if s.log != nil {
		s.log.Info().Str("addr", s.server.Addr).Msg("API server listening")
	}
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.Header.Get("x-api-key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
