package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/carlsburger/GastroCore-sub003/internal/auditlog"
	"github.com/carlsburger/GastroCore-sub003/internal/calendar"
	"github.com/carlsburger/GastroCore-sub003/internal/dates"
	"github.com/carlsburger/GastroCore-sub003/internal/metrics"
)

// handleView returns the current calendar view state.
// GET /api/calendar/view[?refresh=true]
func (s *HTTPServer) handleView(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar_view")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if r.URL.Query().Get("refresh") == "true" {
		if err := s.controller.Refresh(r.Context()); err != nil {
			s.log.Error().Err(err).Msg("refresh failed")
			writeError(w, http.StatusBadGateway, "backend unavailable")
			return
		}
	}

	writeJSON(w, http.StatusOK, s.controller.State())
}

// handleSelectDay switches to day mode with the given date selected.
// POST /api/calendar/select-day {"date":"YYYY-MM-DD"}
func (s *HTTPServer) handleSelectDay(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar_select_day")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Date string `json:"date"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	day, err := dates.ParseKey(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	if err := s.controller.SelectDay(r.Context(), day); err != nil {
		s.log.Error().Err(err).Str("date", req.Date).Msg("select day failed")
		writeError(w, http.StatusBadGateway, "backend unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.controller.State())
}

// handleMode switches the view mode without moving the anchor.
// PUT /api/calendar/mode {"mode":"week"|"day"}
func (s *HTTPServer) handleMode(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("calendar_mode")
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	mode := calendar.Mode(req.Mode)
	if !calendar.ValidMode(mode) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown view mode %q", req.Mode))
		return
	}

	if err := s.controller.SetMode(r.Context(), mode); err != nil {
		s.log.Error().Err(err).Str("mode", req.Mode).Msg("set mode failed")
		writeError(w, http.StatusBadGateway, "backend unavailable")
		return
	}
	writeJSON(w, http.StatusOK, s.controller.State())
}

// handleNav builds a handler for today/next/prev navigation.
func (s *HTTPServer) handleNav(op func(Controller, context.Context) error, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.IncHTTP("calendar_" + name)
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}

		if err := op(s.controller, r.Context()); err != nil {
			s.log.Error().Err(err).Str("op", name).Msg("navigation failed")
			writeError(w, http.StatusBadGateway, "backend unavailable")
			return
		}
		writeJSON(w, http.StatusOK, s.controller.State())
	}
}

// handlePrint builds and dispatches an occupancy print snapshot.
// POST /api/occupancy/print {"date":"YYYY-MM-DD","time":"HH:MM"}
func (s *HTTPServer) handlePrint(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("occupancy_print")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if _, err := dates.ParseKey(req.Date); err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}
	if req.Time == "" {
		writeError(w, http.StatusBadRequest, "time is required")
		return
	}

	snapshot, path, err := s.projector.Project(r.Context(), req.Date, req.Time)
	if err != nil {
		s.log.Error().Err(err).Str("date", req.Date).Str("time", req.Time).Msg("print snapshot failed")
		writeError(w, http.StatusBadGateway, "print snapshot failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"snapshot": snapshot, "path": path})
}

// handleExport runs a tax export job for a month.
// POST /api/export/tax {"month":"YYYY-MM"}
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export_tax")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Month string `json:"month"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month format; expected YYYY-MM")
		return
	}

	result, err := s.exporter.Run(r.Context(), month.Year(), month.Month())
	if err != nil {
		s.log.Error().Err(err).Str("month", req.Month).Msg("tax export failed")
		writeError(w, http.StatusBadGateway, "export failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleAuditDiff renders the field diff of an audit entry.
// POST /api/audit/diff {"old":{...},"new":{...}}
func handleAuditDiff(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("audit_diff")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Old map[string]any `json:"old"`
		New map[string]any `json:"new"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	changes := auditlog.Diff(req.Old, req.New)
	writeJSON(w, http.StatusOK, map[string]any{"changes": changes})
}

func decodeBody(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(out)
}
