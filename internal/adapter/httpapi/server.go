// Package httpapi exposes the forecast table service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
)

// TableBuilder produces rendered forecast tables for stations.
type TableBuilder interface {
	Stations() []domain.Station
	BuildTable(ctx context.Context, stationID string, ref time.Time) (domain.RenderedTable, domain.ModelCycle, error)
}

// SpreadsheetWriter serializes a rendered table into a spreadsheet stream.
type SpreadsheetWriter interface {
	WriteTable(w io.Writer, table domain.RenderedTable) error
}

// Server exposes the bulletin API plus health and metrics endpoints.
type Server struct {
	httpServer *http.Server
	builder    TableBuilder
	sheets     SpreadsheetWriter
	logger     *slog.Logger
}

// NewServer creates the HTTP server with all routes registered.
func NewServer(addr string, builder TableBuilder, sheets SpreadsheetWriter, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		builder: builder,
		sheets:  sheets,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/info", s.handleInfo)
	mux.HandleFunc("GET /api/stations", s.handleStations)
	mux.HandleFunc("GET /api/bull/{station}", s.handleBulletin)
	mux.HandleFunc("GET /api/bull/{station}/xlsx", s.handleBulletinXLSX)

	handler := Chain(mux,
		Recovery(logger),
		Logging(logger),
		Timeout(60*time.Second),
	)

	s.httpServer = &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "wave-bulletin-service",
		"source":  "GFS bulls.tHHz",
		"notes":   "Use /api/bull/{station} for the latest forecast table. Forecast hours are offsets from the model cycle.",
	})
}

type stationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleStations(w http.ResponseWriter, _ *http.Request) {
	stations := s.builder.Stations()
	out := make([]stationResponse, 0, len(stations))
	for _, st := range stations {
		out = append(out, stationResponse{ID: st.ID, Name: st.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": out})
}

type rowResponse struct {
	Kind  string   `json:"kind"`
	Cells []string `json:"cells"`
}

type bulletinResponse struct {
	Station    string        `json:"station"`
	Cycle      string        `json:"cycle"`
	CycleLabel string        `json:"cycle_label"`
	Rows       []rowResponse `json:"rows"`
}

func (s *Server) handleBulletin(w http.ResponseWriter, r *http.Request) {
	table, cycle, ok := s.buildTable(w, r)
	if !ok {
		return
	}

	resp := bulletinResponse{
		Station:    r.PathValue("station"),
		Cycle:      cycle.String(),
		CycleLabel: cycle.Label(),
		Rows:       make([]rowResponse, 0, len(table.Rows)),
	}
	for _, row := range table.Rows {
		resp.Rows = append(resp.Rows, rowResponse{Kind: string(row.Kind), Cells: row.Cells})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBulletinXLSX(w http.ResponseWriter, r *http.Request) {
	table, cycle, ok := s.buildTable(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("%s_%s_%sz.xlsx", r.PathValue("station"), cycle.YMD(), cycle.HH())
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.sheets.WriteTable(w, table); err != nil {
		// Headers are already out; all that remains is logging.
		s.logger.Error("spreadsheet write failed", "station", r.PathValue("station"), "error", err)
	}
}

// buildTable runs the shared resolve-fetch-parse-format flow and writes the
// error response itself when the flow fails.
func (s *Server) buildTable(w http.ResponseWriter, r *http.Request) (domain.RenderedTable, domain.ModelCycle, bool) {
	ref, err := referenceTime(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return domain.RenderedTable{}, domain.ModelCycle{}, false
	}

	table, cycle, err := s.builder.BuildTable(r.Context(), r.PathValue("station"), ref)
	if err != nil {
		s.logger.Warn("table build failed",
			"station", r.PathValue("station"), "error", err)
		writeError(w, statusForError(err), err)
		return domain.RenderedTable{}, domain.ModelCycle{}, false
	}
	return table, cycle, true
}

// referenceTime returns the time the candidate walk starts from: the "at"
// query parameter when given, the current time otherwise.
func referenceTime(r *http.Request) (time.Time, error) {
	at := r.URL.Query().Get("at")
	if at == "" {
		return domain.Now(), nil
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid at parameter: %w", err)
	}
	return t.UTC(), nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrUnknownStation),
		errors.Is(err, domain.ErrNoCycleAvailable),
		errors.Is(err, domain.ErrBulletinNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response body
}
