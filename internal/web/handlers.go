package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/carta/internal/core"
	"github.com/JonMunkholm/carta/internal/logging"
)

// InfoResponse describes the API at the root path.
type InfoResponse struct {
	Name      string            `json:"name"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// ReloadResponse is returned by a successful forced reload.
type ReloadResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	core.ReloadResult
}

// StatusResponse wraps the cache health report.
type StatusResponse struct {
	Status    string      `json:"status"`
	Cache     core.Health `json:"cache"`
	Timestamp time.Time   `json:"timestamp"`
}

// handleInfo returns the service name, version and routes.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, InfoResponse{
		Name:    "Carta Contemplada API",
		Version: Version,
		Endpoints: map[string]string{
			"GET /api/records":         "List every record",
			"GET /api/records?status=": "Filter by status (available, sold, disponivel, vendida)",
			"GET /api/records/{id}":    "Get one record by identifier",
			"POST /api/reload":         "Force a dataset reload",
			"GET /api/status":          "Cache and dataset status",
			"GET /api/diagnostics":     "Rows rejected from the current snapshot",
		},
	})
}

// handleListRecords returns all records, optionally filtered by status.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.Records(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// handleGetRecord returns a single record by identifier.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.service.Record(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleReload forces the dataset to be read again.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	result, err := s.service.Reload(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Info("reload requested",
		"records", result.Count,
		"rejected", result.Rejected,
		"snapshot_id", result.SnapshotID,
		"duration_ms", elapsed(start),
	)

	writeJSON(w, http.StatusOK, ReloadResponse{
		Status:       "success",
		Message:      "cache reloaded",
		ReloadResult: result,
	})
}

// handleStatus reports cache freshness without loading the dataset.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:    "online",
		Cache:     s.service.Health(),
		Timestamp: time.Now(),
	})
}

// handleDiagnostics lists the rows rejected from the current snapshot.
func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	diag, err := s.service.Diagnostics(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, diag)
}
