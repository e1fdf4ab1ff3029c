package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/recon-engine/pkg/apperrors"
	"github.com/ekaya-inc/recon-engine/pkg/config"
	"github.com/ekaya-inc/recon-engine/pkg/logging"
	"github.com/ekaya-inc/recon-engine/pkg/models"
	"github.com/ekaya-inc/recon-engine/pkg/repositories"
	"github.com/ekaya-inc/recon-engine/pkg/services"
)

// ReconcileRequest is the JSON body for POST /api/v1/reconcile. It mirrors
// the YAML job document; inline fields are arrays so column order survives
// decoding.
type ReconcileRequest struct {
	Name             string                   `json:"name"`
	Source           SideRequest              `json:"source"`
	Target           SideRequest              `json:"target"`
	ExclusionColumns []string                 `json:"exclusion_columns"`
	AllowList        string                   `json:"allow_list"`
	Labels           map[string]string        `json:"labels"`
	Datasources      map[string]SourceRequest `json:"datasources"`
}

// SideRequest describes one side of the reconciliation request.
type SideRequest struct {
	Datasource string         `json:"datasource"`
	Schema     string         `json:"schema"`
	Table      string         `json:"table"`
	Fields     []FieldRequest `json:"fields"`
}

// FieldRequest is one inline column declaration.
type FieldRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SourceRequest declares a datasource type and its connection options.
type SourceRequest struct {
	Type    string         `json:"type"`
	Options map[string]any `json:"options"`
}

// ReconcileHandler exposes reconciliation runs over HTTP.
type ReconcileHandler struct {
	service *services.ReconcileService
	results repositories.ResultsRepository
	logger  *zap.Logger
}

// NewReconcileHandler creates a ReconcileHandler. The results repository may
// be nil when no results store is configured; the run-history endpoints then
// return 503.
func NewReconcileHandler(service *services.ReconcileService, results repositories.ResultsRepository, logger *zap.Logger) *ReconcileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconcileHandler{service: service, results: results, logger: logger}
}

// RegisterRoutes registers the reconcile handler's routes on the given mux.
func (h *ReconcileHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/reconcile", h.Reconcile)
	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}", h.GetRun)
}

// Reconcile handles POST /api/v1/reconcile requests. It runs the submitted
// job synchronously and returns the completed run, including per-column rows.
func (h *ReconcileHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req ReconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}

	run, err := h.service.Run(r.Context(), req.toJobSpec())
	if err != nil {
		h.writeRunError(w, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, run); err != nil {
		h.logger.Error("Failed to encode reconcile response", zap.Error(err))
	}
}

// ListRuns handles GET /api/v1/runs requests. Returns recent runs without
// their per-column rows, newest first. Accepts an optional limit parameter.
func (h *ReconcileHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "no_results_store", "results store is not configured")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			_ = ErrorResponse(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := h.results.ListRuns(r.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to list runs", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to list runs")
		return
	}

	if runs == nil {
		runs = []*models.ValidationRun{}
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"runs": runs}); err != nil {
		h.logger.Error("Failed to encode runs response", zap.Error(err))
	}
}

// GetRun handles GET /api/v1/runs/{id} requests. Returns one persisted run
// with its per-column rows.
func (h *ReconcileHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	if h.results == nil {
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "no_results_store", "results store is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_run_id", "run id must be a UUID")
		return
	}

	run, err := h.results.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "run_not_found", "no run with that id")
			return
		}
		h.logger.Error("Failed to load run", zap.String("run_id", runID.String()), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load run")
		return
	}

	if err := WriteJSON(w, http.StatusOK, run); err != nil {
		h.logger.Error("Failed to encode run response", zap.Error(err))
	}
}

func (h *ReconcileHandler) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrMalformedAllowList):
		_ = ErrorResponse(w, http.StatusBadRequest, "malformed_allow_list", err.Error())
	case errors.Is(err, apperrors.ErrUnknownDatasourceType):
		_ = ErrorResponse(w, http.StatusBadRequest, "unknown_datasource_type", err.Error())
	case errors.Is(err, apperrors.ErrUnsafeIdentifier):
		_ = ErrorResponse(w, http.StatusBadRequest, "unsafe_identifier", err.Error())
	default:
		// Driver errors can echo connection strings; never return them raw.
		h.logger.Error("Reconciliation run failed", zap.String("error", logging.SanitizeError(err)))
		_ = ErrorResponse(w, http.StatusInternalServerError, "reconcile_failed", logging.SanitizeError(err))
	}
}

func (r *ReconcileRequest) toJobSpec() *config.JobSpec {
	job := &config.JobSpec{
		Name:             r.Name,
		Source:           r.Source.toSideSpec(),
		Target:           r.Target.toSideSpec(),
		ExclusionColumns: r.ExclusionColumns,
		AllowListSpec:    r.AllowList,
		Labels:           r.Labels,
	}
	if len(r.Datasources) > 0 {
		job.Datasources = make(map[string]config.DatasourceSpec, len(r.Datasources))
		for name, ds := range r.Datasources {
			job.Datasources[name] = config.DatasourceSpec{Type: ds.Type, Options: ds.Options}
		}
	}
	return job
}

func (s *SideRequest) toSideSpec() config.SideSpec {
	side := config.SideSpec{
		Datasource: s.Datasource,
		Schema:     s.Schema,
		Table:      s.Table,
	}
	for _, f := range s.Fields {
		side.Fields = append(side.Fields, config.FieldSpec{Name: f.Name, Type: f.Type})
	}
	return side
}
