package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/recon-engine/pkg/adapters/datasource"
	"github.com/ekaya-inc/recon-engine/pkg/apperrors"
	"github.com/ekaya-inc/recon-engine/pkg/models"
	"github.com/ekaya-inc/recon-engine/pkg/repositories"
	"github.com/ekaya-inc/recon-engine/pkg/services"
)

type stubFactory struct{}

func (stubFactory) NewSchemaExtractor(ctx context.Context, dsType string, cfg map[string]any) (datasource.SchemaExtractor, error) {
	return nil, apperrors.ErrUnknownDatasourceType
}

func (stubFactory) ListTypes() []datasource.AdapterInfo { return nil }

type stubResults struct {
	runs  map[uuid.UUID]*models.ValidationRun
	saved []*models.ValidationRun
}

func (s *stubResults) SaveRun(ctx context.Context, run *models.ValidationRun) error {
	s.saved = append(s.saved, run)
	return nil
}

func (s *stubResults) GetRun(ctx context.Context, runID uuid.UUID) (*models.ValidationRun, error) {
	run, ok := s.runs[runID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return run, nil
}

func (s *stubResults) ListRuns(ctx context.Context, limit int) ([]*models.ValidationRun, error) {
	var out []*models.ValidationRun
	for _, run := range s.runs {
		out = append(out, run)
	}
	return out, nil
}

func newTestMux(results repositories.ResultsRepository) *http.ServeMux {
	svc := services.NewReconcileService(stubFactory{}, nil, nil)
	mux := http.NewServeMux()
	NewReconcileHandler(svc, results, nil).RegisterRoutes(mux)
	return mux
}

func TestReconcileInline(t *testing.T) {
	body := `{
		"source": {"fields": [
			{"name": "Station_ID", "type": "int64"},
			{"name": "Updated_At", "type": "timestamp"}
		]},
		"target": {"fields": [
			{"name": "station_id", "type": "int64"}
		]}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newTestMux(nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var run models.ValidationRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	require.Len(t, run.Rows, 2)
	assert.Equal(t, "station_id", run.Rows[0].SourceColumn)
	assert.Equal(t, "success", run.Rows[0].Status)
	assert.Equal(t, "N/A", run.Rows[1].TargetColumn)
	assert.Equal(t, "fail", run.Summary.Status)
}

func TestReconcileMalformedAllowList(t *testing.T) {
	body := `{
		"source": {"fields": [{"name": "a", "type": "int"}]},
		"target": {"fields": [{"name": "a", "type": "int"}]},
		"allow_list": "int:int:int"
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newTestMux(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "malformed_allow_list")
}

func TestReconcileInvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	newTestMux(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcileUnknownDatasource(t *testing.T) {
	body := `{
		"source": {"datasource": "dw", "table": "stations"},
		"target": {"fields": [{"name": "a", "type": "int"}]},
		"datasources": {"dw": {"type": "oracle", "options": {"host": "h"}}}
	}`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/reconcile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	newTestMux(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unknown_datasource_type")
}

func TestGetRun(t *testing.T) {
	run := &models.ValidationRun{ID: uuid.New(), SourceName: "a", TargetName: "b"}
	results := &stubResults{runs: map[uuid.UUID]*models.ValidationRun{run.ID: run}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+run.ID.String(), nil)
	rec := httptest.NewRecorder()
	newTestMux(results).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got models.ValidationRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
}

func TestGetRunNotFound(t *testing.T) {
	results := &stubResults{runs: map[uuid.UUID]*models.ValidationRun{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	newTestMux(results).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunBadID(t *testing.T) {
	results := &stubResults{}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	newTestMux(results).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunsEndpointsWithoutResultsStore(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	rec := httptest.NewRecorder()
	newTestMux(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
