package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/grigta/predmaint/internal/config"
	"github.com/grigta/predmaint/internal/models"
	"github.com/grigta/predmaint/internal/service"
	"github.com/grigta/predmaint/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRepo is an in-memory RecordSource
type stubRepo struct {
	records []models.RawRecord
	err     error
}

func (s *stubRepo) GetByScope(ctx context.Context, category string) ([]models.RawRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	if category == "" {
		return s.records, nil
	}
	var scoped []models.RawRecord
	for _, r := range s.records {
		if r.Category == category {
			scoped = append(scoped, r)
		}
	}
	return scoped, nil
}

func (s *stubRepo) SnapshotByScope(ctx context.Context, category string) (models.DatasetSnapshot, error) {
	records, err := s.GetByScope(ctx, category)
	return models.DatasetSnapshot{DatasetID: "ds-test", Records: int64(len(records))}, err
}

func newTestRouter(repo *stubRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	predictor := service.NewPredictor(nil, log)
	svc := service.NewMaintenanceService(repo, nil, predictor, service.NewHealthScorer(), time.Minute, log)
	importer := service.NewDatasetImporter(nil, log)
	handler := NewMaintenanceHandler(svc, importer, config.DatasetConfig{}, log)

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		v1.GET("/equipment/:id/prediction", handler.GetPredictionHTTP)
		v1.GET("/equipment/:id/health", handler.GetHealthScoreHTTP)
		v1.GET("/equipment/:id/history", handler.GetHistoryHTTP)
		v1.GET("/categories", handler.ListCategoriesHTTP)
		v1.POST("/datasets/import", handler.ImportDatasetHTTP)
	}
	return router
}

func eq100Raw() []models.RawRecord {
	return []models.RawRecord{
		{EquipmentID: "EQ-100", NotifDate: "01-01-2023", CreatedTime: "09:00:00", SystemStatus: "NOCO", Category: models.CategoryRepair},
		{EquipmentID: "EQ-100", NotifDate: "15-01-2023", CreatedTime: "09:30:00", SystemStatus: "NOCO", Category: models.CategoryRepair},
		{EquipmentID: "EQ-100", NotifDate: "01-02-2023", CreatedTime: "10:00:00", SystemStatus: "NOCO", Category: models.CategoryPreventive},
	}
}

func TestGetPredictionHTTP(t *testing.T) {
	router := newTestRouter(&stubRepo{records: eq100Raw()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment/EQ-100/prediction", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.PredictionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "EQ-100", result.EquipmentID)
	assert.Contains(t, []string{models.SourceModel, models.SourceIntervalFallback}, result.Source)
	assert.Len(t, result.History, 3)
}

func TestGetPredictionHTTPNotFound(t *testing.T) {
	router := newTestRouter(&stubRepo{records: eq100Raw()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment/EQ-999/prediction", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	// The user-facing message names the equipment identifier
	assert.Contains(t, w.Body.String(), "EQ-999")
}

func TestGetPredictionHTTPCategoryScope(t *testing.T) {
	router := newTestRouter(&stubRepo{records: eq100Raw()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment/EQ-100/prediction?category=Repair", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var result models.PredictionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.History, 2, "scope restricts training and history to one category")
}

func TestGetPredictionHTTPDataError(t *testing.T) {
	corrupt := eq100Raw()
	corrupt[0].NotifDate = "garbage"
	router := newTestRouter(&stubRepo{records: corrupt})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment/EQ-100/prediction", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetHealthScoreHTTP(t *testing.T) {
	router := newTestRouter(&stubRepo{records: eq100Raw()})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/equipment/EQ-100/health", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var score models.HealthScore
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &score))
	assert.InDelta(t, 44.2857, score.Score, 1e-3)
	assert.Equal(t, models.StatusService, score.Status)
}

func TestImportDatasetHTTPEmptyBody(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	// No body at all is valid: parameters fall back to the config, and
	// with no configured workbook path the complaint is about the path
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/import", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Workbook path is required")
}

func TestImportDatasetHTTPBadWorkbookPath(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	body := strings.NewReader(`{"workbook_path": "/nonexistent/Dataset.xlsx", "source_sheet": "Sheet1"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets/import", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	// A caller mistake (unreadable workbook) is not an internal error
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestListCategoriesHTTP(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.CategoryOther)
}
