package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/grigta/predmaint/internal/config"
	"github.com/grigta/predmaint/internal/models"
	"github.com/grigta/predmaint/internal/service"
	"github.com/grigta/predmaint/pkg/logger"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler HTTP обработчики сервиса предсказаний
type MaintenanceHandler struct {
	service  *service.MaintenanceService
	importer *service.DatasetImporter
	dataset  config.DatasetConfig
	logger   *logger.Logger
}

// NewMaintenanceHandler создает новый обработчик
func NewMaintenanceHandler(
	svc *service.MaintenanceService,
	importer *service.DatasetImporter,
	dataset config.DatasetConfig,
	log *logger.Logger,
) *MaintenanceHandler {
	return &MaintenanceHandler{
		service:  svc,
		importer: importer,
		dataset:  dataset,
		logger:   log,
	}
}

// GetPredictionHTTP предсказывает дату следующего обслуживания
func (h *MaintenanceHandler) GetPredictionHTTP(c *gin.Context) {
	start := time.Now()
	defer func() {
		service.RecordHTTPRequest("GET", "/equipment/:id/prediction", time.Since(start).Seconds(), c.Writer.Status())
	}()

	equipmentID := c.Param("id")
	category := c.Query("category")

	result, err := h.service.PredictNextMaintenance(c, equipmentID, category)
	if err != nil {
		h.renderError(c, err, "Failed to predict next maintenance")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetHealthScoreHTTP возвращает оценку здоровья оборудования
func (h *MaintenanceHandler) GetHealthScoreHTTP(c *gin.Context) {
	start := time.Now()
	defer func() {
		service.RecordHTTPRequest("GET", "/equipment/:id/health", time.Since(start).Seconds(), c.Writer.Status())
	}()

	equipmentID := c.Param("id")
	category := c.Query("category")

	score, err := h.service.GetHealthScore(c, equipmentID, category)
	if err != nil {
		h.renderError(c, err, "Failed to score equipment health")
		return
	}

	c.JSON(http.StatusOK, score)
}

// GetHistoryHTTP возвращает хронологию обслуживания оборудования
func (h *MaintenanceHandler) GetHistoryHTTP(c *gin.Context) {
	start := time.Now()
	defer func() {
		service.RecordHTTPRequest("GET", "/equipment/:id/history", time.Since(start).Seconds(), c.Writer.Status())
	}()

	equipmentID := c.Param("id")
	category := c.Query("category")

	history, err := h.service.GetHistory(c, equipmentID, category)
	if err != nil {
		h.renderError(c, err, "Failed to load maintenance history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"equipment_id": equipmentID,
		"history":      history,
	})
}

// ListCategoriesHTTP возвращает словарь категорий
func (h *MaintenanceHandler) ListCategoriesHTTP(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.service.ListCategories()})
}

// ImportDatasetHTTP запускает импорт рабочей книги
func (h *MaintenanceHandler) ImportDatasetHTTP(c *gin.Context) {
	start := time.Now()
	defer func() {
		service.RecordHTTPRequest("POST", "/datasets/import", time.Since(start).Seconds(), c.Writer.Status())
	}()

	var req struct {
		WorkbookPath   string `json:"workbook_path"`
		SourceSheet    string `json:"source_sheet"`
		ClassifiedPath string `json:"classified_path"`
	}
	// An empty body is valid: all parameters fall back to the config
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if req.WorkbookPath == "" {
		req.WorkbookPath = h.dataset.WorkbookPath
	}
	if req.SourceSheet == "" {
		req.SourceSheet = h.dataset.SourceSheet
	}
	if req.ClassifiedPath == "" {
		req.ClassifiedPath = h.dataset.ClassifiedPath
	}

	if req.WorkbookPath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Workbook path is required"})
		return
	}

	summary, err := h.importer.ImportWorkbook(c, req.WorkbookPath, req.SourceSheet, req.ClassifiedPath)
	if err != nil {
		h.renderError(c, err, "Failed to import dataset")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// renderError переводит доменные ошибки в HTTP статусы:
// NotFoundError отдается пользователю как есть, DataError как 422
func (h *MaintenanceHandler) renderError(c *gin.Context, err error, msg string) {
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error()})
		return
	}

	var dataErr *models.DataError
	if errors.As(err, &dataErr) {
		h.logger.WithError(err).Warn(msg)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": dataErr.Error()})
		return
	}

	h.logger.WithError(err).Error(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}
