package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grigta/predmaint/internal/models"
	"github.com/grigta/predmaint/pkg/cache"
	"github.com/grigta/predmaint/pkg/logger"
)

// RecordSource источник записей обслуживания
type RecordSource interface {
	GetByScope(ctx context.Context, category string) ([]models.RawRecord, error)
	SnapshotByScope(ctx context.Context, category string) (models.DatasetSnapshot, error)
}

// PredictionCache опциональный кэш результатов предсказаний
type PredictionCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// MaintenanceService оркестрация запроса: загрузка выборки, препроцессинг,
// предсказание и оценка здоровья. Состояние между вызовами не разделяется,
// модель переобучается на каждый запрос.
type MaintenanceService struct {
	repo      RecordSource
	cache     PredictionCache // nil когда кэширование выключено
	predictor *Predictor
	scorer    *HealthScorer
	cacheTTL  time.Duration
	logger    *logger.Logger
}

// NewMaintenanceService создает сервис предсказаний
func NewMaintenanceService(
	repo RecordSource,
	predictionCache PredictionCache,
	predictor *Predictor,
	scorer *HealthScorer,
	cacheTTL time.Duration,
	log *logger.Logger,
) *MaintenanceService {
	return &MaintenanceService{
		repo:      repo,
		cache:     predictionCache,
		predictor: predictor,
		scorer:    scorer,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

// PredictNextMaintenance предсказывает дату следующего обслуживания
// оборудования, опционально в рамках одной категории
func (s *MaintenanceService) PredictNextMaintenance(ctx context.Context, equipmentID, category string) (*models.PredictionResult, error) {
	start := time.Now()
	defer func() {
		predictionDuration.Observe(time.Since(start).Seconds())
	}()

	// Ключ кэша привязан к снимку данных: другой набор или другой
	// размер выборки означает другой снимок и другой ключ
	cacheKey, snapshotOK := s.snapshotCacheKey(ctx, equipmentID, category)
	if snapshotOK {
		var cached models.PredictionResult
		if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil {
			cacheHits.Inc()
			return &cached, nil
		}
		cacheMisses.Inc()
	}

	records, err := s.loadScope(ctx, category)
	if err != nil {
		predictionErrors.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}

	result, err := s.predictor.Predict(equipmentID, records, category)
	if err != nil {
		predictionErrors.WithLabelValues(errorKind(err)).Inc()
		return nil, err
	}

	predictionsTotal.WithLabelValues(result.Source).Inc()

	if snapshotOK {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache prediction")
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"equipment_id":   equipmentID,
		"category":       category,
		"predicted_date": result.PredictedDate,
		"source":         result.Source,
	}).Debug("Prediction generated")

	return result, nil
}

// GetHealthScore возвращает оценку здоровья оборудования
func (s *MaintenanceService) GetHealthScore(ctx context.Context, equipmentID, category string) (*models.HealthScore, error) {
	records, err := s.loadScope(ctx, category)
	if err != nil {
		return nil, err
	}

	return s.scorer.Score(equipmentID, records, category)
}

// GetHistory возвращает хронологию обслуживания оборудования
func (s *MaintenanceService) GetHistory(ctx context.Context, equipmentID, category string) ([]models.MaintenanceEvent, error) {
	records, err := s.loadScope(ctx, category)
	if err != nil {
		return nil, err
	}

	history := historyFor(records, equipmentID)
	if len(history) == 0 {
		return nil, &models.NotFoundError{EquipmentID: equipmentID, Category: category}
	}

	events := make([]models.MaintenanceEvent, len(history))
	for i, rec := range history {
		events[i] = models.MaintenanceEvent{Date: rec.NotifDate, Category: rec.Category}
	}

	return events, nil
}

// ListCategories возвращает фиксированный словарь категорий
func (s *MaintenanceService) ListCategories() []string {
	return models.Categories()
}

// loadScope загружает и препроцессирует выборку записей
func (s *MaintenanceService) loadScope(ctx context.Context, category string) ([]models.MaintenanceRecord, error) {
	raw, err := s.repo.GetByScope(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to load records: %w", err)
	}

	return Preprocess(raw)
}

// snapshotCacheKey строит ключ (оборудование, категория, снимок данных).
// Снимок идентифицируется парой (dataset_id, число записей): переимпорт
// меняет dataset_id даже при совпадающем размере, и закэшированный
// результат старого набора никогда не переиспользуется. При недоступном
// кэше или снимке кэширование пропускается.
func (s *MaintenanceService) snapshotCacheKey(ctx context.Context, equipmentID, category string) (string, bool) {
	if s.cache == nil {
		return "", false
	}

	snapshot, err := s.repo.SnapshotByScope(ctx, category)
	if err != nil {
		s.logger.WithError(err).Warn("Failed to identify data snapshot, skipping cache")
		return "", false
	}

	scope := category
	if scope == "" {
		scope = "all"
	}

	return fmt.Sprintf("prediction:%s:%s:%s:%d", equipmentID, scope, snapshot.DatasetID, snapshot.Records), true
}

// errorKind метка ошибки для метрик
func errorKind(err error) string {
	var notFound *models.NotFoundError
	if errors.As(err, &notFound) {
		return "not_found"
	}

	var dataErr *models.DataError
	if errors.As(err, &dataErr) {
		return "data_error"
	}

	return "internal"
}

// Гарантия соответствия интерфейсу кэша
var _ PredictionCache = (*cache.RedisCache)(nil)
