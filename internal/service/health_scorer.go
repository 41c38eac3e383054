package service

import (
	"math"

	"github.com/grigta/predmaint/internal/models"
)

// HealthScorer вычисляет оценку здоровья оборудования по среднему
// интервалу между обслуживаниями
type HealthScorer struct{}

// NewHealthScorer создает новый скорер
func NewHealthScorer() *HealthScorer {
	return &HealthScorer{}
}

// Score возвращает оценку 0-100 и текстовый статус.
// Пороги статусов унаследованы как есть, включая разрыв (10, 50]
// и особую трактовку ровно 100 против открытого интервала выше 50.
func (s *HealthScorer) Score(equipmentID string, records []models.MaintenanceRecord, category string) (*models.HealthScore, error) {
	history := historyFor(records, equipmentID)
	if len(history) == 0 {
		return nil, &models.NotFoundError{EquipmentID: equipmentID, Category: category}
	}

	meanInterval := meanIntervalDays(history)
	score := clampScore((meanInterval / 7) * 20)

	return &models.HealthScore{
		EquipmentID:      equipmentID,
		Score:            score,
		Status:           healthStatus(score),
		MeanIntervalDays: meanInterval,
	}, nil
}

func clampScore(raw float64) float64 {
	return math.Max(0, math.Min(100, raw))
}

// healthStatus пороги оцениваются строго в этом порядке
func healthStatus(score float64) string {
	switch {
	case score < 10:
		return models.StatusImmediate
	case score == 100:
		return models.StatusExcellent
	case score > 50:
		return models.StatusGood
	default:
		return models.StatusService
	}
}
