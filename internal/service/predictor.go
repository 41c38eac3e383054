package service

import (
	"math"
	"sort"
	"time"

	"github.com/grigta/predmaint/internal/models"
	"github.com/grigta/predmaint/pkg/logger"

	"gonum.org/v1/gonum/stat"
)

// Диапазон меток времени, который модель может вернуть как валидную дату.
// Экстраполяция нерегуляризованной регрессии легко уходит за пределы
// календаря; такие значения уводят на интервальный фолбэк.
var (
	minValidUnix = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	maxValidUnix = time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC).Unix()
)

// Predictor обучает регрессию на всей выборке и предсказывает дату
// следующего обслуживания для конкретного оборудования
type Predictor struct {
	newRegressor func() Regressor
	logger       *logger.Logger
}

// NewPredictor создает предиктор; nil фабрика означает МНК на gonum
func NewPredictor(newRegressor func() Regressor, log *logger.Logger) *Predictor {
	if newRegressor == nil {
		newRegressor = NewLeastSquares
	}
	return &Predictor{
		newRegressor: newRegressor,
		logger:       log,
	}
}

// Predict обучает модель на records (уже отсортированных препроцессором,
// при необходимости уже суженных до категории) и предсказывает следующую
// дату обслуживания для equipmentID. category используется только в
// сообщении NotFoundError.
func (p *Predictor) Predict(equipmentID string, records []models.MaintenanceRecord, category string) (*models.PredictionResult, error) {
	history := historyFor(records, equipmentID)
	if len(history) == 0 {
		return nil, &models.NotFoundError{EquipmentID: equipmentID, Category: category}
	}

	last := history[len(history)-1]
	meanInterval := meanIntervalDays(history)

	encoder := fitEncoder(records)
	features := make([][]float64, len(records))
	targets := make([]float64, len(records))
	for i, rec := range records {
		features[i] = encoder.encode(rec)
		targets[i] = float64(rec.NotifDate.Unix())
	}

	// Модель переобучается на каждый запрос: никакого разделяемого
	// состояния между вызовами
	predicted, source := p.runModel(features, targets, encoder.encode(last))
	if source != models.SourceModel {
		predicted = last.NotifDate.Add(daysToDuration(meanInterval))
	}

	events := make([]models.MaintenanceEvent, len(history))
	for i, rec := range history {
		events[i] = models.MaintenanceEvent{Date: rec.NotifDate, Category: rec.Category}
	}

	return &models.PredictionResult{
		EquipmentID:      equipmentID,
		Category:         category,
		PredictedDate:    predicted,
		Source:           source,
		MeanIntervalDays: meanInterval,
		History:          events,
		GeneratedAt:      time.Now().UTC(),
	}, nil
}

// runModel обучает и опрашивает регрессию; любой дефект модели
// (вырожденная матрица, NaN, дата вне календаря) переводит на фолбэк
func (p *Predictor) runModel(features [][]float64, targets []float64, query []float64) (time.Time, string) {
	model := p.newRegressor()

	if err := model.Fit(features, targets); err != nil {
		p.logger.WithError(err).Debug("Regression fit failed, using interval fallback")
		return time.Time{}, models.SourceIntervalFallback
	}

	predicted, err := model.Predict(query)
	if err != nil {
		p.logger.WithError(err).Debug("Regression predict failed, using interval fallback")
		return time.Time{}, models.SourceIntervalFallback
	}

	if math.IsNaN(predicted) || math.IsInf(predicted, 0) ||
		predicted < float64(minValidUnix) || predicted > float64(maxValidUnix) {
		p.logger.WithField("predicted", predicted).Debug("Regression output outside calendar range, using interval fallback")
		return time.Time{}, models.SourceIntervalFallback
	}

	return time.Unix(int64(predicted), 0).UTC(), models.SourceModel
}

// historyFor выбирает хронологию оборудования, сохраняя порядок сортировки
func historyFor(records []models.MaintenanceRecord, equipmentID string) []models.MaintenanceRecord {
	var history []models.MaintenanceRecord
	for _, rec := range records {
		if rec.EquipmentID == equipmentID {
			history = append(history, rec)
		}
	}
	return history
}

// meanIntervalDays средний интервал в днях между последовательными датами
// уведомлений; для единственной записи интервал определен как ноль
func meanIntervalDays(history []models.MaintenanceRecord) float64 {
	if len(history) < 2 {
		return 0
	}

	diffs := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		diffs = append(diffs, history[i].NotifDate.Sub(history[i-1].NotifDate).Hours()/24)
	}

	return stat.Mean(diffs, nil)
}

func daysToDuration(days float64) time.Duration {
	return time.Duration(days * 24 * float64(time.Hour))
}

// featureEncoder стандартизация числовых признаков и one-hot кодирование
// категориальных; словари строятся по обучающей выборке
type featureEncoder struct {
	means []float64
	stds  []float64

	statusVocab   []string
	categoryVocab []string
	branchVocab   []string
}

// fitEncoder подбирает параметры кодирования по обучающей выборке
func fitEncoder(records []models.MaintenanceRecord) *featureEncoder {
	numeric := make([][]float64, 4)
	for i := range numeric {
		numeric[i] = make([]float64, len(records))
	}

	statusSet := make(map[string]struct{})
	categorySet := make(map[string]struct{})
	branchSet := make(map[string]struct{})

	for i, rec := range records {
		numeric[0][i] = float64(rec.Month)
		numeric[1][i] = float64(rec.Hour)
		numeric[2][i] = float64(rec.Minute)
		numeric[3][i] = float64(rec.Second)

		statusSet[rec.SystemStatus] = struct{}{}
		categorySet[rec.Category] = struct{}{}
		branchSet[rec.Branch] = struct{}{}
	}

	enc := &featureEncoder{
		means:         make([]float64, 4),
		stds:          make([]float64, 4),
		statusVocab:   sortedKeys(statusSet),
		categoryVocab: sortedKeys(categorySet),
		branchVocab:   sortedKeys(branchSet),
	}

	for i, column := range numeric {
		mean, std := stat.MeanStdDev(column, nil)
		if math.IsNaN(std) || std == 0 {
			// Колонка без разброса центрируется в ноль
			std = 1
		}
		enc.means[i] = mean
		enc.stds[i] = std
	}

	return enc
}

// encode строит вектор признаков записи; категориальное значение,
// отсутствующее в словаре, кодируется нулевым блоком, не отклоняется
func (e *featureEncoder) encode(rec models.MaintenanceRecord) []float64 {
	row := make([]float64, 0, 4+len(e.statusVocab)+len(e.categoryVocab)+len(e.branchVocab))

	numeric := []float64{float64(rec.Month), float64(rec.Hour), float64(rec.Minute), float64(rec.Second)}
	for i, v := range numeric {
		row = append(row, (v-e.means[i])/e.stds[i])
	}

	row = append(row, oneHot(e.statusVocab, rec.SystemStatus)...)
	row = append(row, oneHot(e.categoryVocab, rec.Category)...)
	row = append(row, oneHot(e.branchVocab, rec.Branch)...)

	return row
}

func oneHot(vocab []string, value string) []float64 {
	block := make([]float64, len(vocab))
	for i, v := range vocab {
		if v == value {
			block[i] = 1
			break
		}
	}
	return block
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
