package service

import (
	"testing"
	"time"

	"github.com/grigta/predmaint/internal/models"
	"github.com/grigta/predmaint/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRegressor deterministic stand-in for the least-squares model
type stubRegressor struct {
	fitErr     error
	predictErr error
	output     float64

	fitRows int
}

func (s *stubRegressor) Fit(features [][]float64, targets []float64) error {
	s.fitRows = len(features)
	return s.fitErr
}

func (s *stubRegressor) Predict(features []float64) (float64, error) {
	return s.output, s.predictErr
}

func record(equipmentID string, date time.Time, category string) models.MaintenanceRecord {
	return models.MaintenanceRecord{
		EquipmentID:  equipmentID,
		NotifDate:    date,
		CreatedAt:    date.Add(9 * time.Hour),
		SystemStatus: "NOCO",
		Category:     category,
		Branch:       "mechanical",
		Month:        int(date.Month()),
		Hour:         9,
	}
}

// eq100Records is the worked example: gaps of 14 and 17 days,
// mean interval 15.5 days
func eq100Records() []models.MaintenanceRecord {
	return []models.MaintenanceRecord{
		record("EQ-100", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), models.CategoryRepair),
		record("EQ-100", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC), models.CategoryRepair),
		record("EQ-100", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), models.CategoryPreventive),
	}
}

func newStubPredictor(stub *stubRegressor) *Predictor {
	return NewPredictor(func() Regressor { return stub }, logger.NewNop())
}

func TestPredictUnknownEquipment(t *testing.T) {
	predictor := newStubPredictor(&stubRegressor{})

	_, err := predictor.Predict("EQ-404", eq100Records(), "")

	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "EQ-404")
}

func TestPredictUnknownEquipmentInCategory(t *testing.T) {
	predictor := newStubPredictor(&stubRegressor{})

	_, err := predictor.Predict("EQ-404", eq100Records(), models.CategoryRepair)

	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "EQ-404")
	assert.Contains(t, err.Error(), models.CategoryRepair)
}

func TestPredictModelPath(t *testing.T) {
	want := time.Date(2023, 2, 20, 0, 0, 0, 0, time.UTC)
	stub := &stubRegressor{output: float64(want.Unix())}
	predictor := newStubPredictor(stub)

	result, err := predictor.Predict("EQ-100", eq100Records(), "")
	require.NoError(t, err)

	assert.Equal(t, models.SourceModel, result.Source)
	assert.Equal(t, want, result.PredictedDate)
	assert.Equal(t, 3, stub.fitRows, "model is trained on the full record set")
	assert.InDelta(t, 15.5, result.MeanIntervalDays, 1e-9)
}

func TestPredictFallbackOnAbsurdOutput(t *testing.T) {
	// Epoch seconds far beyond year 9999
	stub := &stubRegressor{output: 1e18}
	predictor := newStubPredictor(stub)

	result, err := predictor.Predict("EQ-100", eq100Records(), "")
	require.NoError(t, err)

	assert.Equal(t, models.SourceIntervalFallback, result.Source)
	// 2023-02-01 + 15.5 days = 2023-02-16 12:00
	assert.Equal(t, time.Date(2023, 2, 16, 12, 0, 0, 0, time.UTC), result.PredictedDate)
}

func TestPredictFallbackOnNegativeOverflow(t *testing.T) {
	stub := &stubRegressor{output: -1e18}
	predictor := newStubPredictor(stub)

	result, err := predictor.Predict("EQ-100", eq100Records(), "")
	require.NoError(t, err)
	assert.Equal(t, models.SourceIntervalFallback, result.Source)
}

func TestPredictFallbackOnFitError(t *testing.T) {
	stub := &stubRegressor{fitErr: assert.AnError}
	predictor := newStubPredictor(stub)

	result, err := predictor.Predict("EQ-100", eq100Records(), "")
	require.NoError(t, err)
	assert.Equal(t, models.SourceIntervalFallback, result.Source)
}

func TestPredictSingleRecordHistory(t *testing.T) {
	// A single record leaves the mean interval undefined; the documented
	// convention is a zero-day interval, predicting the same date
	only := time.Date(2023, 5, 10, 0, 0, 0, 0, time.UTC)
	records := []models.MaintenanceRecord{record("EQ-1", only, models.CategoryRepair)}

	stub := &stubRegressor{output: 1e18}
	predictor := newStubPredictor(stub)

	result, err := predictor.Predict("EQ-1", records, "")
	require.NoError(t, err)

	assert.Equal(t, models.SourceIntervalFallback, result.Source)
	assert.Equal(t, only, result.PredictedDate)
	assert.Zero(t, result.MeanIntervalDays)
}

func TestPredictHistoryIsChronological(t *testing.T) {
	stub := &stubRegressor{output: 1e18}
	predictor := newStubPredictor(stub)

	records := append(eq100Records(),
		record("EQ-200", time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC), models.CategoryReplace))

	// Records arrive sorted from the preprocessor; EQ-200 interleaves
	result, err := predictor.Predict("EQ-100", records, "")
	require.NoError(t, err)

	require.Len(t, result.History, 3)
	assert.Equal(t, models.MaintenanceEvent{
		Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Category: models.CategoryRepair,
	}, result.History[0])
	assert.Equal(t, models.MaintenanceEvent{
		Date: time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), Category: models.CategoryPreventive,
	}, result.History[2])
	for i := 1; i < len(result.History); i++ {
		assert.False(t, result.History[i].Date.Before(result.History[i-1].Date))
	}
}

func TestMeanIntervalDays(t *testing.T) {
	history := eq100Records()
	assert.InDelta(t, 15.5, meanIntervalDays(history), 1e-9)

	assert.Zero(t, meanIntervalDays(history[:1]))
	assert.Zero(t, meanIntervalDays(nil))
}

func TestEncoderUnseenCategoricalValue(t *testing.T) {
	records := eq100Records()
	encoder := fitEncoder(records)

	unseen := record("EQ-100", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), "Never Seen Before")
	unseen.SystemStatus = "UNKNOWN-STATUS"
	unseen.Branch = "unknown-branch"

	row := encoder.encode(unseen)

	// All one-hot blocks follow the four numeric features and must be
	// all-zero for unseen values
	for i, v := range row[4:] {
		assert.Zero(t, v, "one-hot position %d", i)
	}
}

func TestEncoderOneHotSeenValue(t *testing.T) {
	records := eq100Records()
	encoder := fitEncoder(records)

	row := encoder.encode(records[0])

	sum := 0.0
	for _, v := range row[4:] {
		sum += v
	}
	// One hit per categorical block: status, category, branch
	assert.InDelta(t, 3, sum, 1e-9)
}

func TestPredictWithRealRegression(t *testing.T) {
	// End-to-end with the gonum model: the output is either a valid
	// calendar date from the model or the documented fallback
	predictor := NewPredictor(nil, logger.NewNop())

	result, err := predictor.Predict("EQ-100", eq100Records(), "")
	require.NoError(t, err)

	assert.Contains(t, []string{models.SourceModel, models.SourceIntervalFallback}, result.Source)
	assert.False(t, result.PredictedDate.IsZero())
}
