package service

import (
	"testing"
	"time"

	"github.com/grigta/predmaint/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthStatusBoundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{9.9, models.StatusImmediate},
		{10, models.StatusService},
		{44.3, models.StatusService},
		{50, models.StatusService},
		{50.1, models.StatusGood},
		{99.9, models.StatusGood},
		{100, models.StatusExcellent},
		{0, models.StatusImmediate},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, healthStatus(tt.score), "score %v", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, clampScore(-12.5))
	assert.Equal(t, 100.0, clampScore(2500))
	assert.Equal(t, 44.3, clampScore(44.3))
	assert.Equal(t, 0.0, clampScore(0))
	assert.Equal(t, 100.0, clampScore(100))
}

func TestHealthScoreWorkedExample(t *testing.T) {
	scorer := NewHealthScorer()

	score, err := scorer.Score("EQ-100", eq100Records(), "")
	require.NoError(t, err)

	// mean interval 15.5 days -> (15.5/7)*20
	assert.InDelta(t, 44.2857, score.Score, 1e-3)
	assert.Equal(t, models.StatusService, score.Status)
	assert.InDelta(t, 15.5, score.MeanIntervalDays, 1e-9)
}

func TestHealthScoreClampsLongIntervals(t *testing.T) {
	scorer := NewHealthScorer()

	// One year between events pushes the raw score far beyond 100;
	// the clamp lands exactly on 100 which reads as Excellent
	records := []models.MaintenanceRecord{
		record("EQ-1", time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), models.CategoryRepair),
		record("EQ-1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), models.CategoryRepair),
	}

	score, err := scorer.Score("EQ-1", records, "")
	require.NoError(t, err)

	assert.Equal(t, 100.0, score.Score)
	assert.Equal(t, models.StatusExcellent, score.Status)
}

func TestHealthScoreNegativeSyntheticInterval(t *testing.T) {
	scorer := NewHealthScorer()

	// Unsorted synthetic input produces a negative interval; the score
	// still stays inside [0, 100]
	records := []models.MaintenanceRecord{
		record("EQ-1", time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC), models.CategoryRepair),
		record("EQ-1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), models.CategoryRepair),
	}

	score, err := scorer.Score("EQ-1", records, "")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, score.Score, 0.0)
	assert.LessOrEqual(t, score.Score, 100.0)
	assert.Equal(t, models.StatusImmediate, score.Status)
}

func TestHealthScoreSingleRecord(t *testing.T) {
	scorer := NewHealthScorer()

	records := []models.MaintenanceRecord{
		record("EQ-1", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), models.CategoryRepair),
	}

	score, err := scorer.Score("EQ-1", records, "")
	require.NoError(t, err)

	assert.Zero(t, score.Score)
	assert.Equal(t, models.StatusImmediate, score.Status)
}

func TestHealthScoreUnknownEquipment(t *testing.T) {
	scorer := NewHealthScorer()

	_, err := scorer.Score("EQ-404", eq100Records(), "")

	var notFound *models.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, err.Error(), "EQ-404")
}
