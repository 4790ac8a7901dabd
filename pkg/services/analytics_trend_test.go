package services

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTrend(t *testing.T) {
	svc := NewAnalyticsService(nil)

	testCases := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single point", []float64{42}, 0},
		{"constant", []float64{5, 5, 5, 5}, 0},
		{"zero mean", []float64{-1, 1}, 0},
		// slope 1, mean 2 -> 50%
		{"increasing", []float64{1, 2, 3}, 50},
		{"decreasing", []float64{3, 2, 1}, -50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			trend, err := svc.EstimateTrend(tc.values)
			require.NoError(t, err)
			assert.InDelta(t, tc.expected, trend, 1e-9)
		})
	}
}

func TestEstimateTrendRejectsNaN(t *testing.T) {
	svc := NewAnalyticsService(nil)

	_, err := svc.EstimateTrend([]float64{1, math.NaN()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEstimateSeasonalityConstantSeries(t *testing.T) {
	svc := NewAnalyticsService(nil)

	monthly := make([]float64, 24)
	for i := range monthly {
		monthly[i] = 1000
	}

	factors, err := svc.EstimateSeasonality(monthly)
	require.NoError(t, err)
	assert.Len(t, factors, 12)
	for month, f := range factors {
		assert.InDelta(t, 1.0, f, 1e-9, "month %d", month)
	}
}

func TestEstimateSeasonalityPeaks(t *testing.T) {
	svc := NewAnalyticsService(nil)

	// 12月(index 11)だけ売上が倍
	monthly := make([]float64, 12)
	for i := range monthly {
		monthly[i] = 100
	}
	monthly[11] = 200

	factors, err := svc.EstimateSeasonality(monthly)
	require.NoError(t, err)

	overall := 1300.0 / 12
	assert.InDelta(t, 200/overall, factors[11], 1e-9)
	assert.InDelta(t, 100/overall, factors[0], 1e-9)
	assert.Greater(t, factors[11], 1.0)
}

func TestEstimateSeasonalityShortAndZeroSeries(t *testing.T) {
	svc := NewAnalyticsService(nil)

	factors, err := svc.EstimateSeasonality([]float64{10, 30})
	require.NoError(t, err)
	assert.Len(t, factors, 2)
	assert.InDelta(t, 0.5, factors[0], 1e-9)
	assert.InDelta(t, 1.5, factors[1], 1e-9)

	factors, err = svc.EstimateSeasonality([]float64{0, 0, 0})
	require.NoError(t, err)
	for _, f := range factors {
		assert.Equal(t, 1.0, f)
	}

	_, err = svc.EstimateSeasonality(nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
