package services

import (
	"math"

	"bizops-analytics-api/pkg/models"
)

// DetectAnomalies Zスコアが閾値を超える点を異常として検出する
//
// 母平均・母標準偏差で評価する。定数系列では標準偏差を1とみなすため、異常は検出されない。
func (s *AnalyticsService) DetectAnomalies(series []models.TimePoint, threshold float64) (*models.AnomalyDetectionResult, error) {
	const op = "DetectAnomalies"
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return nil, configError(op, "threshold", "must be a positive number, got %v", threshold)
	}
	if len(series) == 0 {
		return nil, invalidInput(op, "series", "at least 1 point is required")
	}
	values := make([]float64, len(series))
	latest := 0
	for i, p := range series {
		if p.Date.IsZero() {
			return nil, invalidInput(op, "series", "point %d has no date", i)
		}
		if err := checkFinite(op, "value", p.Value); err != nil {
			return nil, err
		}
		values[i] = p.Value
		if !p.Date.Before(series[latest].Date.Time) {
			latest = i
		}
	}

	mean := calculateMean(values)
	stdDev := calculateStandardDeviation(values)
	if err := checkOverflow(op, "value", mean, stdDev); err != nil {
		return nil, err
	}
	if stdDev == 0 {
		stdDev = 1
	}

	anomalies := []models.Anomaly{}
	for _, p := range series {
		zScore := (p.Value - mean) / stdDev
		if err := checkOverflow(op, "value", zScore); err != nil {
			return nil, err
		}
		if math.Abs(zScore) > threshold {
			anomalies = append(anomalies, models.Anomaly{
				Timestamp: p.Date,
				Value:     p.Value,
				ZScore:    zScore,
				Severity:  calculateSeverity(math.Abs(zScore)),
			})
		}
	}

	return &models.AnomalyDetectionResult{
		Anomalies:    anomalies,
		AnomalyCount: len(anomalies),
		Pattern:      latestPattern(series[latest].Value, mean),
		Mean:         mean,
		StdDev:       stdDev,
	}, nil
}

// calculateSeverity 異常の深刻度を計算
func calculateSeverity(absZScore float64) string {
	if absZScore > 4.0 {
		return models.SeverityHigh
	} else if absZScore > 3.0 {
		return models.SeverityMedium
	}
	return models.SeverityLow
}

// latestPattern 最新の点が平均より上か下か
func latestPattern(value, mean float64) string {
	eps := 1e-9 * math.Max(1, math.Abs(mean))
	switch {
	case value-mean > eps:
		return models.PatternAboveMean
	case mean-value > eps:
		return models.PatternBelowMean
	default:
		return models.PatternAtMean
	}
}
