package services

import (
	"math"
	"sort"

	"bizops-analytics-api/pkg/models"
)

// ForecastDemand 日次の需要系列から daysAhead 日先までの数量を予測する
//
// 直近ウィンドウと一つ前のウィンドウの正規化平均の比からトレンド係数を求め、
// 最終実績値に線形に適用する。14日未満の系列でもウィンドウを縮めて予測を返す。
// 同じ日の観測は合算されるため、集計後に2日分以上の系列が必要。
func (s *AnalyticsService) ForecastDemand(orders []models.DemandObservation, daysAhead int) (*models.DemandForecastResult, error) {
	const op = "ForecastDemand"
	if daysAhead <= 0 || daysAhead > MaxDaysAhead {
		return nil, configError(op, "days_ahead", "must be between 1 and %d, got %d", MaxDaysAhead, daysAhead)
	}
	if len(orders) < 2 {
		return nil, invalidInput(op, "orders", "at least 2 observations are required, got %d", len(orders))
	}
	for i, o := range orders {
		if o.Date.IsZero() {
			return nil, invalidInput(op, "orders", "observation %d has no date", i)
		}
		if err := checkNonNegative(op, "quantity", o.Quantity); err != nil {
			return nil, err
		}
	}

	dates, quantities := aggregateDaily(orders)
	if len(quantities) < 2 {
		return nil, invalidInput(op, "orders", "at least 2 distinct days are required, got %d", len(quantities))
	}
	if err := checkOverflow(op, "quantity", quantities...); err != nil {
		return nil, err
	}
	trendFactor := s.demandTrendFactor(quantities)
	if err := checkOverflow(op, "quantity", trendFactor); err != nil {
		return nil, err
	}

	last := quantities[len(quantities)-1]
	lastDate := dates[len(dates)-1]
	predictions := make([]models.ForecastPoint, 0, daysAhead)
	for i := 1; i <= daysAhead; i++ {
		progress := float64(i) / float64(daysAhead)
		noise := s.params.NoiseRatio * last * s.noise.Noise()
		predicted := math.Round(math.Max(last*(1+trendFactor*progress)+noise, 0))
		if err := checkOverflow(op, "quantity", predicted); err != nil {
			return nil, err
		}

		predictions = append(predictions, models.ForecastPoint{
			Date:              lastDate.AddDays(i),
			PredictedQuantity: predicted,
			Confidence:        math.Max(0, baseDemandConfidence-demandConfidenceDecay*float64(i)),
		})
	}

	return &models.DemandForecastResult{
		Predictions: predictions,
		Trend:       trendLabel(trendFactor),
		TrendFactor: trendFactor,
		Accuracy:    forecastAccuracy(quantities),
	}, nil
}

// aggregateDaily 同じ日の観測を合計し、日付順に並べる
func aggregateDaily(orders []models.DemandObservation) ([]models.Date, []float64) {
	byDay := make(map[string]float64, len(orders))
	dayOf := make(map[string]models.Date, len(orders))
	for _, o := range orders {
		key := o.Date.String()
		byDay[key] += o.Quantity
		dayOf[key] = models.DateOf(o.Date.Time)
	}
	dates := make([]models.Date, 0, len(byDay))
	for _, d := range dayOf {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })

	quantities := make([]float64, len(dates))
	for i, d := range dates {
		quantities[i] = byDay[d.String()]
	}
	return dates, quantities
}

// demandTrendFactor 直近ウィンドウ平均 / 前ウィンドウ平均 - 1 を [-1, 1] に収めて返す
func (s *AnalyticsService) demandTrendFactor(quantities []float64) float64 {
	n := len(quantities)
	window := s.params.TrendWindow
	if n/2 < window {
		window = n / 2
	}
	if window == 0 {
		return 0
	}

	normalized := normalizeMinMax(quantities)
	recent := calculateMean(normalized[n-window:])
	older := calculateMean(normalized[n-2*window : n-window])
	if older == 0 {
		// 前ウィンドウが最小値ばかりのときは比が定義できないので差分を使う
		return clamp(recent, -1, 1)
	}
	return clamp(recent/older-1, -1, 1)
}

// normalizeMinMax 観測値を [0, 1] に正規化する。最大値と最小値が等しい系列はすべて0。
func normalizeMinMax(values []float64) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	out := make([]float64, len(values))
	if hi == lo {
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

func trendLabel(trendFactor float64) string {
	switch {
	case trendFactor > trendStableBand:
		return models.TrendIncreasing
	case trendFactor < -trendStableBand:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

// forecastAccuracy 1 - 変動係数。ばらつきのない系列は1。
func forecastAccuracy(values []float64) float64 {
	stdDev := calculateStandardDeviation(values)
	if stdDev == 0 {
		return 1
	}
	mean := calculateMean(values)
	if mean <= 0 {
		return 0
	}
	return clamp01(1 - stdDev/mean)
}

// ForecastRevenue 注文金額を月次に集計し、months か月先までの売上を予測する
//
// 集計後の系列が2か月分以上必要。間の注文のない月は0として数える。
func (s *AnalyticsService) ForecastRevenue(orders []models.RevenueObservation, months int) (*models.RevenueForecastResult, error) {
	const op = "ForecastRevenue"
	if months <= 0 || months > MaxRevenueMonths {
		return nil, configError(op, "months", "must be between 1 and %d, got %d", MaxRevenueMonths, months)
	}
	if len(orders) < 2 {
		return nil, invalidInput(op, "orders", "at least 2 observations are required, got %d", len(orders))
	}
	for i, o := range orders {
		if o.Date.IsZero() {
			return nil, invalidInput(op, "orders", "observation %d has no date", i)
		}
		if err := checkNonNegative(op, "amount", o.Amount); err != nil {
			return nil, err
		}
	}

	start, buckets := aggregateMonthly(orders)
	if len(buckets) < 2 {
		return nil, invalidInput(op, "orders", "at least 2 months are required, got %d", len(buckets))
	}
	series := make([]float64, len(buckets))
	for i, b := range buckets {
		series[i] = b.Amount
	}
	if err := checkOverflow(op, "amount", series...); err != nil {
		return nil, err
	}

	trend := trendPercent(series)
	factors := seasonalFactors(series)
	if err := checkOverflow(op, "amount", trend); err != nil {
		return nil, err
	}
	for _, f := range factors {
		if err := checkOverflow(op, "amount", f); err != nil {
			return nil, err
		}
	}
	last := series[len(series)-1]

	forecast := make([]models.ForecastPoint, 0, months)
	for m := 1; m <= months; m++ {
		target := len(series) - 1 + m
		factor, ok := factors[target%12]
		if !ok {
			factor = 1.0
		}
		projected := math.Max(0, last*(1+trend/100)*factor)
		if err := checkOverflow(op, "amount", projected); err != nil {
			return nil, err
		}

		forecast = append(forecast, models.ForecastPoint{
			Date:              models.DateOf(start.AddDate(0, target, 0)),
			PredictedQuantity: roundMoney(projected),
			Confidence:        revenueConfidence(m, months),
		})
	}

	return &models.RevenueForecastResult{
		Forecast:     forecast,
		Trend:        trend,
		Seasonality:  factors,
		SeriesStart:  start.MonthKey(),
		MonthlyTotal: buckets,
	}, nil
}

// aggregateMonthly 月次の連続したバケットに集計する。注文のない月は0。
func aggregateMonthly(orders []models.RevenueObservation) (models.Date, []models.MonthlyAggregate) {
	amounts := make(map[string][]float64)
	first, last := orders[0].Date, orders[0].Date
	for _, o := range orders {
		key := o.Date.MonthKey()
		amounts[key] = append(amounts[key], o.Amount)
		if o.Date.Before(first.Time) {
			first = o.Date
		}
		if o.Date.After(last.Time) {
			last = o.Date
		}
	}

	start := models.NewDate(first.Year(), first.Month(), 1)
	end := models.NewDate(last.Year(), last.Month(), 1)
	var buckets []models.MonthlyAggregate
	for cur := start; !cur.After(end.Time); cur = models.DateOf(cur.AddDate(0, 1, 0)) {
		key := cur.MonthKey()
		buckets = append(buckets, models.MonthlyAggregate{
			Month:  key,
			Amount: sumMoney(amounts[key]),
		})
	}
	return start, buckets
}

// revenueConfidence 0.95 から 0.80 まで線形に減少する信頼度
func revenueConfidence(m, months int) float64 {
	if months <= 1 {
		return revenueConfidenceStart
	}
	step := (revenueConfidenceStart - revenueConfidenceEnd) / float64(months-1)
	return revenueConfidenceStart - step*float64(m-1)
}
