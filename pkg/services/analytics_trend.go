package services

// EstimateTrend 系列の線形トレンドを平均に対する百分率で返す
// 2点未満の系列では0を返す。
func (s *AnalyticsService) EstimateTrend(values []float64) (float64, error) {
	const op = "EstimateTrend"
	for _, v := range values {
		if err := checkFinite(op, "values", v); err != nil {
			return 0, err
		}
	}
	return trendPercent(values), nil
}

// EstimateSeasonality 月次系列を index % 12 でグループ化し、月ごとの季節係数を返す
//
// 係数 = グループ平均 / 全体平均。観測のない月はマップに含まれない（呼び出し側で1.0とする）。
// 12か月に満たない系列では各グループが1標本となり、係数の精度は低い。
func (s *AnalyticsService) EstimateSeasonality(monthly []float64) (map[int]float64, error) {
	const op = "EstimateSeasonality"
	if len(monthly) == 0 {
		return nil, invalidInput(op, "monthly", "series must contain at least 1 month")
	}
	for _, v := range monthly {
		if err := checkFinite(op, "monthly", v); err != nil {
			return nil, err
		}
	}
	return seasonalFactors(monthly), nil
}

func trendPercent(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := calculateMean(values)
	if mean == 0 {
		return 0
	}
	return indexSlope(values) / mean * 100
}

func seasonalFactors(monthly []float64) map[int]float64 {
	groups := make(map[int][]float64, 12)
	for i, v := range monthly {
		groups[i%12] = append(groups[i%12], v)
	}

	overall := calculateMean(monthly)
	factors := make(map[int]float64, len(groups))
	for month, values := range groups {
		if overall == 0 {
			// 売上ゼロの系列には季節性がない
			factors[month] = 1.0
			continue
		}
		factors[month] = calculateMean(values) / overall
	}
	return factors
}
