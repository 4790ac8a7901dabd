package services

import (
	"math"
)

// 在庫最適化の設計定数
const (
	// DefaultServiceLevelZ 正規分布で約95%のサービスレベルに相当するz値
	DefaultServiceLevelZ = 1.65
	// DefaultOrderingCostMultiplier 発注コストを単価の何倍と見なすか
	DefaultOrderingCostMultiplier = 10.0
	daysPerYear                   = 365.0
)

// 解約リスクスコアの設計定数
const (
	DefaultInactivityWeight      = 0.5
	DefaultOrderFrequencyWeight  = 0.3
	DefaultSpendingWeight        = 0.2
	DefaultInactivityHorizonDays = 180.0
	DefaultOrderCountSaturation  = 50.0
	DefaultSpendSaturation       = 1000.0

	RiskFactorThreshold = 0.6
	HighRiskThreshold   = 0.7
	MediumRiskThreshold = 0.5
)

// 需要予測・売上予測の設計定数
const (
	DefaultTrendWindow     = 7
	DefaultNoiseRatio      = 0.1
	baseDemandConfidence   = 0.9
	demandConfidenceDecay  = 0.01
	trendStableBand        = 0.1
	revenueConfidenceStart = 0.95
	revenueConfidenceEnd   = 0.80

	// MaxDaysAhead / MaxRevenueMonths 1回のリクエストで予測できる期間の上限
	MaxDaysAhead     = 366
	MaxRevenueMonths = 120
)

// 推薦スコアの設計定数
const (
	categoryMatchScore   = 0.4
	priceMatchScore      = 0.3
	popularityWeight     = 0.2
	priceTolerance       = 0.5
	preferredCategoryTop = 3
)

// DefaultAnomalyThreshold 異常判定に使う標準偏差の倍数
const DefaultAnomalyThreshold = 2.5

// Params 分析エンジンの調整パラメータ。構築時に固定され、呼び出しごとには変更できない。
type Params struct {
	ServiceLevelZ          float64 `json:"service_level_z"`
	OrderingCostMultiplier float64 `json:"ordering_cost_multiplier"`
	InactivityWeight       float64 `json:"inactivity_weight"`
	OrderFrequencyWeight   float64 `json:"order_frequency_weight"`
	SpendingWeight         float64 `json:"spending_weight"`
	InactivityHorizonDays  float64 `json:"inactivity_horizon_days"`
	OrderCountSaturation   float64 `json:"order_count_saturation"`
	SpendSaturation        float64 `json:"spend_saturation"`
	TrendWindow            int     `json:"trend_window"`
	NoiseRatio             float64 `json:"noise_ratio"`
}

// DefaultParams 設計定数から構成したパラメータを返す
func DefaultParams() Params {
	return Params{
		ServiceLevelZ:          DefaultServiceLevelZ,
		OrderingCostMultiplier: DefaultOrderingCostMultiplier,
		InactivityWeight:       DefaultInactivityWeight,
		OrderFrequencyWeight:   DefaultOrderFrequencyWeight,
		SpendingWeight:         DefaultSpendingWeight,
		InactivityHorizonDays:  DefaultInactivityHorizonDays,
		OrderCountSaturation:   DefaultOrderCountSaturation,
		SpendSaturation:        DefaultSpendSaturation,
		TrendWindow:            DefaultTrendWindow,
		NoiseRatio:             DefaultNoiseRatio,
	}
}

// Validate パラメータの整合性を検証
func (p Params) Validate() error {
	const op = "Params.Validate"
	positives := map[string]float64{
		"service_level_z":          p.ServiceLevelZ,
		"ordering_cost_multiplier": p.OrderingCostMultiplier,
		"inactivity_horizon_days":  p.InactivityHorizonDays,
		"order_count_saturation":   p.OrderCountSaturation,
		"spend_saturation":         p.SpendSaturation,
	}
	for field, v := range positives {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return configError(op, field, "must be a positive finite number, got %v", v)
		}
	}
	for field, w := range map[string]float64{
		"inactivity_weight":      p.InactivityWeight,
		"order_frequency_weight": p.OrderFrequencyWeight,
		"spending_weight":        p.SpendingWeight,
	} {
		if math.IsNaN(w) || w < 0 || w > 1 {
			return configError(op, field, "must be within [0, 1], got %v", w)
		}
	}
	if sum := p.InactivityWeight + p.OrderFrequencyWeight + p.SpendingWeight; math.Abs(sum-1) > 1e-9 {
		return configError(op, "weights", "churn weights must sum to 1, got %v", sum)
	}
	if p.TrendWindow < 1 {
		return configError(op, "trend_window", "must be at least 1, got %d", p.TrendWindow)
	}
	if math.IsNaN(p.NoiseRatio) || p.NoiseRatio < 0 || p.NoiseRatio > 1 {
		return configError(op, "noise_ratio", "must be within [0, 1], got %v", p.NoiseRatio)
	}
	return nil
}

// AnalyticsService 予測分析エンジン
//
// すべての操作は入力引数のみに依存する純粋な計算で、I/Oを行わない。
// 構築後は不変なので、複数のゴルーチンから同時に呼び出してよい。
type AnalyticsService struct {
	params Params
	noise  NoiseSource
}

// NewAnalyticsService 設計定数のパラメータで分析エンジンを作成
func NewAnalyticsService(noise NoiseSource) *AnalyticsService {
	if noise == nil {
		noise = ZeroNoise{}
	}
	return &AnalyticsService{
		params: DefaultParams(),
		noise:  noise,
	}
}

// NewAnalyticsServiceWithParams 調整済みパラメータで分析エンジンを作成
func NewAnalyticsServiceWithParams(params Params, noise NoiseSource) (*AnalyticsService, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	svc := NewAnalyticsService(noise)
	svc.params = params
	return svc, nil
}

// Params 現在有効なパラメータを返す
func (s *AnalyticsService) Params() Params {
	return s.params
}
