package config

import (
	"fmt"
	"os"

	"bizops-analytics-api/pkg/services"

	"gopkg.in/yaml.v3"
)

// AnalyticsProfile は分析パラメータを上書きするYAMLファイルの構造です。
// 指定のない項目は設計定数のまま残ります。
//
//	inventory:
//	  service_level_z: 1.96
//	churn:
//	  inactivity_weight: 0.6
//	  order_frequency_weight: 0.3
//	  spending_weight: 0.1
type AnalyticsProfile struct {
	Inventory struct {
		ServiceLevelZ          *float64 `yaml:"service_level_z"`
		OrderingCostMultiplier *float64 `yaml:"ordering_cost_multiplier"`
	} `yaml:"inventory"`

	Churn struct {
		InactivityWeight      *float64 `yaml:"inactivity_weight"`
		OrderFrequencyWeight  *float64 `yaml:"order_frequency_weight"`
		SpendingWeight        *float64 `yaml:"spending_weight"`
		InactivityHorizonDays *float64 `yaml:"inactivity_horizon_days"`
		OrderCountSaturation  *float64 `yaml:"order_count_saturation"`
		SpendSaturation       *float64 `yaml:"spend_saturation"`
	} `yaml:"churn"`

	Forecast struct {
		TrendWindow *int     `yaml:"trend_window"`
		NoiseRatio  *float64 `yaml:"noise_ratio"`
	} `yaml:"forecast"`
}

// LoadAnalyticsProfile はYAMLファイルから分析プロファイルを読み込む
func LoadAnalyticsProfile(path string) (*AnalyticsProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("分析プロファイルの読み込みに失敗: %w", err)
	}

	var profile AnalyticsProfile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("YAMLのパースに失敗: %w", err)
	}
	return &profile, nil
}

// Apply はプロファイルで指定された項目だけをparamsに反映する
func (p *AnalyticsProfile) Apply(params *services.Params) {
	setFloat(&params.ServiceLevelZ, p.Inventory.ServiceLevelZ)
	setFloat(&params.OrderingCostMultiplier, p.Inventory.OrderingCostMultiplier)
	setFloat(&params.InactivityWeight, p.Churn.InactivityWeight)
	setFloat(&params.OrderFrequencyWeight, p.Churn.OrderFrequencyWeight)
	setFloat(&params.SpendingWeight, p.Churn.SpendingWeight)
	setFloat(&params.InactivityHorizonDays, p.Churn.InactivityHorizonDays)
	setFloat(&params.OrderCountSaturation, p.Churn.OrderCountSaturation)
	setFloat(&params.SpendSaturation, p.Churn.SpendSaturation)
	setFloat(&params.NoiseRatio, p.Forecast.NoiseRatio)
	if p.Forecast.TrendWindow != nil {
		params.TrendWindow = *p.Forecast.TrendWindow
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
