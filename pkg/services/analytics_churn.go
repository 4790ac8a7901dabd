package services

import (
	"fmt"
	"math"

	"bizops-analytics-api/pkg/models"
)

// リスク帯ごとのラベル
const (
	RiskLevelHigh   = "high"
	RiskLevelMedium = "medium"
	RiskLevelLow    = "low"
)

// FactorScores のキー
const (
	FactorInactivity     = "inactivity"
	FactorOrderFrequency = "order_frequency"
	FactorSpending       = "spending"
)

// ScoreChurnRisk 顧客ごとの解約リスク(0-1)を算出する
//
// churnRisk = w1*未購入期間 + w2*注文頻度 + w3*購入単価。重みは構築時に固定。
func (s *AnalyticsService) ScoreChurnRisk(customers []models.CustomerFeatureSet) (*models.ChurnRiskResult, error) {
	const op = "ScoreChurnRisk"
	if len(customers) == 0 {
		return nil, invalidInput(op, "customers", "at least 1 customer is required")
	}
	for i, c := range customers {
		if c.ID == "" {
			return nil, invalidInput(op, "id", "customer %d has no id", i)
		}
		if c.OrderCount < 0 {
			return nil, invalidInput(op, "order_count", "customer %s: must not be negative, got %d", c.ID, c.OrderCount)
		}
		for field, v := range map[string]float64{
			"days_inactive":   c.DaysInactive,
			"total_spent":     c.TotalSpent,
			"avg_order_value": c.AvgOrderValue,
		} {
			if err := checkNonNegative(op, field, v); err != nil {
				return nil, err
			}
		}
	}

	assessments := make([]models.RiskAssessment, 0, len(customers))
	var totalRisk float64
	var highRiskCount int
	for _, c := range customers {
		a := s.assessCustomer(c)
		totalRisk += a.ChurnRisk
		if a.ChurnRisk > HighRiskThreshold {
			highRiskCount++
		}
		assessments = append(assessments, a)
	}

	return &models.ChurnRiskResult{
		RiskAssessment: assessments,
		AverageRisk:    totalRisk / float64(len(customers)),
		HighRiskCount:  highRiskCount,
	}, nil
}

// assessCustomer 1顧客分のリスク評価
func (s *AnalyticsService) assessCustomer(c models.CustomerFeatureSet) models.RiskAssessment {
	p := s.params
	inactivityScore := math.Min(c.DaysInactive/p.InactivityHorizonDays, 1)
	orderFrequencyScore := math.Max(1-float64(c.OrderCount)/p.OrderCountSaturation, 0)
	var spendingScore float64
	if c.AvgOrderValue > 0 {
		spendingScore = math.Max(1-c.AvgOrderValue/p.SpendSaturation, 0)
	}

	risk := clamp01(p.InactivityWeight*inactivityScore +
		p.OrderFrequencyWeight*orderFrequencyScore +
		p.SpendingWeight*spendingScore)

	factors := []string{}
	if inactivityScore > RiskFactorThreshold {
		factors = append(factors, fmt.Sprintf("長期間購入がありません（%.0f日）", c.DaysInactive))
	}
	if orderFrequencyScore > RiskFactorThreshold {
		factors = append(factors, fmt.Sprintf("注文回数が少ない（%d回）", c.OrderCount))
	}
	if spendingScore > RiskFactorThreshold {
		factors = append(factors, fmt.Sprintf("平均購入単価が低い（%.0f）", c.AvgOrderValue))
	}

	return models.RiskAssessment{
		CustomerID: c.ID,
		ChurnRisk:  risk,
		RiskLevel:  riskLevel(risk),
		FactorScores: map[string]float64{
			FactorInactivity:     inactivityScore,
			FactorOrderFrequency: orderFrequencyScore,
			FactorSpending:       spendingScore,
		},
		RiskFactors:     factors,
		Recommendations: retentionActions(risk),
	}
}

func riskLevel(risk float64) string {
	switch {
	case risk > HighRiskThreshold:
		return RiskLevelHigh
	case risk > MediumRiskThreshold:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// retentionActions リスク帯に応じた推奨施策
func retentionActions(risk float64) []string {
	switch riskLevel(risk) {
	case RiskLevelHigh:
		return []string{
			"個別の割引クーポンなどリテンションオファーを送付してください",
			"担当者からの直接フォローアップを検討してください",
		}
	case RiskLevelMedium:
		return []string{
			"おすすめ商品のメール配信でエンゲージメントを高めてください",
			"ロイヤルティプログラムへの参加を案内してください",
		}
	default:
		return []string{
			"通常のニュースレター配信を継続してください",
		}
	}
}
