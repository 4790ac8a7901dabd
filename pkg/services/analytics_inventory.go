package services

import (
	"fmt"
	"math"

	"bizops-analytics-api/pkg/models"
)

// stockTolerance 推奨在庫との差がこの数量未満なら現状維持とみなす
const stockTolerance = 0.5

// OptimizeInventory 商品ごとに安全在庫・発注点・経済的発注量(EOQ)・推奨在庫を算出する
func (s *AnalyticsService) OptimizeInventory(products []models.InventoryItemSnapshot) (*models.InventoryOptimizationResult, error) {
	const op = "OptimizeInventory"
	if len(products) == 0 {
		return nil, invalidInput(op, "products", "at least 1 product is required")
	}
	for i, p := range products {
		if p.ID == "" {
			return nil, invalidInput(op, "id", "product %d has no id", i)
		}
		if err := validateSnapshot(op, p); err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
	}

	recommendations := make([]models.InventoryRecommendation, 0, len(products))
	savings := make([]float64, 0, len(products))
	for _, p := range products {
		rec, err := s.optimizeProduct(op, p)
		if err != nil {
			return nil, fmt.Errorf("product %q: %w", p.ID, err)
		}
		recommendations = append(recommendations, rec)
		savings = append(savings, rec.EstimatedSavings)
	}

	total := sumMoney(savings)
	if err := checkOverflow(op, "total_potential_savings", total); err != nil {
		return nil, err
	}
	return &models.InventoryOptimizationResult{
		Recommendations:       recommendations,
		TotalPotentialSavings: roundMoney(total),
	}, nil
}

func validateSnapshot(op string, p models.InventoryItemSnapshot) error {
	if len(p.DemandHistory) < 2 {
		return invalidInput(op, "demand_history", "at least 2 observations are required, got %d", len(p.DemandHistory))
	}
	for _, d := range p.DemandHistory {
		if err := checkNonNegative(op, "demand_history", d); err != nil {
			return err
		}
	}
	if err := checkNonNegative(op, "current_stock", p.CurrentStock); err != nil {
		return err
	}
	if err := checkNonNegative(op, "lead_time_days", p.LeadTimeDays); err != nil {
		return err
	}
	if err := checkPositive(op, "unit_cost", p.UnitCost); err != nil {
		return err
	}
	return checkPositive(op, "holding_cost_pct_per_year", p.HoldingCostPctPerYear)
}

// optimizeProduct 1商品分の在庫方針
//
//	safetyStock  = z * σ * √L
//	reorderPoint = μ * L + safetyStock
//	EOQ          = √(2DS / H),  D = 365μ, S = 単価 × 発注コスト倍率, H = 保管費率 × 単価
func (s *AnalyticsService) optimizeProduct(op string, p models.InventoryItemSnapshot) (models.InventoryRecommendation, error) {
	avgDemand := calculateMean(p.DemandHistory)
	stdDevDemand := calculateStandardDeviation(p.DemandHistory)

	safetyStock := s.params.ServiceLevelZ * stdDevDemand * math.Sqrt(p.LeadTimeDays)
	reorderPoint := avgDemand*p.LeadTimeDays + safetyStock

	annualDemand := avgDemand * daysPerYear
	orderingCost := p.UnitCost * s.params.OrderingCostMultiplier
	holdingCost := p.HoldingCostPctPerYear / 100 * p.UnitCost
	eoq := math.Sqrt(2 * annualDemand * orderingCost / holdingCost)

	recommendedStock := reorderPoint + eoq/2
	savings := (p.CurrentStock/2)*holdingCost - (recommendedStock/2)*holdingCost
	if err := checkOverflow(op, "demand_history", avgDemand, stdDevDemand, reorderPoint); err != nil {
		return models.InventoryRecommendation{}, err
	}
	if err := checkOverflow(op, "economic_order_quantity", eoq, recommendedStock); err != nil {
		return models.InventoryRecommendation{}, err
	}
	if err := checkOverflow(op, "estimated_savings", savings); err != nil {
		return models.InventoryRecommendation{}, err
	}

	return models.InventoryRecommendation{
		ProductID:             p.ID,
		CurrentStock:          p.CurrentStock,
		RecommendedStock:      recommendedStock,
		ReorderPoint:          reorderPoint,
		SafetyStock:           safetyStock,
		EconomicOrderQuantity: eoq,
		EstimatedSavings:      roundMoney(savings),
		StockAction:           stockAction(p.CurrentStock, recommendedStock),
	}, nil
}

// stockAction 負の節約額は「在庫を増やす」として明示する
func stockAction(current, recommended float64) string {
	switch diff := current - recommended; {
	case math.Abs(diff) < stockTolerance:
		return models.StockActionMaintain
	case diff > 0:
		return models.StockActionReduce
	default:
		return models.StockActionIncrease
	}
}
