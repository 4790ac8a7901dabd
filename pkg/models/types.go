package models

// TimePoint represents a single observation of a numeric series
type TimePoint struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// DemandObservation represents the quantity ordered on a given day
type DemandObservation struct {
	Date     Date    `json:"date"`
	Quantity float64 `json:"quantity"`
}

// RevenueObservation represents the amount of a single order
type RevenueObservation struct {
	Date   Date    `json:"date"`
	Amount float64 `json:"amount"`
}

// ForecastPoint represents one projected future value
type ForecastPoint struct {
	Date              Date    `json:"date"`
	PredictedQuantity float64 `json:"predicted_quantity"`
	Confidence        float64 `json:"confidence"` // 0-1, non-increasing with horizon
}

// Trend direction labels
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// DemandForecastResult represents the output of a daily demand forecast
type DemandForecastResult struct {
	Predictions []ForecastPoint `json:"predictions"`
	Trend       string          `json:"trend"`        // increasing, decreasing or stable
	TrendFactor float64         `json:"trend_factor"` // recent/older ratio minus one
	Accuracy    float64         `json:"accuracy"`     // 1 - coefficient of variation, clamped to 0-1
}

// RevenueForecastResult represents the output of a monthly revenue forecast
type RevenueForecastResult struct {
	Forecast     []ForecastPoint    `json:"forecast"`
	Trend        float64            `json:"trend"`         // slope as a percentage of the mean
	Seasonality  map[int]float64    `json:"seasonality"`   // month index (0-11) -> factor
	SeriesStart  string             `json:"series_start"`  // YYYY-MM of month index 0
	MonthlyTotal []MonthlyAggregate `json:"monthly_total"` // historical buckets the forecast is based on
}

// MonthlyAggregate represents the revenue of one calendar month
type MonthlyAggregate struct {
	Month  string  `json:"month"` // YYYY-MM
	Amount float64 `json:"amount"`
}

// CustomerFeatureSet is a snapshot of a customer's purchasing behaviour
type CustomerFeatureSet struct {
	ID            string  `json:"id"`
	LastOrderDate *Date   `json:"last_order_date,omitempty"`
	OrderCount    int     `json:"order_count"`
	TotalSpent    float64 `json:"total_spent"`
	DaysInactive  float64 `json:"days_inactive"`
	AvgOrderValue float64 `json:"avg_order_value"`
}

// RiskAssessment represents the churn evaluation of one customer
type RiskAssessment struct {
	CustomerID      string             `json:"customer_id"`
	ChurnRisk       float64            `json:"churn_risk"` // 0-1
	RiskLevel       string             `json:"risk_level"` // high, medium, low
	FactorScores    map[string]float64 `json:"factor_scores"`
	RiskFactors     []string           `json:"risk_factors"`
	Recommendations []string           `json:"recommendations"`
}

// ChurnRiskResult represents the churn evaluation of a customer base
type ChurnRiskResult struct {
	RiskAssessment []RiskAssessment `json:"risk_assessment"`
	AverageRisk    float64          `json:"average_risk"`
	HighRiskCount  int              `json:"high_risk_count"`
}

// ProductCandidate represents a catalog product that may be recommended
type ProductCandidate struct {
	ID         string  `json:"id"`
	Name       string  `json:"name,omitempty"`
	Category   string  `json:"category"`
	Price      float64 `json:"price"`
	Popularity float64 `json:"popularity"` // 0-1
}

// PurchaseHistoryItem represents one past purchase of the target customer
type PurchaseHistoryItem struct {
	ProductID string  `json:"product_id"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
}

// Recommendation represents a recommended product with its score and explanation
type Recommendation struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name,omitempty"`
	Category  string  `json:"category"`
	Price     float64 `json:"price"`
	Score     float64 `json:"score"` // 0-1
	Reason    string  `json:"reason"`
}

// RecommendationResult represents the recommendations for one customer
type RecommendationResult struct {
	CustomerID      string           `json:"customer_id"`
	Recommendations []Recommendation `json:"recommendations"`
	DiversityScore  float64          `json:"diversity_score"`
}

// InventoryItemSnapshot represents the stock position and demand of one product
type InventoryItemSnapshot struct {
	ID                    string    `json:"id"`
	CurrentStock          float64   `json:"current_stock"`
	DemandHistory         []float64 `json:"demand_history"` // daily units
	LeadTimeDays          float64   `json:"lead_time_days"`
	UnitCost              float64   `json:"unit_cost"`
	HoldingCostPctPerYear float64   `json:"holding_cost_pct_per_year"`
}

// Stock action labels
const (
	StockActionReduce   = "reduce"
	StockActionIncrease = "increase"
	StockActionMaintain = "maintain"
)

// InventoryRecommendation represents the optimised stock policy of one product
type InventoryRecommendation struct {
	ProductID             string  `json:"product_id"`
	CurrentStock          float64 `json:"current_stock"`
	RecommendedStock      float64 `json:"recommended_stock"`
	ReorderPoint          float64 `json:"reorder_point"`
	SafetyStock           float64 `json:"safety_stock"`
	EconomicOrderQuantity float64 `json:"economic_order_quantity"`
	EstimatedSavings      float64 `json:"estimated_savings"` // negative when the policy costs more
	StockAction           string  `json:"stock_action"`      // reduce, increase or maintain
}

// InventoryOptimizationResult represents the optimisation of a product set
type InventoryOptimizationResult struct {
	Recommendations       []InventoryRecommendation `json:"recommendations"`
	TotalPotentialSavings float64                   `json:"total_potential_savings"`
}

// Anomaly severity labels
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Anomaly pattern labels
const (
	PatternAboveMean = "above_mean"
	PatternBelowMean = "below_mean"
	PatternAtMean    = "at_mean"
)

// Anomaly represents a series point that deviates from the mean
type Anomaly struct {
	Timestamp Date    `json:"timestamp"`
	Value     float64 `json:"value"`
	ZScore    float64 `json:"zscore"`   // Standard deviations from mean
	Severity  string  `json:"severity"` // low, medium or high
}

// AnomalyDetectionResult represents the anomalies found in a series
type AnomalyDetectionResult struct {
	Anomalies    []Anomaly `json:"anomalies"`
	AnomalyCount int       `json:"anomaly_count"`
	Pattern      string    `json:"pattern"` // position of the latest point relative to the mean
	Mean         float64   `json:"mean"`
	StdDev       float64   `json:"std_dev"`
}
