package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"bizops-analytics-api/pkg/models"
	"bizops-analytics-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// 省略時のリクエストパラメータ
const (
	defaultDaysAhead           = 7
	defaultRevenueMonths       = 3
	defaultRecommendationLimit = 5
)

// AnalyticsHandler 予測分析APIのハンドラー
type AnalyticsHandler struct {
	service        *services.AnalyticsService
	maxUploadBytes int64
}

// NewAnalyticsHandler 新しい予測分析ハンドラーを作成
func NewAnalyticsHandler(service *services.AnalyticsService, maxUploadBytes int64) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// DemandForecastRequest 需要予測リクエスト
type DemandForecastRequest struct {
	Orders    []models.DemandObservation `json:"orders"`
	DaysAhead *int                       `json:"days_ahead"`
}

// ChurnRiskRequest 解約リスク評価リクエスト
type ChurnRiskRequest struct {
	Customers []models.CustomerFeatureSet `json:"customers"`
}

// RevenueForecastRequest 売上予測リクエスト
type RevenueForecastRequest struct {
	Orders []models.RevenueObservation `json:"orders"`
	Months *int                        `json:"months"`
}

// RecommendationRequest 商品推薦リクエスト
type RecommendationRequest struct {
	CustomerID string                       `json:"customer_id"`
	History    []models.PurchaseHistoryItem `json:"history"`
	Catalog    []models.ProductCandidate    `json:"catalog"`
	Limit      *int                         `json:"limit"`
}

// InventoryRequest 在庫最適化リクエスト
type InventoryRequest struct {
	Products []models.InventoryItemSnapshot `json:"products"`
}

// AnomalyRequest 異常検知リクエスト
type AnomalyRequest struct {
	Series    []models.TimePoint `json:"series"`
	Threshold *float64           `json:"threshold"`
}

// ForecastDemand 需要予測を実行
func (h *AnalyticsHandler) ForecastDemand(c *gin.Context) {
	var request DemandForecastRequest
	if !bindRequest(c, &request) {
		return
	}
	daysAhead := intOrDefault(request.DaysAhead, defaultDaysAhead)

	result, err := h.service.ForecastDemand(request.Orders, daysAhead)
	if err != nil {
		respondError(c, "需要予測", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("📈 [需要予測] 完了: analysis_id=%s 観測数=%d 予測日数=%d トレンド=%s", id, len(request.Orders), daysAhead, result.Trend)
}

// ScoreChurnRisk 顧客の解約リスクを評価
func (h *AnalyticsHandler) ScoreChurnRisk(c *gin.Context) {
	var request ChurnRiskRequest
	if !bindRequest(c, &request) {
		return
	}

	result, err := h.service.ScoreChurnRisk(request.Customers)
	if err != nil {
		respondError(c, "解約リスク", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("👥 [解約リスク] 完了: analysis_id=%s 顧客数=%d 高リスク=%d", id, len(request.Customers), result.HighRiskCount)
}

// ForecastRevenue 月次売上予測を実行
func (h *AnalyticsHandler) ForecastRevenue(c *gin.Context) {
	var request RevenueForecastRequest
	if !bindRequest(c, &request) {
		return
	}
	months := intOrDefault(request.Months, defaultRevenueMonths)

	result, err := h.service.ForecastRevenue(request.Orders, months)
	if err != nil {
		respondError(c, "売上予測", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("💰 [売上予測] 完了: analysis_id=%s 期間=%dか月 トレンド=%.2f%%", id, months, result.Trend)
}

// RecommendProducts 顧客向けの推薦商品を返す
func (h *AnalyticsHandler) RecommendProducts(c *gin.Context) {
	var request RecommendationRequest
	if !bindRequest(c, &request) {
		return
	}
	limit := intOrDefault(request.Limit, defaultRecommendationLimit)

	result, err := h.service.RecommendProducts(request.CustomerID, request.History, request.Catalog, limit)
	if err != nil {
		respondError(c, "商品推薦", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("🛒 [商品推薦] 完了: analysis_id=%s customer=%s 件数=%d", id, request.CustomerID, len(result.Recommendations))
}

// OptimizeInventory 在庫の最適化案を返す
func (h *AnalyticsHandler) OptimizeInventory(c *gin.Context) {
	var request InventoryRequest
	if !bindRequest(c, &request) {
		return
	}

	result, err := h.service.OptimizeInventory(request.Products)
	if err != nil {
		respondError(c, "在庫最適化", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("📦 [在庫最適化] 完了: analysis_id=%s 商品数=%d 削減見込み=%.2f", id, len(request.Products), result.TotalPotentialSavings)
}

// DetectAnomalies 時系列の異常値を検出
func (h *AnalyticsHandler) DetectAnomalies(c *gin.Context) {
	var request AnomalyRequest
	if !bindRequest(c, &request) {
		return
	}
	threshold := services.DefaultAnomalyThreshold
	if request.Threshold != nil {
		threshold = *request.Threshold
	}

	result, err := h.service.DetectAnomalies(request.Series, threshold)
	if err != nil {
		respondError(c, "異常検知", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("🔍 [異常検知] 完了: analysis_id=%s 点数=%d 異常=%d", id, len(request.Series), result.AnomalyCount)
}

// ImportAnomalies アップロードされた .xlsx / .csv の系列で異常検知を実行
func (h *AnalyticsHandler) ImportAnomalies(c *gin.Context) {
	points, ok := h.readUploadedSeries(c)
	if !ok {
		return
	}

	threshold := services.DefaultAnomalyThreshold
	if raw := strings.TrimSpace(c.PostForm("threshold")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			respondBadRequest(c, fmt.Sprintf("thresholdが数値ではありません: %s", raw))
			return
		}
		threshold = parsed
	}

	result, err := h.service.DetectAnomalies(points, threshold)
	if err != nil {
		respondError(c, "ファイル異常検知", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("🔍 [ファイル異常検知] 完了: analysis_id=%s 点数=%d 異常=%d", id, len(points), result.AnomalyCount)
}

// ImportDemandForecast アップロードされた .xlsx / .csv の系列で需要予測を実行
func (h *AnalyticsHandler) ImportDemandForecast(c *gin.Context) {
	points, ok := h.readUploadedSeries(c)
	if !ok {
		return
	}

	daysAhead := defaultDaysAhead
	if raw := strings.TrimSpace(c.PostForm("days_ahead")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, fmt.Sprintf("days_aheadが整数ではありません: %s", raw))
			return
		}
		daysAhead = parsed
	}

	result, err := h.service.ForecastDemand(services.ToDemandObservations(points), daysAhead)
	if err != nil {
		respondError(c, "ファイル需要予測", err)
		return
	}

	id := respondAnalysis(c, result)
	log.Printf("📈 [ファイル需要予測] 完了: analysis_id=%s 点数=%d 予測日数=%d", id, len(points), daysAhead)
}

// GetSettings 現在有効な分析パラメータを返す
func (h *AnalyticsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"params":                    h.service.Params(),
			"default_anomaly_threshold": services.DefaultAnomalyThreshold,
			"default_days_ahead":        defaultDaysAhead,
			"default_revenue_months":    defaultRevenueMonths,
			"default_limit":             defaultRecommendationLimit,
			"max_upload_bytes":          h.maxUploadBytes,
			"supported_file_types":      []string{".xlsx", ".csv"},
		},
	})
}

// readUploadedSeries multipartの "file" を読み込んで時系列に変換する
func (h *AnalyticsHandler) readUploadedSeries(c *gin.Context) ([]models.TimePoint, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, "ファイルの取得に失敗しました: "+err.Error())
		return nil, false
	}
	defer file.Close()

	log.Printf("📂 [ファイル読込] %s (%d bytes)", fileHeader.Filename, fileHeader.Size)
	points, err := services.ParseSeriesFile(fileHeader.Filename, file)
	if err != nil {
		respondError(c, "ファイル読込", err)
		return nil, false
	}
	return points, true
}
