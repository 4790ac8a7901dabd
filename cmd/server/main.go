package main

import (
	"log"
	"net/http"

	config "bizops-analytics-api/configs"
	"bizops-analytics-api/pkg/handlers"
	"bizops-analytics-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := setupRouter(cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize analytics engine: %v", err)
	}

	log.Printf("Starting BizOps Analytics API server on :%s (noise=%s)", cfg.Port, cfg.NoiseMode)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// setupRouter サービス・ハンドラー・ルートを組み立てる
func setupRouter(cfg *config.Config) (*gin.Engine, error) {
	// サービスの初期化
	params, err := cfg.AnalyticsParams()
	if err != nil {
		return nil, err
	}
	analyticsService, err := services.NewAnalyticsServiceWithParams(params, cfg.NoiseSource())
	if err != nil {
		return nil, err
	}
	monitoringService := services.NewMonitoringService()

	// ハンドラーの初期化
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, cfg.MaxUploadBytes())
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// Ginルーターの初期化
	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes()

	// ミドルウェアの登録
	r.Use(monitoringService.LoggingMiddleware()) // ロギングミドルウェアをグローバルに適用
	r.Use(cors.Default())

	// ヘルスチェックエンドポイント
	r.GET("/health", adminHandler.HealthCheck)

	// APIバージョン1のルートグループ
	v1 := r.Group("/api/v1")
	v1.Use(authMiddleware(cfg.APIKey))
	{
		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		// 予測分析API
		analytics := v1.Group("/analytics")
		analytics.Use(adminHandler.MaintenanceGuard())
		{
			analytics.POST("/demand-forecast", analyticsHandler.ForecastDemand)
			analytics.POST("/churn-risk", analyticsHandler.ScoreChurnRisk)
			analytics.POST("/revenue-forecast", analyticsHandler.ForecastRevenue)
			analytics.POST("/recommendations", analyticsHandler.RecommendProducts)
			analytics.POST("/inventory", analyticsHandler.OptimizeInventory)
			analytics.POST("/anomalies", analyticsHandler.DetectAnomalies)
			analytics.POST("/import/anomalies", analyticsHandler.ImportAnomalies)
			analytics.POST("/import/demand-forecast", analyticsHandler.ImportDemandForecast)
			analytics.GET("/settings", analyticsHandler.GetSettings)
		}
	}

	return r, nil
}

// 認証ミドルウェア
func authMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		providedKey := c.GetHeader("X-API-KEY")
		if providedKey != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Unauthorized"})
			return
		}
		c.Next()
	}
}
