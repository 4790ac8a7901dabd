package handlers

import (
	"net/http"

	"bizops-analytics-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// 集計期間の指定と時間数の対応
var monitoringPeriods = map[string]int{
	"1h":  1,
	"6h":  6,
	"24h": 24,
	"7d":  24 * 7,
}

// MonitoringHandler は分析APIの利用状況を返すハンドラです。
type MonitoringHandler struct {
	Service *services.MonitoringService
}

// NewMonitoringHandler は新しいMonitoringHandlerを生成します。
func NewMonitoringHandler(service *services.MonitoringService) *MonitoringHandler {
	return &MonitoringHandler{
		Service: service,
	}
}

// GetLogs は指定期間（1h / 6h / 24h / 7d、既定は24h）の集計データを返します。
func (h *MonitoringHandler) GetLogs(c *gin.Context) {
	period := c.DefaultQuery("period", "24h")
	hours, ok := monitoringPeriods[period]
	if !ok {
		period, hours = "24h", 24
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"period":  period,
		"data":    h.Service.GetDashboardData(hours),
	})
}
