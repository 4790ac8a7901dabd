package handlers

import (
	"log"
	"net/http"

	"bizops-analytics-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// bindRequest JSONボディをバインドし、失敗時は400を返す
func bindRequest(c *gin.Context, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		respondBadRequest(c, "リクエストの解析に失敗しました: "+err.Error())
		return false
	}
	return true
}

// respondAnalysis 分析結果を analysis_id 付きで返し、そのIDを返す
func respondAnalysis(c *gin.Context, data interface{}) string {
	id := uuid.New().String()
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"analysis_id": id,
		"data":        data,
	})
	return id
}

// respondError 入力起因のエラーは400、それ以外は500
func respondError(c *gin.Context, label string, err error) {
	status := http.StatusInternalServerError
	if services.IsClientError(err) {
		status = http.StatusBadRequest
	}
	log.Printf("❌ [%s] %d: %v", label, status, err)
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   message,
	})
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
