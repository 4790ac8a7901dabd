package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bizops-analytics-api/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success    bool            `json:"success"`
	AnalysisID string          `json:"analysis_id"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewAnalyticsHandler(services.NewAnalyticsService(services.ZeroNoise{}), 1<<20)
	r := gin.New()
	analytics := r.Group("/api/v1/analytics")
	{
		analytics.POST("/demand-forecast", handler.ForecastDemand)
		analytics.POST("/churn-risk", handler.ScoreChurnRisk)
		analytics.POST("/revenue-forecast", handler.ForecastRevenue)
		analytics.POST("/recommendations", handler.RecommendProducts)
		analytics.POST("/inventory", handler.OptimizeInventory)
		analytics.POST("/anomalies", handler.DetectAnomalies)
		analytics.POST("/import/anomalies", handler.ImportAnomalies)
		analytics.POST("/import/demand-forecast", handler.ImportDemandForecast)
		analytics.GET("/settings", handler.GetSettings)
	}
	return r
}

func postJSON(t *testing.T, r http.Handler, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req, err := http.NewRequest("POST", path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func postFile(t *testing.T, r http.Handler, path, fileName, content string, fields map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	req, err := http.NewRequest("POST", path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestForecastDemandHandler(t *testing.T) {
	r := newTestRouter()

	body := `{"orders":[
		{"date":"2024-01-01","quantity":100},
		{"date":"2024-01-02","quantity":100},
		{"date":"2024-01-03","quantity":100},
		{"date":"2024-01-04","quantity":100}
	],"days_ahead":2}`
	w, resp := postJSON(t, r, "/api/v1/analytics/demand-forecast", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Len(t, resp.AnalysisID, 36)

	var data struct {
		Predictions []struct {
			Date              string  `json:"date"`
			PredictedQuantity float64 `json:"predicted_quantity"`
		} `json:"predictions"`
		Trend string `json:"trend"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Predictions, 2)
	assert.Equal(t, "2024-01-05", data.Predictions[0].Date)
	assert.Equal(t, 100.0, data.Predictions[0].PredictedQuantity)
	assert.Equal(t, "stable", data.Trend)
}

func TestForecastDemandHandlerDefaultsAndErrors(t *testing.T) {
	r := newTestRouter()
	orders := `[{"date":"2024-01-01","quantity":1},{"date":"2024-01-02","quantity":2}]`

	// days_ahead 省略時は7日
	_, resp := postJSON(t, r, "/api/v1/analytics/demand-forecast", `{"orders":`+orders+`}`)
	var data struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Len(t, data.Predictions, 7)

	testCases := []struct {
		name string
		body string
	}{
		{"explicit zero days", `{"orders":` + orders + `,"days_ahead":0}`},
		{"days beyond limit", `{"orders":` + orders + `,"days_ahead":1000000000}`},
		{"same day only", `{"orders":[{"date":"2024-01-01","quantity":1},{"date":"2024-01-01","quantity":2}]}`},
		{"single order", `{"orders":[{"date":"2024-01-01","quantity":1}]}`},
		{"bad date", `{"orders":[{"date":"someday","quantity":1}]}`},
		{"malformed json", `{"orders":`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, resp := postJSON(t, r, "/api/v1/analytics/demand-forecast", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestScoreChurnRiskHandler(t *testing.T) {
	r := newTestRouter()

	body := `{"customers":[
		{"id":"c1","days_inactive":10000,"order_count":0,"total_spent":0,"avg_order_value":0},
		{"id":"c2","days_inactive":0,"order_count":60,"total_spent":90000,"avg_order_value":1500}
	]}`
	w, resp := postJSON(t, r, "/api/v1/analytics/churn-risk", body)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		RiskAssessment []struct {
			CustomerID string  `json:"customer_id"`
			ChurnRisk  float64 `json:"churn_risk"`
			RiskLevel  string  `json:"risk_level"`
		} `json:"risk_assessment"`
		HighRiskCount int `json:"high_risk_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.RiskAssessment, 2)
	assert.Equal(t, "high", data.RiskAssessment[0].RiskLevel)
	assert.Equal(t, "low", data.RiskAssessment[1].RiskLevel)
	assert.Equal(t, 1, data.HighRiskCount)

	w, _ = postJSON(t, r, "/api/v1/analytics/churn-risk", `{"customers":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestForecastRevenueHandler(t *testing.T) {
	r := newTestRouter()

	body := `{"orders":[
		{"date":"2024-01-15","amount":1000},
		{"date":"2024-02-15","amount":1100},
		{"date":"2024-03-15","amount":1200}
	],"months":3}`
	w, resp := postJSON(t, r, "/api/v1/analytics/revenue-forecast", body)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Forecast    []json.RawMessage `json:"forecast"`
		SeriesStart string            `json:"series_start"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Len(t, data.Forecast, 3)
	assert.Equal(t, "2024-01", data.SeriesStart)

	w, resp = postJSON(t, r, "/api/v1/analytics/revenue-forecast", strings.Replace(body, `"months":3`, `"months":121`, 1))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Error, "months")
}

func TestRecommendProductsHandler(t *testing.T) {
	r := newTestRouter()

	body := `{
		"customer_id":"u1",
		"history":[{"product_id":"a","category":"tea","price":10}],
		"catalog":[
			{"id":"a","name":"煎茶","category":"tea","price":10,"popularity":0.9},
			{"id":"b","name":"ほうじ茶","category":"tea","price":12,"popularity":0.5},
			{"id":"c","name":"コーヒー","category":"coffee","price":30,"popularity":0.8}
		],
		"limit":1
	}`
	w, resp := postJSON(t, r, "/api/v1/analytics/recommendations", body)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Recommendations []struct {
			ProductID string `json:"product_id"`
		} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.Len(t, data.Recommendations, 1)
	assert.Equal(t, "b", data.Recommendations[0].ProductID)

	w, _ = postJSON(t, r, "/api/v1/analytics/recommendations", `{"customer_id":"u1","limit":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOptimizeInventoryHandler(t *testing.T) {
	r := newTestRouter()

	body := `{"products":[{
		"id":"p1","current_stock":500,"demand_history":[10,10,10,10],
		"lead_time_days":5,"unit_cost":100,"holding_cost_pct_per_year":20
	}]}`
	w, resp := postJSON(t, r, "/api/v1/analytics/inventory", body)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		Recommendations []struct {
			ReorderPoint float64 `json:"reorder_point"`
			StockAction  string  `json:"stock_action"`
		} `json:"recommendations"`
		TotalPotentialSavings float64 `json:"total_potential_savings"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.InDelta(t, 50.0, data.Recommendations[0].ReorderPoint, 1e-9)
	assert.Equal(t, "reduce", data.Recommendations[0].StockAction)
	assert.InDelta(t, 1479.24, data.TotalPotentialSavings, 1e-9)
}

func TestDetectAnomaliesHandler(t *testing.T) {
	r := newTestRouter()

	series := `[{"date":"2024-01-01","value":10},{"date":"2024-01-02","value":10},{"date":"2024-01-03","value":10},
		{"date":"2024-01-04","value":10},{"date":"2024-01-05","value":10},{"date":"2024-01-06","value":10},
		{"date":"2024-01-07","value":10},{"date":"2024-01-08","value":10},{"date":"2024-01-09","value":10},
		{"date":"2024-01-10","value":100}]`

	w, resp := postJSON(t, r, "/api/v1/analytics/anomalies", `{"series":`+series+`}`)
	require.Equal(t, http.StatusOK, w.Code)

	var data struct {
		AnomalyCount int    `json:"anomaly_count"`
		Pattern      string `json:"pattern"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, 1, data.AnomalyCount)
	assert.Equal(t, "above_mean", data.Pattern)

	w, _ = postJSON(t, r, "/api/v1/analytics/anomalies", `{"series":`+series+`,"threshold":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandlers(t *testing.T) {
	r := newTestRouter()
	csv := "date,value\n2024-01-01,10\n2024-01-02,10\n2024-01-03,10\n2024-01-04,10\n2024-01-05,90\n"

	w, resp := postFile(t, r, "/api/v1/analytics/import/anomalies", "sales.csv", csv, map[string]string{"threshold": "1.5"})
	require.Equal(t, http.StatusOK, w.Code, resp.Error)
	var anomalies struct {
		AnomalyCount int `json:"anomaly_count"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &anomalies))
	assert.Equal(t, 1, anomalies.AnomalyCount)

	w, resp = postFile(t, r, "/api/v1/analytics/import/demand-forecast", "sales.csv", csv, map[string]string{"days_ahead": "3"})
	require.Equal(t, http.StatusOK, w.Code, resp.Error)
	var forecast struct {
		Predictions []json.RawMessage `json:"predictions"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &forecast))
	assert.Len(t, forecast.Predictions, 3)

	w, _ = postFile(t, r, "/api/v1/analytics/import/anomalies", "sales.txt", csv, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = postFile(t, r, "/api/v1/analytics/import/demand-forecast", "sales.csv", csv, map[string]string{"days_ahead": "three"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = postFile(t, r, "/api/v1/analytics/import/demand-forecast", "sales.csv", csv, map[string]string{"days_ahead": "1000000000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = postJSON(t, r, "/api/v1/analytics/import/anomalies", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSettings(t *testing.T) {
	r := newTestRouter()

	req, err := http.NewRequest("GET", "/api/v1/analytics/settings", nil)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "service_level_z")
	assert.Contains(t, w.Body.String(), "default_anomaly_threshold")
}
