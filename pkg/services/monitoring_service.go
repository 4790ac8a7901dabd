package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// maxLogEntries 保持するリクエストログの上限
const maxLogEntries = 10000

// LogEntry は単一の分析リクエストの記録です。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService は分析APIの呼び出し状況を記録します。
type MonitoringService struct {
	mu   sync.RWMutex
	logs []LogEntry
	now  func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{
		logs: make([]LogEntry, 0),
		now:  time.Now,
	}
}

// LogRequest はリクエストを記録します。上限を超えた古い記録は破棄します。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if over := len(s.logs) - maxLogEntries; over > 0 {
		s.logs = append(s.logs[:0:0], s.logs[over:]...)
	}
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		c.Next()

		// モニタリング自身とヘルスチェックは記録しない
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/monitoring") || path == "/health" {
			return
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		})
	}
}

// HourlyCount は1時間ごとのリクエスト数です。
type HourlyCount struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// StatusClassCount はステータスクラスごとの件数です。
type StatusClassCount struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EndpointLatency はエンドポイントごとの平均応答時間（ミリ秒）です。
type EndpointLatency struct {
	Endpoint     string `json:"endpoint"`
	ResponseTime int64  `json:"responseTime"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []HourlyCount      `json:"requestsOverTime"`
	Endpoints        map[string]int     `json:"endpoints"`
	StatusCodes      []StatusClassCount `json:"statusCodes"`
	AvgResponseTimes []EndpointLatency  `json:"avgResponseTimes"`
	RecentErrors     []LogEntry         `json:"recentErrors"`
}

// GetDashboardData は指定された期間のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	if periodHours <= 0 {
		periodHours = 24
	}

	s.mu.RLock()
	now := s.now().UTC()
	since := now.Add(-time.Duration(periodHours) * time.Hour)
	filtered := make([]LogEntry, 0)
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			filtered = append(filtered, entry)
		}
	}
	s.mu.RUnlock()

	// 過去から現在へ向かう順序で時間バケットを用意する
	buckets := make([]HourlyCount, periodHours)
	bucketIndex := make(map[int64]int, periodHours)
	current := now.Truncate(time.Hour)
	for i := 0; i < periodHours; i++ {
		t := current.Add(-time.Duration(periodHours-1-i) * time.Hour)
		buckets[i] = HourlyCount{Time: t.Format("15:00")}
		bucketIndex[t.Unix()] = i
	}

	endpoints := make(map[string]int)
	statusCounts := map[string]int{"2xx Success": 0, "4xx Client Error": 0, "5xx Server Error": 0}
	latencySum := make(map[string]time.Duration)
	for _, entry := range filtered {
		if idx, ok := bucketIndex[entry.Timestamp.UTC().Truncate(time.Hour).Unix()]; ok {
			buckets[idx].Requests++
		}
		endpoints[entry.Path]++
		latencySum[entry.Path] += entry.ResponseTime

		switch {
		case entry.StatusCode >= 500:
			statusCounts["5xx Server Error"]++
		case entry.StatusCode >= 400:
			statusCounts["4xx Client Error"]++
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCounts["2xx Success"]++
		}
	}

	statusCodes := make([]StatusClassCount, 0, len(statusCounts))
	for name, value := range statusCounts {
		statusCodes = append(statusCodes, StatusClassCount{Name: name, Value: value})
	}
	sort.Slice(statusCodes, func(i, j int) bool { return statusCodes[i].Name < statusCodes[j].Name })

	latencies := make([]EndpointLatency, 0, len(latencySum))
	for path, total := range latencySum {
		latencies = append(latencies, EndpointLatency{
			Endpoint:     path,
			ResponseTime: total.Milliseconds() / int64(endpoints[path]),
		})
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i].Endpoint < latencies[j].Endpoint })

	recentErrors := make([]LogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		RequestsOverTime: buckets,
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseTimes: latencies,
		RecentErrors:     recentErrors,
	}
}
