package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"bizops-analytics-api/pkg/services"
)

// ノイズ源の種類
const (
	NoiseRandom = "random"
	NoiseSeeded = "seeded"
	NoiseOff    = "off"
)

// Config holds the application configuration
type Config struct {
	Port                   string
	Environment            string
	APIKey                 string
	AdminUsername          string
	AdminPassword          string
	NoiseMode              string
	NoiseSeed              uint64
	ServiceLevelZ          float64
	OrderingCostMultiplier float64
	ProfilePath            string
	MaxUploadMB            int64
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                   getEnv("PORT", "8080"),
		Environment:            getEnv("ENVIRONMENT", "development"),
		APIKey:                 getEnv("API_KEY", ""),
		AdminUsername:          getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:          getEnv("ADMIN_PASSWORD", ""),
		NoiseMode:              strings.ToLower(getEnv("ANALYTICS_NOISE", NoiseRandom)),
		NoiseSeed:              getEnvUint("ANALYTICS_SEED", 1),
		ServiceLevelZ:          getEnvFloat("ANALYTICS_SERVICE_LEVEL_Z", services.DefaultServiceLevelZ),
		OrderingCostMultiplier: getEnvFloat("ANALYTICS_ORDERING_COST_MULTIPLIER", services.DefaultOrderingCostMultiplier),
		ProfilePath:            getEnv("ANALYTICS_PROFILE", ""),
		MaxUploadMB:            int64(getEnvUint("MAX_UPLOAD_MB", 10)),
	}
}

// AnalyticsParams 設計定数に環境変数とプロファイルの上書きを適用したパラメータ
func (c *Config) AnalyticsParams() (services.Params, error) {
	params := services.DefaultParams()
	params.ServiceLevelZ = c.ServiceLevelZ
	params.OrderingCostMultiplier = c.OrderingCostMultiplier

	if c.ProfilePath != "" {
		profile, err := LoadAnalyticsProfile(c.ProfilePath)
		if err != nil {
			return params, err
		}
		profile.Apply(&params)
	}
	return params, params.Validate()
}

// NoiseSource ANALYTICS_NOISE に対応するノイズ源
func (c *Config) NoiseSource() services.NoiseSource {
	switch c.NoiseMode {
	case NoiseOff:
		return services.ZeroNoise{}
	case NoiseSeeded:
		return services.NewSeededNoise(c.NoiseSeed)
	case NoiseRandom:
		return services.NewRandomNoise()
	default:
		log.Printf("Warning: unknown ANALYTICS_NOISE %q, using %s", c.NoiseMode, NoiseRandom)
		return services.NewRandomNoise()
	}
}

// MaxUploadBytes アップロードサイズの上限（バイト）
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %v", key, raw, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		log.Printf("Warning: invalid %s=%q, using default %v", key, raw, defaultValue)
		return defaultValue
	}
	return value
}
