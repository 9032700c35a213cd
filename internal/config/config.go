package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Backend   BackendConfig
	Identity  IdentityConfig
	Analytics AnalyticsConfig
	Wizard    WizardConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type BackendConfig struct {
	BaseURL string
	APIKey  string
}

type IdentityConfig struct {
	TokenURL         string
	ClientID         string
	ClientSecret     string
	Audience         string
	BillingPortalURL string
}

type AnalyticsConfig struct {
	Endpoint string
	APIKey   string
}

type WizardConfig struct {
	ChunkWorkers       int
	MaxProgressStreams int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Backend: BackendConfig{
			BaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8757"),
			APIKey:  getEnv("BACKEND_API_KEY", ""),
		},
		Identity: IdentityConfig{
			TokenURL:         getEnv("IDENTITY_TOKEN_URL", ""),
			ClientID:         getEnv("IDENTITY_CLIENT_ID", ""),
			ClientSecret:     getEnv("IDENTITY_CLIENT_SECRET", ""),
			Audience:         getEnv("IDENTITY_AUDIENCE", ""),
			BillingPortalURL: getEnv("BILLING_PORTAL_URL", ""),
		},
		Analytics: AnalyticsConfig{
			Endpoint: getEnv("ANALYTICS_ENDPOINT", ""),
			APIKey:   getEnv("ANALYTICS_API_KEY", ""),
		},
		Wizard: WizardConfig{
			ChunkWorkers:       getEnvAsInt("WIZARD_CHUNK_WORKERS", 5),
			MaxProgressStreams: getEnvAsInt("WIZARD_MAX_PROGRESS_STREAMS", 4),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
