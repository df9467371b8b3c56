package config

import (
	"os"
	"strconv"
	"strings"

	"ytpicker/internal/model"

	"github.com/joho/godotenv"
)

// Load loads configuration from environment variables
func Load() *model.Config {
	godotenv.Load()

	return &model.Config{
		Server: model.ServerConfig{
			Port:    getEnvInt("SERVER_PORT", 8080),
			Host:    getEnvStr("SERVER_HOST", "0.0.0.0"),
			Timeout: getEnvInt("SERVER_TIMEOUT", 300),
		},
		Storage: model.StorageConfig{
			DownloadDir:     getEnvStr("DOWNLOAD_DIR", "./downloads"),
			MaxVideoSizeMB:  getEnvInt("MAX_VIDEO_SIZE_MB", 300),
			CleanupInterval: getEnvInt("STORAGE_CLEANUP_INTERVAL", 30),
			FileTTLSeconds:  getEnvInt("FILE_TTL_SECONDS", 60),
		},
		Worker: model.WorkerConfig{
			Port:    getEnvInt("WORKER_PORT", 5000),
			Host:    getEnvStr("WORKER_HOST", "localhost"),
			Timeout: getEnvInt("WORKER_TIMEOUT", 60),
		},
		Logging: model.LoggingConfig{
			Level:    getEnvStr("LOG_LEVEL", "info"),
			FilePath: getEnvStr("LOG_FILE", "./log/app.log"),
			Console:  getEnvBool("LOG_CONSOLE", true),
		},
		RateLimit: model.RateLimitConfig{
			Enabled:           getEnvBool("RATELIMIT_ENABLED", true),
			RequestsPerMinute: getEnvInt("RATELIMIT_REQUESTS_PER_MINUTE", 60),
			BurstSize:         getEnvInt("RATELIMIT_BURST_SIZE", 10),
			CleanupInterval:   getEnvInt("RATELIMIT_CLEANUP_INTERVAL", 1800),
		},
		Client: model.ClientConfig{
			BaseURL:      strings.TrimRight(getEnvStr("CLIENT_BASE_URL", "http://localhost:8080"), "/"),
			FetchTimeout: getEnvInt("CLIENT_FETCH_TIMEOUT", 30),
			AlertSeconds: getEnvInt("CLIENT_ALERT_SECONDS", 5),
			OutputDir:    getEnvStr("CLIENT_OUTPUT_DIR", "./downloads"),
		},
	}
}

func getEnvStr(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	valStr := getEnvStr(key, "")
	if val, err := strconv.Atoi(valStr); err == nil {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	valStr := strings.ToLower(getEnvStr(key, ""))
	if valStr == "true" || valStr == "1" || valStr == "yes" {
		return true
	}
	if valStr == "false" || valStr == "0" || valStr == "no" {
		return false
	}
	return defaultVal
}
