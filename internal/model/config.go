package model

// Config holds application configuration
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Worker    WorkerConfig
	Logging   LoggingConfig
	RateLimit RateLimitConfig
	Client    ClientConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port    int
	Host    string
	Timeout int // seconds
}

// StorageConfig holds storage configuration for files handed back by the worker
type StorageConfig struct {
	DownloadDir     string
	MaxVideoSizeMB  int
	CleanupInterval int // seconds
	FileTTLSeconds  int // how long a served file stays on disk
}

// WorkerConfig holds yt-dlp worker configuration
type WorkerConfig struct {
	Port    int
	Host    string
	Timeout int // seconds
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string
	FilePath string
	Console  bool // also write to stdout/stderr
}

// RateLimitConfig holds per-IP rate limiting configuration
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
	CleanupInterval   int // seconds
}

// ClientConfig holds configuration of the interactive picker
type ClientConfig struct {
	BaseURL      string
	FetchTimeout int // seconds, 0 disables the per-fetch deadline
	AlertSeconds int // auto-dismiss delay for non-critical alerts
	OutputDir    string
}
