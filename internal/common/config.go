package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Provider ProviderConfig
	Retry    RetryConfig
	Pipeline PipelineConfig
	OCR      OCRConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string // "postgres" or "sqlite"
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ProviderConfig holds cloud acquisition provider configuration
type ProviderConfig struct {
	VisionEndpoint string
	DocAIEndpoint  string
	APIKey         string
	Timeout        time.Duration
	MaxResults     int
}

// RetryConfig holds retry/backoff configuration for cloud calls
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// PipelineConfig holds thresholds and behavior flags for extraction
type PipelineConfig struct {
	AcceptThreshold   float32 // primary result accepted above this
	AutoSaveThreshold float32 // records below this need review
	EnableFallback    bool
}

// OCRConfig holds on-device recognizer configuration
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	PSM           int
	Pdftotext     string
	HeicConverter string
}

// IngestConfig holds directory ingestion configuration
type IngestConfig struct {
	WatchRoots  []string
	InitialScan bool
	Workers     int
	Debounce    time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			DSN:             getEnv("DB_URL", "file:receipts.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Provider: ProviderConfig{
			VisionEndpoint: getEnv("VISION_ENDPOINT", "https://vision.googleapis.com/v1/images:annotate"),
			DocAIEndpoint:  getEnv("DOCAI_ENDPOINT", ""),
			APIKey:         getEnv("CLOUD_API_KEY", ""),
			Timeout:        getEnvAsDuration("PROVIDER_TIMEOUT", 30*time.Second),
			MaxResults:     getEnvAsInt("VISION_MAX_RESULTS", 10),
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvAsDuration("RETRY_BASE_DELAY", time.Second),
		},
		Pipeline: PipelineConfig{
			AcceptThreshold:   getEnvAsFloat32("ACCEPT_THRESHOLD", 0.7),
			AutoSaveThreshold: getEnvAsFloat32("AUTOSAVE_THRESHOLD", 0.5),
			EnableFallback:    getEnvAsBool("ENABLE_FALLBACK", true),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			PSM:           getEnvAsInt("TESSERACT_PSM", 6),
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			HeicConverter: getEnv("HEIC_CONVERTER_BIN", ""),
		},
		Ingest: IngestConfig{
			WatchRoots:  getEnvAsList("WATCH_ROOTS"),
			InitialScan: getEnvAsBool("INITIAL_SCAN", true),
			Workers:     getEnvAsInt("INGEST_WORKERS", 4),
			Debounce:    getEnvAsDuration("INGEST_DEBOUNCE", 500*time.Millisecond),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Provider.DocAIEndpoint != "" && c.Provider.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "CLOUD_API_KEY is required when DOCAI_ENDPOINT is set", ErrInvalidInput)
	}
	if c.Retry.MaxAttempts < 1 {
		return NewAppError("CONFIG_ERROR", "RETRY_MAX_ATTEMPTS must be at least 1", ErrInvalidInput)
	}
	if c.Pipeline.AcceptThreshold < 0 || c.Pipeline.AcceptThreshold > 1 {
		return NewAppError("CONFIG_ERROR", "ACCEPT_THRESHOLD must be in [0,1]", ErrInvalidInput)
	}
	return nil
}
