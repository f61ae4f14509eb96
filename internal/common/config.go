package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store      StoreConfig
	Server     ServerConfig
	OCR        OCRConfig
	Ingest     IngestConfig
	Extraction ExtractionConfig
	Log        LogConfig
}

// StoreConfig selects and tunes the repository driver.
type StoreConfig struct {
	Driver           string // memory | sqlite | bolt | postgres
	Path             string // sqlite / bolt file
	DSN              string // postgres
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract     string
	TesseractLang string
	TessdataDir   string
	Pdftotext     string
	Pdftoppm      string
	DPI           int
	MaxPages      int
}

// IngestConfig bounds what the ingestion boundary accepts and how it fans out.
type IngestConfig struct {
	MaxFileSize   int64
	AllowedExts   []string
	Workers       int
	QueueSize     int
	JobTimeout    time.Duration
	WatchDirs     []string
	WatchDebounce time.Duration
	SkipHidden    bool
	InitialScan   bool
}

// ExtractionConfig tunes the field extractor.
type ExtractionConfig struct {
	MinConfidence float64
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:           getEnv("STORE_DRIVER", "sqlite"),
			Path:             getEnv("STORE_PATH", "receipts.db"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Tesseract:     getEnv("TESSERACT_BIN", "tesseract"),
			TesseractLang: getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:   getEnv("TESSDATA_PREFIX", ""),
			Pdftotext:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:      getEnv("PDFTOPPM_BIN", "pdftoppm"),
			DPI:           getEnvAsInt("OCR_DPI", 300),
			MaxPages:      getEnvAsInt("OCR_MAX_PAGES", 0),
		},
		Ingest: IngestConfig{
			MaxFileSize:   getEnvAsInt64("INGEST_MAX_FILE_SIZE", 10<<20),
			AllowedExts:   getEnvAsList("INGEST_ALLOWED_EXTS", []string{"pdf", "jpg", "jpeg", "png", "txt"}),
			Workers:       getEnvAsInt("INGEST_WORKERS", 4),
			QueueSize:     getEnvAsInt("INGEST_QUEUE_SIZE", 256),
			JobTimeout:    getEnvAsDuration("INGEST_JOB_TIMEOUT", 2*time.Minute),
			WatchDirs:     getEnvAsList("INGEST_WATCH_DIRS", nil),
			WatchDebounce: getEnvAsDuration("INGEST_WATCH_DEBOUNCE", 500*time.Millisecond),
			SkipHidden:    getEnvAsBool("INGEST_SKIP_HIDDEN", true),
			InitialScan:   getEnvAsBool("INGEST_INITIAL_SCAN", true),
		},
		Extraction: ExtractionConfig{
			MinConfidence: getEnvAsFloat64("EXTRACT_MIN_CONFIDENCE", 0.30),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
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

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// comma separated, blanks dropped
func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "memory":
	case "sqlite", "bolt":
		if c.Store.Path == "" {
			return NewAppError(CodeConfig, "STORE_PATH is required for driver "+c.Store.Driver, ErrInvalidInput)
		}
	case "postgres":
		if c.Store.DSN == "" {
			return NewAppError(CodeConfig, "DB_URL is required for driver postgres", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown STORE_DRIVER %q", c.Store.Driver), ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Ingest.Workers <= 0 || c.Ingest.QueueSize <= 0 {
		return NewAppError(CodeConfig, "INGEST_WORKERS and INGEST_QUEUE_SIZE must be positive", ErrInvalidInput)
	}
	if c.Ingest.MaxFileSize <= 0 {
		return NewAppError(CodeConfig, "INGEST_MAX_FILE_SIZE must be positive", ErrInvalidInput)
	}
	if c.Extraction.MinConfidence < 0 || c.Extraction.MinConfidence > 1 {
		return NewAppError(CodeConfig, "EXTRACT_MIN_CONFIDENCE must be within [0,1]", ErrInvalidInput)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return NewAppError(CodeConfig, "LOG_LEVEL is invalid", err)
	}
	return nil
}
