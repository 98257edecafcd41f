package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"findex/internal/chunker"
)

// Config holds all configuration for the application.
type Config struct {
	ExtractBaseURL     string
	ExtractAPIKey      string
	EmbeddingBaseURL   string
	EmbeddingAPIKey    string
	EmbeddingModelName string
	EmbeddingBatchSize int
	QdrantURL          string
	QdrantCollection   string
	QdrantVectorSize   int
	IndexBatchSize     int
	SourceDir          string
	DBPath             string
	Chunking           chunker.Config
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string
}

// Load reads configuration from environment variables and returns a Config
// struct. A .env file in the current directory or any parent (up to the
// project root) is loaded first; variables already set take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	// Walk up a few directories to find a .env next to the project root.
	if wd, err := os.Getwd(); err == nil {
		dir := wd
		for i := 0; i < 5; i++ {
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	cfg := &Config{
		ExtractBaseURL:     getEnv("EXTRACT_BASE_URL", ""),
		ExtractAPIKey:      getEnv("EXTRACT_API_KEY", ""),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", "dummy-key"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "text-embedding-3-small"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
		SourceDir:          getEnv("SOURCE_DIR", ""),
		DBPath:             getEnv("DB_PATH", "./data/findex.db"),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.EmbeddingBatchSize, err = getEnvInt("EMBEDDING_BATCH_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.IndexBatchSize, err = getEnvInt("INDEX_BATCH_SIZE", 100); err != nil {
		return nil, err
	}

	// Chunking parameters. Defaults come from the chunker; the values here
	// are deployment knobs, not assumptions baked into the algorithm.
	chunkCfg := chunker.DefaultConfig()
	if chunkCfg.MaxChunkChars, err = getEnvInt("MAX_CHUNK_CHARS", chunkCfg.MaxChunkChars); err != nil {
		return nil, err
	}
	if chunkCfg.OverlapChars, err = getEnvInt("OVERLAP_CHARS", chunkCfg.OverlapChars); err != nil {
		return nil, err
	}
	if v := getEnv("PRESERVE_TABLES", ""); v != "" {
		preserve, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("PRESERVE_TABLES must be a boolean: %w", err)
		}
		chunkCfg.PreserveTables = preserve
	}
	if err := chunkCfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Chunking = chunkCfg

	// The vector size must match the embeddings model output; there is no
	// sane default, so it is required.
	vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
	}
	cfg.QdrantVectorSize = vectorSize

	cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}

	if cfg.ExtractBaseURL == "" {
		return nil, fmt.Errorf("EXTRACT_BASE_URL is required")
	}
	if cfg.SourceDir == "" {
		return nil, fmt.Errorf("SOURCE_DIR is required")
	}

	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", level)
	}
}
