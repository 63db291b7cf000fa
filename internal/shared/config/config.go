package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultMaxFileSize     = 10 << 20 // 10MB
	defaultRateLimitWindow = 15 * time.Minute
	defaultRateLimitMax    = 100
	defaultTokenLength     = 32
)

// Config holds application configuration.
type Config struct {
	Port              string
	Env               string
	UploadDir         string
	MaxFileSizeBytes  int64
	RateLimitWindow   time.Duration
	RateLimitMax      int
	CORSAllowAll      bool
	CORSAllowOrigin   []string
	ValidationBaseURL string
	SignatureLength   int
	ObjectStoreType   string
	AWSRegion         string
	S3Bucket          string
	S3Prefix          string
	SSEKMSKeyID       string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/api/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))

	return Config{
		Port:              getEnv("PORT", "3000"),
		Env:               env,
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		MaxFileSizeBytes:  getEnvInt64("MAX_FILE_SIZE", defaultMaxFileSize),
		RateLimitWindow:   time.Duration(getEnvInt64("RATE_LIMIT_WINDOW_MS", int64(defaultRateLimitWindow/time.Millisecond))) * time.Millisecond,
		RateLimitMax:      int(getEnvInt64("RATE_LIMIT_MAX_REQUESTS", defaultRateLimitMax)),
		CORSAllowAll:      getEnvBool("CORS_ALLOW_ALL", env == "dev"),
		CORSAllowOrigin:   splitAndTrim(getEnv("CORS_ORIGINS", "http://localhost:8000,http://localhost:3001,http://localhost:8080")),
		ValidationBaseURL: getEnv("VALIDATION_BASE_URL", "http://localhost:3000"),
		SignatureLength:   int(getEnvInt64("SIGNATURE_LENGTH", defaultTokenLength)),
		ObjectStoreType:   normalizeStoreType(getEnv("OBJECT_STORE", "local")),
		AWSRegion:         getEnv("AWS_REGION", ""),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Prefix:          getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:       getEnv("SSE_KMS_KEY_ID", ""),
	}
}

// MaxFileSizeMB reports the upload ceiling in whole megabytes for display.
func (c Config) MaxFileSizeMB() int64 {
	return c.MaxFileSizeBytes / (1 << 20)
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getEnvBool(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}
