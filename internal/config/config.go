package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/ewhamarket/backend/pkg/logger"
)

// Config 애플리케이션 설정
type Config struct {
	Env          string
	Port         int
	SecretKey    string
	UploadDir    string
	AllowOrigins []string
	DBConfigPath string
	SessionHours int
	Storage      StorageConfig
}

// StorageConfig 이미지 저장소 설정 (local | s3)
type StorageConfig struct {
	Driver        string
	S3Endpoint    string
	S3Region      string
	S3AccessKeyID string
	S3SecretKey   string
	S3Bucket      string
	S3CDNURL      string
	S3PathStyle   bool
}

// IsDevelopment reports whether the app runs in a local/dev environment
func (c *Config) IsDevelopment() bool {
	return c.Env == "" || c.Env == "local" || c.Env == "dev" || c.Env == "development"
}

// Load builds Config from environment variables
func Load() *Config {
	return &Config{
		Env:          getEnv("APP_ENV", "local"),
		Port:         getEnvInt("PORT", 5001),
		SecretKey:    getEnv("SECRET_KEY", "EwhaMarket_SecretKey"),
		UploadDir:    getEnv("UPLOAD_DIR", "static/images"),
		AllowOrigins: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
		DBConfigPath: os.Getenv(DBConfigEnv),
		SessionHours: getEnvInt("SESSION_HOURS", 24),
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "local"),
			S3Endpoint:    os.Getenv("S3_ENDPOINT"),
			S3Region:      os.Getenv("S3_REGION"),
			S3AccessKeyID: os.Getenv("S3_ACCESS_KEY_ID"),
			S3SecretKey:   os.Getenv("S3_SECRET_ACCESS_KEY"),
			S3Bucket:      os.Getenv("S3_BUCKET"),
			S3CDNURL:      os.Getenv("S3_CDN_URL"),
			S3PathStyle:   os.Getenv("S3_FORCE_PATH_STYLE") == "true",
		},
	}
}

// LogResolved prints the resolved settings without secrets
func LogResolved(cfg *Config) {
	logger.GetLogger().Info().
		Str("env", cfg.Env).
		Int("port", cfg.Port).
		Str("upload_dir", cfg.UploadDir).
		Str("storage", cfg.Storage.Driver).
		Strs("allow_origins", cfg.AllowOrigins).
		Str("db_config", ResolveDBConfigPath(cfg.DBConfigPath)).
		Bool("default_secret", cfg.SecretKey == "EwhaMarket_SecretKey").
		Msg("config resolved")
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// splitAndTrim splits a comma separated list and drops empty parts
func splitAndTrim(s string) []string {
	var parts []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
