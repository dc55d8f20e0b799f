package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	MongoURI string
	MongoDB  string

	JWTSecret       string
	JWTExpire       time.Duration
	JWTCookieExpire time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	GeocoderURL string
	GeocoderKey string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
	FromName  string

	FileUploadPath string
	MaxFileUpload  int64

	ResetTokenTTL time.Duration

	OTLPEndpoint string

	CORSOrigins []string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func Load() Config {
	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		MongoURI: getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "campdir"),

		JWTSecret:       getEnv("JWT_SECRET", "dev-only-secret"),
		JWTExpire:       getEnvDuration("JWT_EXPIRE", 30*24*time.Hour),
		JWTCookieExpire: getEnvDuration("JWT_COOKIE_EXPIRE", 30*24*time.Hour),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GeocoderURL: getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org/search"),
		GeocoderKey: getEnv("GEOCODER_KEY", ""),

		SMTPHost:  getEnv("SMTP_HOST", ""),
		SMTPPort:  getEnvInt("SMTP_PORT", 587),
		SMTPUser:  getEnv("SMTP_USER", ""),
		SMTPPass:  getEnv("SMTP_PASSWORD", ""),
		FromEmail: getEnv("FROM_EMAIL", "noreply@campdir.dev"),
		FromName:  getEnv("FROM_NAME", "CampDir"),

		FileUploadPath: getEnv("FILE_UPLOAD_PATH", "./public/uploads"),
		MaxFileUpload:  getEnvInt64("MAX_FILE_UPLOAD", 1_000_000),

		ResetTokenTTL: getEnvDuration("RESET_TOKEN_TTL", 10*time.Minute),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "")),

		AdminName:     getEnv("ADMIN_NAME", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s: %v\n", key, err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.ParseInt(v, 10, 64)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s: %v\n", key, err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil {
			fmt.Fprintf(os.Stderr, "config: %s: %v\n", key, err)
			return fallback
		}

		return d
	}
	return fallback
}
