package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults for zero-config demo deployments. The JWT secret fallback is a
// known weakness; main logs a warning whenever it is in effect.
const (
	DefaultJWTSecret    = "galleryhub-dev-secret-change-me"
	DefaultDemoEmail    = "demo@galleryhub.local"
	DefaultDemoPassword = "demo1234"
)

type Config struct {
	Env  string
	Port int

	DBURL string

	JWTSecret string
	TokenTTL  time.Duration

	DemoMode     bool
	DemoEmail    string
	DemoPassword string

	UploadDir      string
	MaxUploadBytes int64

	AdminEmail    string
	AdminPassword string
	AdminName     string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CORSAllowedOrigins []string

	OTELEndpoint string
}

func Load() Config {
	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: getEnv("DATABASE_URL", buildDBURL()),

		JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenTTL:  getEnvDuration("JWT_TTL", 7*24*time.Hour),

		DemoMode:     getEnvBool("DEMO_MODE", true),
		DemoEmail:    getEnv("DEMO_EMAIL", DefaultDemoEmail),
		DemoPassword: getEnv("DEMO_PASSWORD", DefaultDemoPassword),

		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 10<<20)),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		AdminName:     getEnv("ADMIN_NAME", "Administrator"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// UsingDefaultSecret reports whether the process runs on the built-in signing
// secret rather than an operator-provided one.
func (c Config) UsingDefaultSecret() bool {
	return c.JWTSecret == DefaultJWTSecret
}

// DatabaseConfigured reports whether a database was requested at all.
// No DATABASE_URL and no DB_HOST means the API serves from memory.
func (c Config) DatabaseConfigured() bool {
	return c.DBURL != ""
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "")

	if host == "" {
		return ""
	}

	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "galleryhub")
	pass := getEnv("DB_PASSWORD", "galleryhub")
	name := getEnv("DB_NAME", "galleryhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
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
			return fallback
		}

		return num
	}

	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)

		if err != nil {
			return fallback
		}

		return b
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err != nil || d <= 0 {
			return fallback
		}

		return d
	}

	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)

	if v == "" {
		return fallback
	}

	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	if len(out) == 0 {
		return fallback
	}

	return out
}
