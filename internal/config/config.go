package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env         string `validate:"required,oneof=dev test prod"`
	Port        int    `validate:"gt=0,lt=65536"`
	ProxyPort   int    `validate:"gt=0,lt=65536"`
	StoreDriver string `validate:"oneof=postgres memory"`
	DBURL       string `validate:"required_if=StoreDriver postgres"`

	JWTSecret string        `validate:"required,min=16"`
	AccessTTL time.Duration `validate:"gt=0"`

	// Staff account seeded at startup when both username and password are set.
	AdminUsername string
	AdminEmail    string `validate:"omitempty,email"`
	AdminPassword string `validate:"required_with=AdminUsername"`

	// Empty RedisAddr keeps rate-limit counters in process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	RateLimitPerMinute int `validate:"gte=0"`
	CORSAllowedOrigins []string

	OTLPEndpoint string

	UpstreamBaseURL string `validate:"required,url"`
}

// Load reads a .env file when one exists, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadProxy is Load for the proxy process, which has no store, tokens or staff seed.
func LoadProxy() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := fromEnv()
	if err := cfg.validate("StoreDriver", "DBURL", "JWTSecret", "AccessTTL", "AdminEmail", "AdminPassword"); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv() Config {
	return Config{
		Env:         getEnv("APP_ENV", "dev"),
		Port:        getEnvInt("PORT", 8080),
		ProxyPort:   getEnvInt("PROXY_PORT", 8081),
		StoreDriver: getEnv("STORE_DRIVER", "postgres"),
		DBURL:       getEnv("DATABASE_URL", buildDBURL()),

		JWTSecret: getEnv("JWT_SECRET", ""),
		AccessTTL: time.Duration(getEnvInt("JWT_ACCESS_TTL_MINUTES", 60)) * time.Minute,

		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),

		UpstreamBaseURL: strings.TrimRight(getEnv("UPSTREAM_BASE_URL", "http://localhost:8080"), "/"),
	}
}

// Validate checks field constraints and reports every violation at once.
func (c Config) Validate() error {
	return c.validate()
}

func (c Config) validate(skip ...string) error {
	v := validator.New()

	var err error
	if len(skip) > 0 {
		err = v.StructExcept(c, skip...)
	} else {
		err = v.Struct(c)
	}
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c Config) SeedStaff() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "tasktracker")
	pass := getEnv("DB_PASSWORD", "tasktracker")
	name := getEnv("DB_NAME", "tasktracker")
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

// getEnvInt falls back on parse errors so Validate sees the default rather than zero.
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

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
