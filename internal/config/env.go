package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	// Storage selects the persistence backend: "mysql" or "memory".
	Storage string
	DBDSN   string

	JWTSecret string

	PlatformFee           float64
	RequireFutureSchedule bool
	TimeZone              string
	StoreTimeout          time.Duration

	NotifyBuffer  int
	NotifyWorkers int

	RabbitURL      string
	RabbitExchange string

	CORSAllowedOrigins []string
	ReminderSchedule   string
}

// LoadEnv reads .env (when present) and then the process environment.
func LoadEnv() Env {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("warning: failed to read .env: %v", err)
	}

	return Env{
		AppAddr: envString("APP_ADDR", ":8080"),
		GinMode: envString("GIN_MODE", ""),

		Storage: strings.ToLower(envString("STORAGE", "mysql")),
		DBDSN:   envString("DB_DSN", "root:@tcp(127.0.0.1:3306)/naco?parseTime=true&loc=UTC&charset=utf8mb4&timeout=5s&readTimeout=30s&writeTimeout=30s"),

		JWTSecret: envString("JWT_SECRET", "naco-dev-secret-change-me"),

		PlatformFee:           envFloat("PLATFORM_FEE", 500),
		RequireFutureSchedule: envBool("BOOKING_REQUIRE_FUTURE", true),
		TimeZone:              envString("APP_TIMEZONE", "Africa/Lagos"),
		StoreTimeout:          envDuration("STORE_TIMEOUT", 5*time.Second),

		NotifyBuffer:  envInt("NOTIFY_BUFFER", 256),
		NotifyWorkers: envInt("NOTIFY_WORKERS", 2),

		RabbitURL:      envString("RABBITMQ_URL", ""),
		RabbitExchange: envString("RABBITMQ_EXCHANGE", "naco.events"),

		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}),
		ReminderSchedule: envString("REMINDER_SCHEDULE", "*/5 * * * *"),
	}
}

// Location resolves TimeZone, falling back to UTC on a bad name.
func (e Env) Location() *time.Location {
	loc, err := time.LoadLocation(e.TimeZone)
	if err != nil {
		log.Printf("warning: unknown APP_TIMEZONE %q, using UTC", e.TimeZone)
		return time.UTC
	}
	return loc
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("warning: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

// envFloat accepts positive values only, like envInt.
func envFloat(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("warning: invalid %s=%q, using %.2f", key, v, def)
		return def
	}
	return f
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("warning: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}

func envList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
