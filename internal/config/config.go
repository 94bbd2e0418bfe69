package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	Env      string
	HTTPAddr string

	// memory | postgres
	StorageDriver string
	DatabaseURL   string
	DBUser        string
	DBPassword    string
	DBHost        string
	DBPort        string
	DBName        string
	DBSSLMode     string

	RedisAddr string
	RedisPass string

	JWTPrivKeyPath string
	JWTPubKeyPath  string
	JWTIssuer      string
	JWTAudience    string
	JWTKeyID       string
	JWTTTL         time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	RateLimitGlobal int
	RateLimitLogin  int
	RateLimitWindow time.Duration
	RateLimitBlock  time.Duration
	LoginWindow     time.Duration

	SessionPurgeSpec string
	UnpaidGaugeSpec  string
	WSHeartbeat      time.Duration
	AllowedOrigins   []string
	SnowflakeNode    int64
	ShutdownTimeout  time.Duration
	MigrateOnStartup bool
}

// Load reads .env when present and then the process environment.
func Load() AppConfig {
	_ = godotenv.Load()

	return AppConfig{
		Env:      getEnv("APP_ENV", "production"),
		HTTPAddr: getEnv("HTTP_ADDR", ":5000"),

		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		DBUser:        getEnv("DB_USER", ""),
		DBPassword:    getEnv("DB_PASSWORD", ""),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBName:        getEnv("DB_NAME", "pilotonotary"),
		DBSSLMode:     getEnv("DB_SSLMODE", "disable"),

		RedisAddr: getEnv("REDIS_ADDR", ""),
		RedisPass: getEnv("REDIS_PASS", ""),

		JWTPrivKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "/app/secrets/jwt_private.pem"),
		JWTPubKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "pilotonotary"),
		JWTAudience:    getEnv("JWT_AUDIENCE", "pilotonotary-web"),
		JWTKeyID:       getEnv("JWT_KEY_ID", ""),
		JWTTTL:         getEnvAsDuration("JWT_TTL", 24*time.Hour),

		KafkaBrokers: parseCSVEnv("KAFKA_BROKERS", ""),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "certification.events"),

		RateLimitGlobal: getEnvAsInt("RATE_LIMIT_GLOBAL", 300),
		RateLimitLogin:  getEnvAsInt("RATE_LIMIT_LOGIN", 5),
		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitBlock:  getEnvAsDuration("RATE_LIMIT_BLOCK", 5*time.Minute),
		LoginWindow:     getEnvAsDuration("RATE_LIMIT_LOGIN_WINDOW", 30*time.Second),

		SessionPurgeSpec: getEnv("CRON_SESSION_PURGE", "*/30 * * * *"),
		UnpaidGaugeSpec:  getEnv("CRON_UNPAID_GAUGE", "*/5 * * * *"),
		WSHeartbeat:      getEnvAsDuration("WS_HEARTBEAT", 30*time.Second),
		AllowedOrigins:   parseCSVEnv("CORS_ALLOWED_ORIGINS", "*"),
		SnowflakeNode:    int64(getEnvAsInt("SNOWFLAKE_NODE", 1)),
		ShutdownTimeout:  getEnvAsDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		MigrateOnStartup: getEnv("MIGRATE_ON_STARTUP", "false") == "true",
	}
}

func (c AppConfig) Development() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseCSVEnv(key, fallback string) []string {
	val := getEnv(key, fallback)
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvAsInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
