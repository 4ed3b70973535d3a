package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	GinMode    string
	LogLevel   string
	LogFormat  string
	JWTSecret  string
	CORSOrigin []string

	DBDriver    string
	DatabaseDSN string

	RedisAddr        string
	RabbitMQURL      string
	RabbitMQExchange string

	YearlyTarget int64
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	target, err := strconv.ParseInt(getEnv("YEARLY_TARGET", "600000000"), 10, 64)
	if err != nil || target < 0 {
		return nil, fmt.Errorf("config: YEARLY_TARGET must be a non-negative integer")
	}

	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
		JWTSecret:        getEnv("JWT_SECRET", "dev-secret-change-in-production"),
		CORSOrigin:       splitList(getEnv("CORS_ORIGINS", "*")),
		DBDriver:         strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DatabaseDSN:      os.Getenv("DATABASE_DSN"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RabbitMQURL:      os.Getenv("RABBITMQ_URL"),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "pos.exchange"),
		YearlyTarget:     target,
	}

	switch cfg.DBDriver {
	case "sqlite":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = "pos.db"
		}
	case "mysql":
		if cfg.DatabaseDSN == "" {
			cfg.DatabaseDSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
				os.Getenv("MYSQL_USER"),
				os.Getenv("MYSQL_PASSWORD"),
				getEnv("MYSQL_HOST", "localhost"),
				getEnv("MYSQL_PORT", "3306"),
				os.Getenv("MYSQL_DATABASE"),
			)
		}
	default:
		return nil, fmt.Errorf("config: unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
