package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/jobs"
	"orderflow/internal/realtime/dispatcher"
)

const (
	LedgerMemory   = "memory"
	LedgerPostgres = "postgres"
)

// Config is read from the environment (and an optional .env file) at start-up.
// Integrations whose address is empty are not started.
type Config struct {
	HTTPPort string
	LogLevel slog.Level

	LedgerDriver string
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSslMode    string

	OfferWindow        time.Duration
	MaxReoffers        int
	OutboxSize         int
	OfferSweepSchedule string
	SinkQueueSize      int

	KafkaBrokers []string
	KafkaTopic   string

	RabbitMQURL      string
	RabbitMQExchange string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration
}

// LoadConfig builds a Config from getenv, applying defaults for unset keys.
func LoadConfig(getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	cfg := Config{
		HTTPPort:           env("HTTP_PORT", "8080"),
		LedgerDriver:       env("LEDGER_DRIVER", LedgerMemory),
		DBHost:             env("DB_HOST", "localhost"),
		DBPort:             env("DB_PORT", "5432"),
		DBUser:             env("DB_USER", "postgres"),
		DBPassword:         getenv("DB_PASSWORD"),
		DBName:             env("DB_NAME", "orderflow"),
		DBSslMode:          env("DB_SSLMODE", "disable"),
		OfferSweepSchedule: env("OFFER_SWEEP_SCHEDULE", jobs.DefaultOfferSweepSchedule),
		KafkaTopic:         env("KAFKA_TOPIC", "orderflow.order-events"),
		RabbitMQURL:        getenv("RABBITMQ_URL"),
		RabbitMQExchange:   env("RABBITMQ_EXCHANGE", "orderflow.admin"),
		RedisAddr:          getenv("REDIS_ADDR"),
		RedisPassword:      getenv("REDIS_PASSWORD"),
	}
	if brokers := getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	var errs []error
	parseDuration := func(key string, fallback time.Duration) time.Duration {
		d, err := time.ParseDuration(env(key, fallback.String()))
		if err != nil || d <= 0 {
			errs = append(errs, fmt.Errorf("%s: must be a positive duration", key))
		}
		return d
	}
	parseInt := func(key string, fallback, minValue int) int {
		n, err := strconv.Atoi(env(key, strconv.Itoa(fallback)))
		if err != nil || n < minValue {
			errs = append(errs, fmt.Errorf("%s: must be an integer >= %d", key, minValue))
		}
		return n
	}

	cfg.OfferWindow = parseDuration("OFFER_WINDOW", order.DefaultOfferWindow)
	cfg.RedisTTL = parseDuration("REDIS_TTL", 5*time.Minute)
	cfg.MaxReoffers = parseInt("MAX_REOFFERS", 0, 0)
	cfg.OutboxSize = parseInt("OUTBOX_SIZE", dispatcher.DefaultOutboxSize, 1)
	cfg.SinkQueueSize = parseInt("SINK_QUEUE_SIZE", 1024, 1)
	cfg.RedisDB = parseInt("REDIS_DB", 0, 0)

	if err := cfg.LogLevel.UnmarshalText([]byte(env("LOG_LEVEL", "info"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if cfg.LedgerDriver != LedgerMemory && cfg.LedgerDriver != LedgerPostgres {
		errs = append(errs, fmt.Errorf("LEDGER_DRIVER: %q is not one of %s, %s", cfg.LedgerDriver, LedgerMemory, LedgerPostgres))
	}

	return cfg, errors.Join(errs...)
}

// DSN is the PostgreSQL connection string for the GORM ledger.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}
