package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"orderflow/internal/adapters/out/amqpfanout"
	"orderflow/internal/adapters/out/kafkajournal"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/rediscache"

	"github.com/redis/go-redis/v9"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Infra holds connections to external systems. Nil fields are not configured.
type Infra struct {
	GormDB *gorm.DB
	Redis  *redis.Client
	Kafka  kafkajournal.MessageWriter
	AMQP   amqpfanout.Publisher
}

// Connect opens every integration named in cfg. On error, whatever was opened is closed.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (infra Infra, err error) {
	defer func() {
		if err != nil {
			_ = infra.Close()
			_ = infra.closeSinkTransports()
		}
	}()

	if cfg.LedgerDriver == LedgerPostgres {
		if infra.GormDB, err = gorm.Open(gorm_postgres.Open(cfg.DSN()), &gorm.Config{}); err != nil {
			return infra, fmt.Errorf("connect postgres: %w", err)
		}
		if err = postgres.Migrate(ctx, infra.GormDB); err != nil {
			return infra, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("ledger connected", "driver", LedgerPostgres, "host", cfg.DBHost, "db", cfg.DBName)
	}

	if cfg.RedisAddr != "" {
		infra.Redis = rediscache.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err = infra.Redis.Ping(ctx).Err(); err != nil {
			return infra, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("status cache connected", "addr", cfg.RedisAddr)
	}

	if len(cfg.KafkaBrokers) > 0 {
		infra.Kafka = kafkajournal.NewWriter(kafkajournal.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.KafkaTopic})
		logger.Info("event journal configured", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	if cfg.RabbitMQURL != "" {
		client, dialErr := amqpfanout.Dial(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if dialErr != nil {
			return infra, dialErr
		}
		infra.AMQP = client
		logger.Info("admin fanout connected", "exchange", cfg.RabbitMQExchange)
	}

	return infra, nil
}

// Close releases the ledger and cache connections. Kafka and RabbitMQ are
// closed by their sinks once drained.
func (i Infra) Close() error {
	var errs []error
	if i.GormDB != nil {
		if sqlDB, err := i.GormDB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	if i.Redis != nil {
		errs = append(errs, i.Redis.Close())
	}
	return errors.Join(errs...)
}

func (i Infra) closeSinkTransports() error {
	var errs []error
	if i.Kafka != nil {
		errs = append(errs, i.Kafka.Close())
	}
	if i.AMQP != nil {
		errs = append(errs, i.AMQP.Close())
	}
	return errors.Join(errs...)
}
