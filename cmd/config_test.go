package cmd_test

import (
	"log/slog"
	"testing"
	"time"

	"orderflow/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := cmd.LoadConfig(envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, cmd.LedgerMemory, cfg.LedgerDriver)
	assert.Equal(t, 60*time.Second, cfg.OfferWindow)
	assert.Equal(t, 0, cfg.MaxReoffers)
	assert.Equal(t, 256, cfg.OutboxSize)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadConfig_Overrides(t *testing.T) {
	cfg, err := cmd.LoadConfig(envOf(map[string]string{
		"LEDGER_DRIVER": "postgres",
		"DB_HOST":       "db",
		"DB_PASSWORD":   "secret",
		"OFFER_WINDOW":  "90s",
		"MAX_REOFFERS":  "2",
		"KAFKA_BROKERS": "k1:9092, k2:9092,",
		"LOG_LEVEL":     "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, cmd.LedgerPostgres, cfg.LedgerDriver)
	assert.Equal(t, 90*time.Second, cfg.OfferWindow)
	assert.Equal(t, 2, cfg.MaxReoffers)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Contains(t, cfg.DSN(), "host=db")
	assert.Contains(t, cfg.DSN(), "password=secret")
}

func TestLoadConfig_ReportsEveryInvalidKey(t *testing.T) {
	_, err := cmd.LoadConfig(envOf(map[string]string{
		"LEDGER_DRIVER": "sqlite",
		"OFFER_WINDOW":  "soon",
		"MAX_REOFFERS":  "-1",
		"OUTBOX_SIZE":   "0",
	}))
	require.Error(t, err)

	for _, key := range []string{"LEDGER_DRIVER", "OFFER_WINDOW", "MAX_REOFFERS", "OUTBOX_SIZE"} {
		assert.Contains(t, err.Error(), key)
	}
}
