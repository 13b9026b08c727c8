package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr             = ":8080"
	defaultGRPCAddr             = ":50051"
	defaultJournalQueueSize     = 1024
	defaultJournalWorkers       = 2
	defaultRedistributeSchedule = "@every 5m"
	defaultDisposalSchedule     = "@daily"
)

type Config struct {
	HTTPAddr string
	GRPCAddr string
	AppEnv   string
	LogLevel string

	// Optional backends; an empty value leaves the adapter unwired.
	MySQLDSN        string
	RedisAddr       string
	KafkaBroker     string
	KafkaAuditTopic string

	JournalQueueSize int
	JournalWorkers   int

	// Cron specs; empty disables the sweep.
	RedistributeSchedule string
	DisposalSchedule     string

	NetworkFile string
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults for unset keys.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		HTTPAddr:             stringOr(lookup, "HTTP_ADDR", defaultHTTPAddr),
		GRPCAddr:             stringOr(lookup, "GRPC_ADDR", defaultGRPCAddr),
		AppEnv:               stringOr(lookup, "APP_ENV", "production"),
		LogLevel:             stringOr(lookup, "LOG_LEVEL", "info"),
		MySQLDSN:             stringOr(lookup, "MYSQL_DSN", ""),
		RedisAddr:            stringOr(lookup, "REDIS_ADDR", ""),
		KafkaBroker:          stringOr(lookup, "KAFKA_BROKER", ""),
		KafkaAuditTopic:      stringOr(lookup, "KAFKA_AUDIT_TOPIC", "warehouse.audit"),
		RedistributeSchedule: stringOr(lookup, "REDISTRIBUTE_SCHEDULE", defaultRedistributeSchedule),
		DisposalSchedule:     stringOr(lookup, "DISPOSAL_SCHEDULE", defaultDisposalSchedule),
		NetworkFile:          stringOr(lookup, "NETWORK_FILE", ""),
	}

	var err error
	if cfg.JournalQueueSize, err = positiveInt(lookup, "JOURNAL_QUEUE_SIZE", defaultJournalQueueSize); err != nil {
		return Config{}, err
	}
	if cfg.JournalWorkers, err = positiveInt(lookup, "JOURNAL_WORKERS", defaultJournalWorkers); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// stringOr returns the trimmed value of key. A key that is set but empty
// yields "", which lets schedules be disabled explicitly.
func stringOr(lookup func(string) (string, bool), key, fallback string) string {
	v, ok := lookup(key)
	if !ok {
		return fallback
	}
	return strings.TrimSpace(v)
}

func positiveInt(lookup func(string) (string, bool), key string, fallback int) (int, error) {
	v, ok := lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %d", key, n)
	}
	return n, nil
}
