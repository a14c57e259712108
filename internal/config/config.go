package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Backend selectors.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	QueueMemory = "memory"
	QueueRedis  = "redis"
	QueueSQS    = "sqs"

	IdempotencyStore  = "store"
	IdempotencyDynamo = "dynamo"
)

// Config is loaded once at process start from the environment. The test-*
// fields only affect timing and outcome determinism, never control flow.
type Config struct {
	Port string

	StoreBackend       string
	QueueBackend       string
	IdempotencyBackend string

	PostgresDSN string
	RedisAddr   string

	SQSPaymentQueueURL string
	SQSRefundQueueURL  string
	SQSWebhookQueueURL string
	DynamoTable        string

	TestMode                  bool
	TestProcessingDelay       time.Duration
	TestPaymentSuccess        bool
	WebhookRetryIntervalsTest bool

	IdempotencyTTL time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:               getenv("SERVER_PORT", "8080"),
		StoreBackend:       getenv("STORE_BACKEND", StoreMemory),
		QueueBackend:       getenv("QUEUE_BACKEND", QueueMemory),
		IdempotencyBackend: getenv("IDEMPOTENCY_BACKEND", IdempotencyStore),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		RedisAddr:          getenv("REDIS_ADDR", "localhost:6379"),
		SQSPaymentQueueURL: os.Getenv("SQS_PAYMENT_QUEUE_URL"),
		SQSRefundQueueURL:  os.Getenv("SQS_REFUND_QUEUE_URL"),
		SQSWebhookQueueURL: os.Getenv("SQS_WEBHOOK_QUEUE_URL"),
		DynamoTable:        getenv("DYNAMO_IDEMPOTENCY_TABLE", "idempotency-keys"),

		TestMode:                  getbool("TEST_MODE", false),
		TestPaymentSuccess:        getbool("TEST_PAYMENT_SUCCESS", true),
		WebhookRetryIntervalsTest: getbool("WEBHOOK_RETRY_INTERVALS_TEST", false),

		IdempotencyTTL: 24 * time.Hour,
	}

	delayMs, err := getint("TEST_PROCESSING_DELAY_MS", 1000)
	if err != nil {
		return nil, err
	}
	cfg.TestProcessingDelay = time.Duration(delayMs) * time.Millisecond

	if cfg.StoreBackend == StorePostgres && cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required when STORE_BACKEND=postgres")
	}
	if cfg.QueueBackend == QueueSQS &&
		(cfg.SQSPaymentQueueURL == "" || cfg.SQSRefundQueueURL == "" || cfg.SQSWebhookQueueURL == "") {
		return nil, fmt.Errorf("SQS_*_QUEUE_URL are required when QUEUE_BACKEND=sqs")
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getint(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
