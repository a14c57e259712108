package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/imrishuroy/go-payment-gateway/internal/api"
	"github.com/imrishuroy/go-payment-gateway/internal/config"
	"github.com/imrishuroy/go-payment-gateway/internal/idempotency"
	"github.com/imrishuroy/go-payment-gateway/internal/metrics"
	"github.com/imrishuroy/go-payment-gateway/internal/queue"
	"github.com/imrishuroy/go-payment-gateway/internal/service"
	"github.com/imrishuroy/go-payment-gateway/internal/store"
	"github.com/imrishuroy/go-payment-gateway/internal/webhook"
	"github.com/imrishuroy/go-payment-gateway/internal/worker"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("gateway exited", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := buildStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	q, err := buildQueue(ctx, cfg, logger)
	if err != nil {
		return err
	}

	cache, err := buildIdempotencyCache(ctx, cfg, st)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	emitter := webhook.NewEmitter(st, q, logger)
	scheduler := webhook.NewScheduler(q, logger)
	engine := webhook.NewEngine(st, q, scheduler, m, logger, cfg.WebhookRetryIntervalsTest)

	outcome, delayPayment, delayRefund := processingProfile(cfg)

	paymentProc := &worker.PaymentProcessor{
		Store:   st,
		Emitter: emitter,
		Outcome: outcome,
		Delay:   delayPayment,
		Metrics: m,
		Logger:  logger.Named("payment-worker"),
	}
	refundProc := &worker.RefundProcessor{
		Store:   st,
		Emitter: emitter,
		Delay:   delayRefund,
		Metrics: m,
		Logger:  logger.Named("refund-worker"),
	}
	webhookProc := &worker.WebhookProcessor{Engine: engine}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		scheduler.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		worker.Run(ctx, q, queue.PaymentJobs, paymentProc.Process, m, logger.Named("payment-worker"))
	}()
	go func() {
		defer wg.Done()
		worker.Run(ctx, q, queue.RefundJobs, refundProc.Process, m, logger.Named("refund-worker"))
	}()
	go func() {
		defer wg.Done()
		worker.Run(ctx, q, queue.WebhookJobs, webhookProc.Process, m, logger.Named("webhook-worker"))
	}()

	orders := service.NewOrders(st, logger)
	payments := service.NewPayments(st, orders, cache, q, cfg.IdempotencyTTL, logger)
	refunds := service.NewRefunds(st, payments, q, logger)
	webhooks := service.NewWebhooks(st, q, logger)

	handlers := api.NewHandlers(orders, payments, refunds, webhooks, logger)
	router := api.NewRouter(handlers, st, reg, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", zap.Error(err))
	}
	wg.Wait()
	return nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		pg, err := store.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("using postgres store")
		return pg, nil
	case config.StoreMemory:
		return store.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
}

func buildQueue(ctx context.Context, cfg *config.Config, logger *zap.Logger) (queue.Queue, error) {
	switch cfg.QueueBackend {
	case config.QueueRedis:
		r := queue.NewRedis(cfg.RedisAddr)
		if err := r.Ping(ctx); err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("using redis queue", zap.String("addr", cfg.RedisAddr))
		return r, nil
	case config.QueueSQS:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		urls := map[string]string{
			queue.PaymentJobs: cfg.SQSPaymentQueueURL,
			queue.RefundJobs:  cfg.SQSRefundQueueURL,
			queue.WebhookJobs: cfg.SQSWebhookQueueURL,
		}
		logger.Info("using sqs queue")
		return queue.NewSQS(sqs.NewFromConfig(awsCfg), urls), nil
	case config.QueueMemory:
		return queue.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown QUEUE_BACKEND %q", cfg.QueueBackend)
	}
}

func buildIdempotencyCache(ctx context.Context, cfg *config.Config, st store.Store) (idempotency.Cache, error) {
	switch cfg.IdempotencyBackend {
	case config.IdempotencyDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return idempotency.NewDynamoCache(dynamodb.NewFromConfig(awsCfg), cfg.DynamoTable), nil
	case config.IdempotencyStore:
		return idempotency.NewStoreCache(st), nil
	default:
		return nil, fmt.Errorf("unknown IDEMPOTENCY_BACKEND %q", cfg.IdempotencyBackend)
	}
}

// processingProfile picks the settlement simulation for the configured mode.
// Test mode makes outcomes and latency deterministic so integration suites
// can assert on terminal states.
func processingProfile(cfg *config.Config) (worker.OutcomeDecider, worker.DelayFunc, worker.DelayFunc) {
	if cfg.TestMode {
		fixed := worker.FixedDelay(cfg.TestProcessingDelay)
		return worker.FixedOutcome{Success: cfg.TestPaymentSuccess}, fixed, fixed
	}
	return worker.RandomOutcome{},
		worker.RandomDelay(5*time.Second, 10*time.Second),
		worker.RandomDelay(3*time.Second, 5*time.Second)
}
