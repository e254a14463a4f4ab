// cmd/loan-approval/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"loan-approval/internal/app/handlers"
	"loan-approval/internal/app/router"
	"loan-approval/internal/common/aws"
	"loan-approval/internal/common/camunda"
	"loan-approval/internal/common/config"
	"loan-approval/internal/common/database"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/common/observability"
	"loan-approval/internal/decision"
	"loan-approval/internal/inference"
	"loan-approval/internal/store"

	nld "loan-approval/internal/workers/loan/notify-loan-decision"
	pla "loan-approval/internal/workers/loan/predict-loan-approval"
	rld "loan-approval/internal/workers/loan/record-loan-decision"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func(context.Context) error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loan approval service",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Artifacts: nothing is served until these load ---
	artifacts, err := inference.NewOnceLoader(cfg.Artifacts.Paths()).Get()
	if err != nil {
		zapLog.Fatal("model artifacts failed to load", zap.Error(err))
	}
	metrics.ArtifactsLoadedTimestamp.Set(float64(artifacts.LoadedAt.Unix()))
	zapLog.Info("Model artifacts loaded",
		zap.String("digest", artifacts.Digest),
		zap.String("model", artifacts.Model.Kind()),
		zap.String("scaler", artifacts.Scaler.Kind()),
	)

	// --- Observability ---
	obs, err := observability.New(logger.ServiceName, prometheus.DefaultRegisterer)
	if err != nil {
		zapLog.Fatal("metrics setup failed", zap.Error(err))
	}
	defer obs.Shutdown(context.Background())

	if cfg.Tracing.Enabled {
		shutdownTracing, err := observability.SetupTracing(ctx, logger.ServiceName, cfg.Tracing.JaegerEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			zapLog.Fatal("tracing setup failed", zap.Error(err))
		}
		defer shutdownTracing(context.Background())
		zapLog.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.JaegerEndpoint))
	}

	checks := map[string]handlers.ReadinessCheck{}

	// --- Redis verdict cache (optional) ---
	decisionCfg := decision.Config{
		CacheTTL:      time.Duration(cfg.Cache.VerdictTTL) * time.Second,
		KeyPrefix:     cfg.Cache.KeyPrefix,
		Observability: obs,
		Logger:        log,
	}
	if cfg.Database.Redis.Enabled() {
		var rdb *database.RedisClient
		err = retryWithBackoff(ctx, func(ctx context.Context) error {
			var err error
			if rdb, err = database.NewRedis(cfg.Database.Redis); err != nil {
				return err
			}
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		decisionCfg.Cache = rdb.Client
		if removed, err := rdb.PurgeStaleVerdicts(ctx, cfg.Cache.KeyPrefix, artifacts.Digest); err != nil {
			zapLog.Warn("stale verdict purge failed", zap.Error(err))
		} else if removed > 0 {
			zapLog.Info("Purged verdicts from previous artifacts", zap.Int("keys", removed))
		}
		checks["redis"] = rdb.Ping
		zapLog.Info("Redis connected successfully")
	}
	service := decision.NewService(artifacts, decisionCfg)

	// --- Decision store (optional) ---
	var decisionStore *store.DecisionStore
	if cfg.Database.Postgres.Enabled() {
		var pg *database.PostgresClient
		err = retryWithBackoff(ctx, func(ctx context.Context) error {
			var err error
			if pg, err = database.NewPostgres(cfg.Database.Postgres); err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, log, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		if err := pg.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("postgres schema failed", zap.Error(err))
		}
		checks["postgres"] = pg.Ping
		zapLog.Info("PostgreSQL connected successfully")

		var search store.SearchIndexer
		if cfg.Database.Elasticsearch.Enabled() {
			var esClient *database.ElasticsearchClient
			err = retryWithBackoff(ctx, func(ctx context.Context) error {
				var err error
				if esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch); err != nil {
					return err
				}
				return esClient.Ping(ctx)
			}, 15, 2*time.Second, log, "Elasticsearch connection")
			if err != nil {
				zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
			}
			search = esClient
			checks["elasticsearch"] = esClient.Ping
			zapLog.Info("Elasticsearch connected successfully")
		}

		decisionStore = store.NewDecisionStore(pg.DB, search, cfg.Database.Elasticsearch.DecisionIndex, log)
	}

	// --- Zeebe workers (optional) ---
	var workers []*camunda.Worker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled() {
		zeebe, err = camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: cfg.Camunda.UsePlaintext,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.ConnectionTimeout),
			RetryConfig: &camunda.RetryConfig{
				MaxRetries: cfg.Camunda.MaxRetries,
				BaseDelay:  time.Second,
				MaxDelay:   10 * time.Second,
			},
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		checks["zeebe"] = zeebe.HealthCheck
		zapLog.Info("Zeebe client connected successfully")

		workers = startWorkers(ctx, cfg, zeebe, service, decisionStore, log)
		zapLog.Info("Loan workers registered", zap.Int("count", len(workers)))
	}

	// --- HTTP API ---
	gin.SetMode(cfg.Server.Mode)
	var recorder handlers.DecisionRecorder
	if decisionStore != nil {
		recorder = decisionStore
	}
	engine := router.SetupRouter(router.Dependencies{
		Decisions: handlers.NewDecisionHandler(service, recorder, log),
		Health:    handlers.NewHealthHandler(logger.ServiceName, artifacts.Digest, checks),
		Meter:     obs.Meter(),
		Logger:    log,
	})
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      engine,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}
	go func() {
		zapLog.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping HTTP server", zap.Error(err))
	}

	zapLog.Info("Loan approval service stopped gracefully")
}

func startWorkers(ctx context.Context, cfg *config.Config, zeebe *camunda.Client, service *decision.Service, decisionStore *store.DecisionStore, log logger.Logger) []*camunda.Worker {
	var workers []*camunda.Worker
	open := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), taskType, camunda.WorkerOptions{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, log))
	}

	if config.IsWorkerEnabled(cfg, pla.TaskType) {
		handler, err := pla.NewHandler(pla.ConfigFromApp(cfg), service, log)
		if err != nil {
			log.Error("failed to create handler", map[string]interface{}{"taskType": pla.TaskType, "error": err.Error()})
		} else {
			open(pla.TaskType, handler)
		}
	}

	if config.IsWorkerEnabled(cfg, rld.TaskType) {
		if decisionStore == nil {
			log.Warn("worker disabled: no decision store configured", map[string]interface{}{"taskType": rld.TaskType})
		} else if handler, err := rld.NewHandler(rld.ConfigFromApp(cfg), decisionStore, log); err != nil {
			log.Error("failed to create handler", map[string]interface{}{"taskType": rld.TaskType, "error": err.Error()})
		} else {
			open(rld.TaskType, handler)
		}
	}

	if config.IsWorkerEnabled(cfg, nld.TaskType) {
		ncfg := nld.ConfigFromApp(cfg)
		var publisher nld.Publisher
		var mailer nld.Mailer
		if ncfg.SNSEnabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				log.Error("failed to create SNS client", map[string]interface{}{"error": err.Error()})
			} else {
				publisher = snsClient
			}
		}
		if ncfg.EmailEnabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
			if err != nil {
				log.Error("failed to create SES client", map[string]interface{}{"error": err.Error()})
			} else {
				mailer = sesClient
			}
		}
		if handler, err := nld.NewHandler(ncfg, publisher, mailer, log); err != nil {
			log.Error("failed to create handler", map[string]interface{}{"taskType": nld.TaskType, "error": err.Error()})
		} else {
			open(nld.TaskType, handler)
		}
	}

	return workers
}
