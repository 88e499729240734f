// cmd/origination-server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"loan-origination/internal/activity"
	"loan-origination/internal/aggregator"
	"loan-origination/internal/api"
	"loan-origination/internal/cache"
	awsclient "loan-origination/internal/common/aws"
	"loan-origination/internal/common/camunda"
	"loan-origination/internal/common/config"
	"loan-origination/internal/common/database"
	"loan-origination/internal/common/logger"
	"loan-origination/internal/common/observability"
	"loan-origination/internal/datasource"
	"loan-origination/internal/locator"
	"loan-origination/internal/models"
	"loan-origination/internal/notify"
	"loan-origination/internal/submission"
	"loan-origination/internal/webhook"
	sas "loan-origination/internal/workers/application/sync-application-status"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	zapLog.Info("starting loan origination server",
		zap.String("dataSource", cfg.DataSource.Mode),
		zap.String("cacheBackend", cfg.Locator.CacheBackend),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("observability init failed", zap.Error(err))
	}

	// readiness probes, filled in as each backing store comes up
	var probes []func(context.Context) error

	// --- Borrower data ---
	var pg *database.PostgresClient
	if cfg.DataSource.Mode == config.DataSourcePostgres {
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres open failed", zap.Error(err))
		}
		err = retryWithBackoff(func() error { return pg.Ping(ctx) }, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		probes = append(probes, pg.Ping)
		zapLog.Info("PostgreSQL connected successfully")
	}

	var db *sqlx.DB
	if pg != nil {
		db = pg.DB
	}
	ds, err := datasource.New(cfg.DataSource, db)
	if err != nil {
		zapLog.Fatal("data source init failed", zap.Error(err))
	}

	// --- Location cache ---
	var store cache.Store[[]models.Location]
	switch cfg.Locator.CacheBackend {
	case config.CacheBackendRedis:
		rc := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error { return rc.Ping(ctx) }, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rc.Close()
		probes = append(probes, rc.Ping)
		store = cache.NewRedis[[]models.Location](rc.Client, cfg.App.Name+":", log)
		zapLog.Info("Redis connected successfully")
	default:
		store = cache.NewMemory[[]models.Location]()
	}

	// --- Activity log ---
	var recorder activity.Recorder = activity.Nop{}
	if cfg.Activity.Enabled {
		esClient, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Fatal("elasticsearch init failed", zap.Error(err))
		}
		err = retryWithBackoff(func() error { return esClient.Ping(ctx) }, 15, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		es := activity.NewElasticsearch(esClient.Client, cfg.Activity.Index, log)
		if err := es.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("activity index setup failed", zap.Error(err))
		}
		probes = append(probes, esClient.Ping)
		recorder = es
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Borrower notifications ---
	var (
		sms   notify.SMSSender
		email notify.EmailSender
	)
	if cfg.Notifications.SMS.Enabled || cfg.Notifications.Email.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("aws config load failed", zap.Error(err))
		}
		if cfg.Notifications.SMS.Enabled {
			sms = awsclient.NewSNSClient(awsCfg)
		}
		if cfg.Notifications.Email.Enabled {
			email = awsclient.NewSESClient(awsCfg)
		}
	}
	notifier := notify.NewNotifier(cfg.Notifications, sms, email, recorder, log)

	// --- Services ---
	gateway, err := webhook.NewGateway(webhook.ConfigFrom(cfg), log)
	if err != nil {
		zapLog.Fatal("webhook gateway init failed", zap.Error(err))
	}
	zapLog.Info("webhook gateway ready", zap.String("baseURL", gateway.BaseURL()))

	apps := aggregator.NewService(ds, cfg.Officer, log)
	submissions := submission.NewService(gateway, ds, recorder, obs, log)
	locations := locator.NewService(ds, store, config.GetDuration(cfg.Locator.CacheTTL), log)

	scheduler := cron.New()
	if _, err := locations.Schedule(scheduler, cfg.Locator.RefreshSchedule); err != nil {
		zapLog.Fatal("invalid locator refresh schedule", zap.Error(err))
	}
	scheduler.Start()

	// --- Status write-back worker ---
	var workers []*camunda.Worker
	if cfg.Camunda.Enabled {
		zc, err := camunda.NewClientWithConfig(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
		})
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		defer zc.Close()
		probes = append(probes, zc.HealthCheck)
		zapLog.Info("Zeebe client connected successfully")

		if wc := config.GetWorkerConfig(cfg, sas.TaskType); wc.Enabled {
			wcfg := sas.LoadConfig(wc)
			handler := sas.NewHandler(wcfg, apps, notifier, recorder, obs, log)
			workers = append(workers, camunda.NewWorker(zc.GetClient(), sas.TaskType, wcfg.MaxJobsActive, wcfg.Timeout, handler, log))
		}
	}

	// --- HTTP server ---
	router := api.NewRouter(api.Deps{
		Applications: apps,
		Submissions:  submissions,
		Locator:      locations,
		Activity:     recorder,
		Notifier:     notifier,
		Ready: func(ctx context.Context) error {
			for _, probe := range probes {
				if err := probe(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	}, api.Options{RequestTimeout: config.GetDuration(cfg.Server.RequestTimeout)}, log)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("http server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLog.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	<-scheduler.Stop().Done()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Warn("observability shutdown failed", zap.Error(err))
	}
	zapLog.Info("shutdown complete")
}
