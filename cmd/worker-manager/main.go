// cmd/worker-manager/main.go
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

	"go.uber.org/zap"

	"attrition-workers/internal/analytics"
	"attrition-workers/internal/common/auth"
	"attrition-workers/internal/common/camunda"
	"attrition-workers/internal/common/config"
	"attrition-workers/internal/common/database"
	commonhttp "attrition-workers/internal/common/http"
	"attrition-workers/internal/common/logger"
	"attrition-workers/internal/common/observability"
	"attrition-workers/internal/common/validation"
	"attrition-workers/internal/render"
	"attrition-workers/pkg/registry"

	fap "attrition-workers/internal/workers/data-access/fetch-attrition-predictions"
	qer "attrition-workers/internal/workers/data-access/query-employee-records"
	brc "attrition-workers/internal/workers/insight/build-risk-chart-data"
	eir "attrition-workers/internal/workers/insight/export-insight-report"
	pai "attrition-workers/internal/workers/insight/parse-attrition-insight"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
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

// dependencies are the long-lived clients shared by the workers.
type dependencies struct {
	zeebe     *camunda.Client
	pg        *database.PostgresClient
	redis     *database.RedisClient
	analytics *analytics.Client
	validator *validation.Validator
	renderer  *render.Renderer
	obs       *observability.Observability
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logger.New("info", "console")
		boot.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := dependencies{
		renderer: render.NewRenderer(nil),
		obs:      observability.New(cfg.App.Name, log),
	}
	defer deps.obs.Shutdown()

	// --- Activity registry and input schemas ---
	reg, err := registry.LoadRegistry(cfg.RegistryPath)
	if err != nil {
		zapLog.Fatal("activity registry load failed", zap.Error(err))
	}
	if err := reg.Validate(); err != nil {
		zapLog.Fatal("activity registry invalid", zap.Error(err))
	}
	deps.validator, err = validation.NewValidator(reg)
	if err != nil {
		zapLog.Fatal("input schema compilation failed", zap.Error(err))
	}

	// --- Zeebe ---
	deps.zeebe, err = camunda.NewClientWithConfig(ctx, camunda.ConfigFrom(cfg.Camunda))
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	defer deps.zeebe.Close()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	err = retryWithBackoff(ctx, func() error {
		var err error
		deps.pg, err = openAndPing(ctx, func() (*database.PostgresClient, error) {
			return database.NewPostgres(cfg.Database.Postgres)
		})
		return err
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer deps.pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis ---
	err = retryWithBackoff(ctx, func() error {
		var err error
		deps.redis, err = openAndPing(ctx, func() (*database.RedisClient, error) {
			return database.NewRedis(cfg.Database.Redis)
		})
		return err
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer deps.redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Analytics API ---
	timeout := config.GetDuration(cfg.Analytics.Timeout)
	deps.analytics = analytics.NewClient(
		cfg.Analytics.BaseURL,
		commonhttp.NewClient(timeout, cfg.Analytics.MaxRetries),
		tokenSource(cfg.Analytics, timeout),
		log,
	)

	workers := registerWorkers(cfg, deps, log, zapLog)
	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr: cfg.Metrics.ListenAddress,
		Handler: newHealthMux(map[string]readinessCheck{
			"zeebe":    deps.zeebe.HealthCheck,
			"postgres": deps.pg.Ping,
			"redis":    deps.redis.Ping,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
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
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully", zap.Any("postgresPool", deps.pg.Stats()))
}

type pingCloser interface {
	Ping(ctx context.Context) error
	Close() error
}

// openAndPing opens a connection and closes it again when the first ping
// fails, so a retried attempt never leaks the previous handle.
func openAndPing[T pingCloser](ctx context.Context, open func() (T, error)) (T, error) {
	var zero T
	conn, err := open()
	if err != nil {
		return zero, err
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return zero, err
	}
	return conn, nil
}

// tokenSource uses the client credentials grant when a token URL is
// configured and a pre-issued ANALYTICS_API_TOKEN otherwise.
func tokenSource(cfg config.AnalyticsConfig, timeout time.Duration) auth.TokenSource {
	if cfg.Auth.TokenURL != "" {
		return auth.NewClientCredentials(cfg.Auth.TokenURL, cfg.Auth.ClientID, cfg.Auth.ClientSecret, timeout)
	}
	return auth.StaticToken(os.Getenv("ANALYTICS_API_TOKEN"))
}

func registerWorkers(cfg *config.Config, deps dependencies, log logger.Logger, zapLog *zap.Logger) []*camunda.CamundaWorker {
	var workers []*camunda.CamundaWorker

	start := func(taskType string, handler camunda.JobHandler) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		if !wcfg.Enabled {
			zapLog.Info("worker disabled", zap.String("taskType", taskType))
			return
		}
		workers = append(workers, camunda.NewWorker(deps.zeebe.GetClient(), taskType, wcfg, handler, deps.obs, zapLog))
	}
	timeoutFor := func(taskType string) time.Duration {
		return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
	}

	// --- Insight workers ---
	parseCfg := pai.LoadConfig()
	parseCfg.Timeout = timeoutFor(pai.TaskType)
	start(pai.TaskType, pai.NewHandler(parseCfg, deps.validator, deps.renderer, deps.obs, log))

	chartCfg := brc.LoadConfig()
	chartCfg.Timeout = timeoutFor(brc.TaskType)
	start(brc.TaskType, brc.NewHandler(chartCfg, deps.validator, log))

	exportCfg := eir.LoadConfig()
	exportCfg.Timeout = timeoutFor(eir.TaskType)
	if cfg.Export.OutputDir != "" {
		exportCfg.OutputDir = cfg.Export.OutputDir
	}
	start(eir.TaskType, eir.NewHandler(exportCfg, deps.validator, log))

	// --- Data access workers ---
	fetchCfg := fap.LoadConfig()
	fetchCfg.Timeout = timeoutFor(fap.TaskType)
	fetchCfg.CacheTTL = time.Duration(cfg.Analytics.CacheTTL) * time.Second
	start(fap.TaskType, fap.NewHandler(fetchCfg, deps.analytics, deps.redis, deps.validator, log))

	queryCfg := qer.LoadConfig()
	queryCfg.Timeout = timeoutFor(qer.TaskType)
	start(qer.TaskType, qer.NewHandler(queryCfg, deps.pg.DB, deps.validator, log))

	return workers
}
