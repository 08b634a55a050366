package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/imobiflow/imobiflow/internal/app"
	jobmetrics "github.com/imobiflow/imobiflow/internal/jobs"
	"github.com/imobiflow/imobiflow/internal/leads"
	"github.com/imobiflow/imobiflow/internal/observability"
	"github.com/imobiflow/imobiflow/internal/platform/db"
	"github.com/imobiflow/imobiflow/internal/shared"
	"github.com/imobiflow/imobiflow/internal/subscriptions"
	"github.com/imobiflow/imobiflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()
	runMetrics := jobmetrics.NewMetrics(metrics.Registerer())
	auditLogger := shared.NewAuditLogger(pool)

	leadsRepo := leads.NewRepository(pool)
	leadsService := leads.NewService(leadsRepo, auditLogger, nil)

	subscriptionsRepo := subscriptions.NewRepository(pool)

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLeadDistribute, Handler: jobs.NewLeadDistributeHandler(logger, leadsService, runMetrics)},
			{Type: jobs.TaskTrialScan, Handler: jobs.NewTrialScanHandler(logger, subscriptionsRepo, metrics.TrialsExpired(), runMetrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: jobs.NewTrialScanTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
