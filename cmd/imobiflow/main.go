package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/imobiflow/imobiflow/internal/agencies"
	"github.com/imobiflow/imobiflow/internal/app"
	"github.com/imobiflow/imobiflow/internal/documents"
	"github.com/imobiflow/imobiflow/internal/leads"
	"github.com/imobiflow/imobiflow/internal/observability"
	"github.com/imobiflow/imobiflow/internal/platform/cache"
	"github.com/imobiflow/imobiflow/internal/platform/db"
	"github.com/imobiflow/imobiflow/internal/properties"
	"github.com/imobiflow/imobiflow/internal/rbac"
	"github.com/imobiflow/imobiflow/internal/shared"
	"github.com/imobiflow/imobiflow/internal/subscriptions"
	"github.com/imobiflow/imobiflow/internal/teams"
	"github.com/imobiflow/imobiflow/internal/users"
	"github.com/imobiflow/imobiflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, cfg.SessionCookie, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()
	guard := rbac.Middleware{Logger: logger, Denials: metrics.AuthzDenials()}
	auditLogger := shared.NewAuditLogger(pool)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	agenciesRepo := agencies.NewRepository(pool)
	agenciesService := agencies.NewService(agenciesRepo, auditLogger)
	agenciesHandler := agencies.NewHandler(logger, agenciesService, guard)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo, auditLogger)
	usersHandler := users.NewHandler(logger, usersService, guard)

	teamsRepo := teams.NewRepository(pool)
	teamsService := teams.NewService(teamsRepo, auditLogger)
	teamsHandler := teams.NewHandler(logger, teamsService, guard)

	leadsRepo := leads.NewRepository(pool)
	leadsService := leads.NewService(leadsRepo, auditLogger, jobClient)
	leadsHandler := leads.NewHandler(logger, leadsService, guard)

	propertiesRepo := properties.NewRepository(pool)
	propertiesService := properties.NewService(propertiesRepo, auditLogger)
	propertiesHandler := properties.NewHandler(logger, propertiesService, guard)

	agencyName := func(ctx context.Context, id uuid.UUID) (string, error) {
		agency, err := agenciesRepo.Get(ctx, id)
		if err != nil {
			return "", err
		}
		return agency.Name, nil
	}
	documentsRepo := documents.NewRepository(pool)
	documentsService := documents.NewService(documentsRepo, leadsService, propertiesService, auditLogger, agencyName)
	documentsHandler := documents.NewHandler(logger, documentsService)

	subscriptionsRepo := subscriptions.NewRepository(pool)
	subscriptionsService := subscriptions.NewService(subscriptionsRepo)
	subscriptionsHandler := subscriptions.NewHandler(logger, subscriptionsService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	meHandler := rbac.NewMeHandler(logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		RBACMiddleware:      guard,
		MeHandler:           meHandler,
		AgenciesHandler:     agenciesHandler,
		UsersHandler:        usersHandler,
		TeamsHandler:        teamsHandler,
		LeadsHandler:        leadsHandler,
		PropertiesHandler:   propertiesHandler,
		DocumentsHandler:    documentsHandler,
		SubscriptionHandler: subscriptionsHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
