package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/api"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/config"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/db"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/metrics"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/notify"
	redisclient "github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/redis"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/internal/schedule"
	"github.com/Swarajhere/Healthcare-Appointment-System-sub000/pkg/logging"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Default().Error("config load error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel)
	logger.Info("api-server starting up", "env", cfg.Env, "http_port", cfg.HTTPPort, "clinic_tz", cfg.ClinicTZ)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		logger.Error("postgres connection error", "error", err)
		os.Exit(1)
	}
	defer pgPool.Close()
	logger.Info("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		logger.Error("redis connection error", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Warn("error closing redis", "error", err)
		}
	}()
	logger.Info("connected to Redis")

	repo := schedule.NewPgRepository(pgPool)
	locker := redisclient.NewRedisSlotLocker(rdb, cfg.LockTTL)
	clock := schedule.NewClinicClock(cfg.Location)

	emailSender := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFrom,
		FromName:  cfg.SendGridName,
	}, logger)
	var notifier schedule.Notifier
	if emailSender != nil {
		notifier = notify.NewService(emailSender, logger)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, booking confirmations disabled")
		notifier = notify.NewService(nil, logger)
	}

	svc := schedule.NewService(repo, locker, clock, notifier, logger, cfg)
	m := metrics.New(nil)

	router := api.NewRouter(api.RouterConfig{
		Service:   svc,
		Metrics:   m,
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,
		PgPool:    pgPool,
		Redis:     rdb,
		Env:       cfg.Env,
		Version:   version,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()

	logger.Info("shutting down api-server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
