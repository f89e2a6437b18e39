package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/oksasatya/go-user-registration/config"
	"github.com/oksasatya/go-user-registration/internal/application"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/cache"
	pginfra "github.com/oksasatya/go-user-registration/internal/infrastructure/postgres"
	"github.com/oksasatya/go-user-registration/internal/infrastructure/queue"
	"github.com/oksasatya/go-user-registration/internal/observability"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
	"github.com/oksasatya/go-user-registration/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-activation-worker", cfg.Env)
	gin.SetMode(cfg.GinMode)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQActivationQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer pool.Close()
	users := pginfra.NewUserRepository(pool)

	// Retries and sweep jobs go through the same delayed topology as the API
	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQActivationQueue)
	if err != nil {
		logger.WithError(err).Fatal("amqp publisher")
	}
	defer pub.Close()
	activationQueue := queue.NewRabbitActivationQueue(pub, cfg.RabbitMQActivationQueue)

	sub, err := queue.Subscribe(cfg.RabbitMQURL, cfg.RabbitMQActivationQueue, 16)
	if err != nil {
		logger.WithError(err).Fatal("amqp subscribe")
	}
	defer sub.Close()

	var prom *observability.Prom
	var gatherer prometheus.Gatherer
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		prom = observability.NewProm(reg)
		gatherer = reg
	}

	activator := &application.Activator{Repo: users, Logger: logger}

	// Evict the cached copy so lookups see status=true before the TTL runs out.
	// The in-process driver lives in the API process, nothing to evict here.
	if cfg.CacheDriver != "memory" {
		rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer func() { _ = rdb.Close() }()
		activator.Cache = cache.NewRedisUserCache(rdb)
	}
	if cfg.MailgunConfigured() {
		activator.Notifier = mailer.NewActivationNotice(
			mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender), cfg.AppName)
	} else {
		logger.Info("MAIL_SEND_ENABLED=false or Mailgun not configured; activation notices disabled")
	}

	consumer := &queue.Consumer{
		Handler: activator,
		Retrier: activationQueue,
		Logger:  logger,
		Metrics: prom,
		Timeout: 30 * time.Second,
	}
	reconciler := &application.Reconciler{
		Repo:    users,
		Queue:   activationQueue,
		Options: application.ActivationPolicy(cfg.ActivationDelay, cfg.ActivationMaxAttempts, cfg.ActivationBackoff),
		Grace:   cfg.SweepGrace,
		Batch:   cfg.SweepBatch,
		Logger:  logger,
		Metrics: prom,
	}

	ready := func(c context.Context) bool {
		return sub.Healthy() && pub.Healthy() && pool.Ping(c) == nil
	}
	health := &http.Server{
		Addr:              ":" + cfg.WorkerPort,
		Handler:           healthHandler(ready, gatherer),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := health.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("health server stopped")
		}
	}()

	go reconciler.Run(ctx, cfg.SweepInterval)

	logger.WithField("queue", cfg.RabbitMQActivationQueue).Info("activation worker listening")
	if err := consumer.Run(ctx, sub.Msgs); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("consumer stopped")
	}

	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = health.Shutdown(shutdownCtx)
	logger.Info("worker shutdown complete")
}
