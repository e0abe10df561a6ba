// Command server boots the HTTP API: compliance validation, contingency
// analysis, equilibrium modeling, faceted search, the task scheduler, the
// import staging pipeline, webhook ingestion, and calendar subscriptions,
// grounded on the teacher's cmd/server/main.go bootstrap sequence (read
// config, build the repository, build services, start the router, handle
// shutdown).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/api"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/config"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/logger"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/metrics"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/memory"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/postgres"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/calendar"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/compliance"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/contingency"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/equilibrium"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/importstaging"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/scheduler"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/scheduler/lock"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/search"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/service/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	sugar, err := logger.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer sugar.Sync()

	db, err := buildDatabase(cfg)
	if err != nil {
		sugar.Fatalw("building database", "error", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	registry := metrics.NewRegistry()

	sched := scheduler.New(lock.New(redisClient), cfg.SchedulerWorkerPoolSize)
	sched.Start()
	defer sched.Stop(true)

	exporter, err := calendar.NewExporter(cfg.CalendarTimezone)
	if err != nil {
		sugar.Fatalw("building calendar exporter", "error", err)
	}

	deps := &api.Deps{
		DB: db,

		Compliance:  compliance.NewValidator(db),
		Contingency: contingency.NewAnalyzer(db),
		Equilibrium: equilibrium.NewAnalyzer(),
		Search:      search.NewService(db, search.NewRedisCache(redisClient)),
		Scheduler:   sched,
		Importing:   importstaging.NewService(db),
		Webhook: webhook.NewVerifier(webhook.Config{
			IPWhitelist:   cfg.WebhookIPWhitelist,
			MaxBodyBytes:  cfg.WebhookMaxBodyBytes,
			TimestampSkew: cfg.WebhookTimestampSkew,
		}, db.WebhookSecretRepository(), db.WebhookDeliveryRepository()),
		Subscriptions: calendar.NewSubscriptionService(db.CalendarSubscriptionRepository()),
		Calendar:      exporter,

		Log:     sugar,
		Metrics: registry,
	}

	e := api.NewRouter(deps)

	go func() {
		sugar.Infow("starting server", "addr", cfg.ServerAddr)
		if err := e.Start(cfg.ServerAddr); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sugar.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		sugar.Errorw("graceful shutdown failed", "error", err)
	}
}

func buildDatabase(cfg *config.Config) (repository.Database, error) {
	if cfg.DatabaseURL == "" {
		return memory.New(), nil
	}
	return postgres.New(cfg.DatabaseURL)
}
