package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/angelmondragon/pantryshare-backend/internal/cron"
	"github.com/angelmondragon/pantryshare-backend/internal/favorites"
	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/internal/users"
	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/driver"
	"github.com/angelmondragon/pantryshare-backend/pkg/instance"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
	"github.com/angelmondragon/pantryshare-backend/pkg/redis"
)

const lockKeyFormat = "pantry:maintenance:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.ID(),
	})

	store, err := driver.Open(ctx, cfg.DocStore, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap docstore", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logg.Error(context.Background(), "error closing docstore", err)
		}
	}()

	var lock cron.Lock = &cron.LocalLock{}
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		lock, err = cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), cfg.Maintenance.LockTTL)
		if err != nil {
			logg.Error(ctx, "failed to create maintenance lock", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "redis not configured: run a single cron-worker instance")
	}

	// Reconcile never reads recipes or touches reminders, so neither the
	// recipe API nor the reminder bridge is wired here.
	mealPlansService, err := mealplans.NewService(mealplans.ServiceParams{
		MealPlans:   mealplans.NewRepository(store),
		Ingredients: ingredients.NewRepository(store),
		Recipes:     recipes.NewRepository(store),
		Favorites:   favorites.NewRepository(store),
		Logger:      logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create meal plan service", err)
		os.Exit(1)
	}

	reconcileJob, err := cron.NewReconcileJob(users.NewRepository(store), mealPlansService, logg, cfg.Maintenance.BatchSize)
	if err != nil {
		logg.Error(ctx, "failed to create reconcile job", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reconcileJob),
		Lock:     lock,
		Metrics:  metrics.NewJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Maintenance.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create maintenance service", err)
		os.Exit(1)
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
