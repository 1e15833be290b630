package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/pantryshare-backend/api/routes"
	"github.com/angelmondragon/pantryshare-backend/internal/favorites"
	"github.com/angelmondragon/pantryshare-backend/internal/groupresources"
	"github.com/angelmondragon/pantryshare-backend/internal/groups"
	"github.com/angelmondragon/pantryshare-backend/internal/ingredients"
	"github.com/angelmondragon/pantryshare-backend/internal/ledger"
	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/internal/recipes"
	"github.com/angelmondragon/pantryshare-backend/internal/reminders"
	"github.com/angelmondragon/pantryshare-backend/internal/search"
	"github.com/angelmondragon/pantryshare-backend/internal/users"
	"github.com/angelmondragon/pantryshare-backend/pkg/config"
	"github.com/angelmondragon/pantryshare-backend/pkg/docstore/driver"
	"github.com/angelmondragon/pantryshare-backend/pkg/instance"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
	"github.com/angelmondragon/pantryshare-backend/pkg/metrics"
	"github.com/angelmondragon/pantryshare-backend/pkg/recipeapi"
	"github.com/angelmondragon/pantryshare-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	infra := routes.Infra{DocStore: store}

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
		infra.Redis = redisClient
		infra.Idempotency = redisClient
		infra.RateLimit = redisClient
	} else {
		logg.Warn(ctx, "redis not configured: idempotency disabled, rate limits are per instance")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	infra.Gatherer = registry
	infra.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	externalMetrics := metrics.NewExternalCallMetrics(registry)
	sideEffectMetrics := metrics.NewSideEffectMetrics(registry)

	var provider search.Provider
	recipeClient, err := recipeapi.NewClient(
		cfg.RecipeAPI.APIKey,
		recipeapi.WithBaseURL(cfg.RecipeAPI.BaseURL),
		recipeapi.WithHTTPClient(&http.Client{Timeout: cfg.RecipeAPI.Timeout}),
		recipeapi.WithRateLimit(cfg.RecipeAPI.RequestsPerSecond, cfg.RecipeAPI.Burst),
		recipeapi.WithMetrics(externalMetrics),
	)
	if err != nil {
		logg.Warn(ctx, "recipe api not configured: searches return empty results")
	} else {
		provider = recipeClient
	}

	bridge := reminders.NewGoogleBridge(cfg.Reminders, reminders.WithMetrics(externalMetrics))
	sideEffects := reminders.NewSideEffects(bridge, logg, sideEffectMetrics)

	clock := time.Now
	usersRepo := users.NewRepository(store)
	ingredientsRepo := ingredients.NewRepository(store)
	mealPlansRepo := mealplans.NewRepository(store)
	recipesRepo := recipes.NewRepository(store)
	favoritesRepo := favorites.NewRepository(store)

	directory, err := users.NewDirectory(usersRepo, clock)
	if err != nil {
		logg.Error(ctx, "failed to create user directory", err)
		os.Exit(1)
	}

	searchService, err := search.NewService(search.ServiceParams{
		Provider: provider,
		Pantry:   ingredientsRepo,
		Logger:   logg,
		Metrics:  sideEffectMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create search service", err)
		os.Exit(1)
	}

	ledgerService, err := ledger.NewService(ledger.ServiceParams{
		Ingredients: ingredientsRepo,
		MealPlans:   mealPlansRepo,
		Reminders:   sideEffects,
		Policy:      cfg.Ledger.DuplicatePolicy,
		Clock:       clock,
	})
	if err != nil {
		logg.Error(ctx, "failed to create ledger service", err)
		os.Exit(1)
	}

	mealPlansService, err := mealplans.NewService(mealplans.ServiceParams{
		MealPlans:    mealPlansRepo,
		Ingredients:  ingredientsRepo,
		Recipes:      recipesRepo,
		Favorites:    favoritesRepo,
		RecipeSource: searchService,
		Reminders:    sideEffects,
		Logger:       logg,
		Clock:        clock,
	})
	if err != nil {
		logg.Error(ctx, "failed to create meal plan service", err)
		os.Exit(1)
	}

	favoritesService, err := favorites.NewService(favorites.ServiceParams{
		Favorites: favoritesRepo,
		MealPlans: mealPlansRepo,
		Clock:     clock,
	})
	if err != nil {
		logg.Error(ctx, "failed to create favorites service", err)
		os.Exit(1)
	}

	groupsService, err := groups.NewService(groups.ServiceParams{
		Groups: groups.NewRepository(store),
		Users:  directory,
		Logger: logg,
		Fanout: cfg.Groups.Fanout,
		Clock:  clock,
	})
	if err != nil {
		logg.Error(ctx, "failed to create groups service", err)
		os.Exit(1)
	}

	groupResourcesService, err := groupresources.NewService(groupresources.ServiceParams{
		Groups:  groupsService,
		Recipes: groupresources.NewRepository(store),
		Pantry:  ingredientsRepo,
		Users:   directory,
		Search:  searchService,
		Fanout:  cfg.Groups.Fanout,
		Clock:   clock,
	})
	if err != nil {
		logg.Error(ctx, "failed to create group resources service", err)
		os.Exit(1)
	}

	remindersService, err := reminders.NewService(bridge)
	if err != nil {
		logg.Error(ctx, "failed to create reminders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	runCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"docstore": string(cfg.DocStore.Driver),
	})
	logg.Info(runCtx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(cfg, logg, infra, routes.Services{
			Users:          directory,
			Ledger:         ledgerService,
			Groups:         groupsService,
			GroupResources: groupResourcesService,
			MealPlans:      mealPlansService,
			Favorites:      favoritesService,
			Search:         searchService,
			Reminders:      remindersService,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logg.Error(runCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(runCtx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(runCtx, "api server shutdown failed", err)
		}
	}
}
