package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"parcel-delivery-service/internal/adapters/cache"
	"parcel-delivery-service/internal/adapters/rates"
	"parcel-delivery-service/internal/adapters/repositories"
	"parcel-delivery-service/internal/api"
	"parcel-delivery-service/internal/app"
	"parcel-delivery-service/internal/platform/db"
	"parcel-delivery-service/internal/services"
	"parcel-delivery-service/internal/taskqueue"

	"github.com/redis/go-redis/v9"
)

// main is the application composition root. It wires Postgres and Redis
// adapters behind ports, starts the cost computation worker, and serves
// HTTP until interrupted.
func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DB.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	// Schema init and type seeding run on every start; both are no-ops
	// once applied.
	if err := repositories.InitSchema(ctx, database); err != nil {
		return err
	}
	if err := repositories.SeedPackageTypes(ctx, database); err != nil {
		return err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The rate cache degrades to source fetches, so a dead Redis is
		// worth a warning but not a refused start.
		log.Warn("redis unreachable at startup", slog.String("error", err.Error()))
	}

	packageRepo := repositories.NewPostgresPackageRepository(database)
	sessionRepo := repositories.NewPostgresSessionRepository(database)
	taskRepo := repositories.NewPostgresTaskRepository(database)

	rateProvider, err := rates.NewCBRRateProvider(cfg.Rates.SourceURL, cfg.Rates.SourceTimeout)
	if err != nil {
		return err
	}
	rateCache := cache.NewRedisRateCache(redisClient, log)
	rateService := services.NewRateService(rateCache, rateProvider, cfg.Rates.CacheTTL, log)

	sessionService := services.NewSessionService(sessionRepo)
	pricingService := services.NewPricingService(packageRepo, rateService, log)

	enqueuer, err := taskqueue.NewEnqueuer(taskRepo, cfg.Worker.MaxRetries)
	if err != nil {
		return err
	}
	dispatcher := services.NewCostDispatcher(enqueuer)

	worker, err := taskqueue.NewWorker(taskRepo, taskqueue.WorkerConfig{
		PollInterval: cfg.Worker.PollInterval,
		LockTimeout:  cfg.Worker.LockTimeout,
		Concurrency:  cfg.Worker.Concurrency,
	}, log)
	if err != nil {
		return err
	}
	worker.Register(pricingService.Handler())

	workerErr := make(chan error, 1)
	go func() {
		workerErr <- worker.Run(ctx)
	}()

	router := api.NewRouter(api.RouterDeps{
		Packages:   packageRepo,
		Sessions:   sessionService,
		Dispatcher: dispatcher,
		Rates:      rateService,
		Cookie: api.SessionCookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.CookieMaxAge,
			Secure: cfg.Session.CookieSecure,
		},
		DB:    database,
		Redis: redisClient,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           router,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", slog.String("addr", srv.Addr))
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.String("error", err.Error()))
	}

	// Worker.Run drains in-flight tasks after ctx cancellation.
	if err := <-workerErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
