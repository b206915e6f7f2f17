package main

import (
	"context"
	"log/slog"
	"os"

	"parcel-delivery-service/internal/adapters/repositories"
	"parcel-delivery-service/internal/app"
	"parcel-delivery-service/internal/platform/db"
	"parcel-delivery-service/internal/services"
	"parcel-delivery-service/internal/taskqueue"
)

// redrive re-enqueues cost computation for every package still missing a
// shipping cost. Useful after queue outages or drained dead letters: the
// computation is idempotent, so duplicate tasks are harmless.
func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	if err := run(context.Background(), log); err != nil {
		log.Error("redrive failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, log *slog.Logger) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	database, err := db.Open(cfg.DB.URL)
	if err != nil {
		return err
	}
	defer database.Close()

	packageRepo := repositories.NewPostgresPackageRepository(database)
	taskRepo := repositories.NewPostgresTaskRepository(database)

	enqueuer, err := taskqueue.NewEnqueuer(taskRepo, cfg.Worker.MaxRetries)
	if err != nil {
		return err
	}
	dispatcher := services.NewCostDispatcher(enqueuer)

	unpriced, err := packageRepo.ListUnpriced(ctx)
	if err != nil {
		return err
	}
	if len(unpriced) == 0 {
		log.Info("nothing to redrive")
		return nil
	}

	enqueued := 0
	for _, pkg := range unpriced {
		taskID, err := dispatcher.DispatchCostComputation(ctx, pkg)
		if err != nil {
			log.Error("enqueue failed",
				slog.String("package_id", pkg.ID.String()),
				slog.String("error", err.Error()))
			continue
		}
		enqueued++
		log.Info("re-enqueued",
			slog.String("package_id", pkg.ID.String()),
			slog.String("task_id", taskID.String()))
	}

	log.Info("redrive complete",
		slog.Int("packages", len(unpriced)),
		slog.Int("enqueued", enqueued))
	return nil
}
