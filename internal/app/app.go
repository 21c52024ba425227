package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"gdsa/internal/config"
	"gdsa/internal/metrics"
	"gdsa/internal/storage"
	"gdsa/internal/travel"
)

// App carries the process-wide collaborators. It is built once in main and
// passed to whatever needs it.
type App struct {
	Config  config.Config
	Store   *storage.Store
	Master  *MasterFile
	Log     *zap.Logger
	Metrics *metrics.Metrics
}

// Open opens the store, prepares the schema and loads the master file of the
// configured build.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := store.InitSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	key := cfg.MasterFileKey()
	travels, err := store.LoadMasterFile(ctx, key)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load master file %s: %w", key, err)
	}
	log.Debug("loaded master file", zap.String("key", key), zap.Int("travels", len(travels)))

	return &App{
		Config:  cfg,
		Store:   store,
		Master:  NewMasterFile(key, travels),
		Log:     log,
		Metrics: metrics.New(),
	}, nil
}

// Close writes the metrics textfile when configured and closes the store.
// Travels are persisted as they are saved or deleted, so other processes
// sharing the database keep their changes.
func (a *App) Close(ctx context.Context) error {
	if a.Config.MetricsTextfile != "" {
		if err := a.Metrics.WriteTextfile(a.Config.MetricsTextfile); err != nil {
			a.Log.Warn("write metrics textfile failed", zap.Error(err))
		}
	}
	return a.Store.Close()
}

// SaveTravel adds t to the master file and persists it right away, so a
// crash before Close does not lose it.
func (a *App) SaveTravel(ctx context.Context, t *travel.Travel) error {
	a.Master.AddTravel(t)
	return a.Store.SaveTravel(ctx, a.Master.Key, t)
}

// DeleteTravel removes a travel from the master file and the store.
func (a *App) DeleteTravel(ctx context.Context, id string) error {
	a.Master.RemoveTravel(id)
	return a.Store.DeleteTravel(ctx, id)
}
