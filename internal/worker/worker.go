package worker

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"gdsa/internal/metrics"
	"gdsa/internal/storage"
	"gdsa/internal/travel"
)

const (
	RunProcessed = "processed"
	RunFailed    = "failed"
)

type Processor interface {
	Process(ctx context.Context, path string) (*travel.Travel, error)
}

// Worker drains the route import queue one route at a time.
type Worker struct {
	Store     *storage.Store
	Processor Processor
	Metrics   *metrics.Metrics
	Log       *zap.Logger
}

// ProcessNext handles the oldest queued route. It reports false when the queue
// is empty. A route that fails to replay is marked failed and not retried;
// the failure is returned alongside processed=true.
func (w *Worker) ProcessNext(ctx context.Context) (bool, error) {
	route, err := w.Store.DequeueRoute(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}

	t, procErr := w.Processor.Process(ctx, route.Path)
	if procErr != nil {
		if ctx.Err() != nil {
			// Leave the route queued for the next run.
			return false, ctx.Err()
		}
		w.count(RunFailed)
		if err := w.Store.MarkRouteFailed(ctx, route.ID, procErr.Error()); err != nil {
			return true, err
		}
		return true, fmt.Errorf("route %d (%s): %w", route.ID, route.Path, procErr)
	}

	if err := w.Store.MarkRouteProcessed(ctx, route.ID, t.ID); err != nil {
		return true, err
	}
	w.count(RunProcessed)
	w.log().Debug("processed queued route",
		zap.Int64("queue_id", route.ID),
		zap.String("path", route.Path),
		zap.String("travel_id", t.ID))
	return true, nil
}

// Drain processes queued routes until the queue is empty, logging failures.
// It returns the number of routes handled.
func (w *Worker) Drain(ctx context.Context) (int, error) {
	handled := 0
	for {
		processed, err := w.ProcessNext(ctx)
		if err != nil {
			if !processed {
				return handled, err
			}
			w.log().Warn("route import failed", zap.Error(err))
		}
		if !processed {
			return handled, nil
		}
		handled++
	}
}

func (w *Worker) count(result string) {
	if w.Metrics != nil {
		w.Metrics.QueueRuns.WithLabelValues(result).Inc()
	}
}

func (w *Worker) log() *zap.Logger {
	if w.Log != nil {
		return w.Log
	}
	return zap.NewNop()
}
