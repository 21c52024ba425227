package jobs

import (
	"context"
	"fmt"
	"path/filepath"

	"gdsa/internal/storage"
)

// EnqueueRouteImport queues a route file for replay by the worker. Paths are
// stored absolute so the worker can run from another directory.
func EnqueueRouteImport(ctx context.Context, store *storage.Store, path string) (int64, error) {
	if store == nil {
		return 0, fmt.Errorf("job store not configured")
	}
	if path == "" {
		return 0, fmt.Errorf("empty route path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", path, err)
	}
	return store.EnqueueRoute(ctx, abs)
}
