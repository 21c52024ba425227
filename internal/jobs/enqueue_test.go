package jobs

import (
	"context"
	"path/filepath"
	"testing"

	"gdsa/internal/storage"
)

func TestEnqueueRouteImport(t *testing.T) {
	ctx := context.Background()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	if err := store.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	id, err := EnqueueRouteImport(ctx, store, "routes/commute.tsv")
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	route, err := store.DequeueRoute(ctx)
	if err != nil {
		t.Fatalf("dequeue: %v", err)
	}
	if route.ID != id {
		t.Fatalf("expected queue id %d, got %d", id, route.ID)
	}
	if !filepath.IsAbs(route.Path) || filepath.Base(route.Path) != "commute.tsv" {
		t.Fatalf("expected absolute path, got %q", route.Path)
	}

	if _, err := EnqueueRouteImport(ctx, store, ""); err == nil {
		t.Fatalf("expected error for empty path")
	}
	if _, err := EnqueueRouteImport(ctx, nil, "x.tsv"); err == nil {
		t.Fatalf("expected error without store")
	}
}
