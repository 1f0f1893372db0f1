package testsupport

import (
	"context"
	"testing"

	"clipset/internal/config"
	"clipset/internal/manifest"
	"clipset/internal/source"
)

// MustOpenManifest opens the manifest store of cfg and registers cleanup.
func MustOpenManifest(t testing.TB, cfg *config.Config) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(cfg.ManifestPath())
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// NewRun records a run with pending items for tests.
func NewRun(t testing.TB, store *manifest.Store, id string, items []source.Item) *manifest.Run {
	t.Helper()

	run, err := store.CreateRun(context.Background(), id, "", items)
	if err != nil {
		t.Fatalf("store.CreateRun: %v", err)
	}
	return run
}
