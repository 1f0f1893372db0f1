package manifest

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"clipset/internal/services"
	"clipset/internal/source"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "manifest", "clipset.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleItems() []source.Item {
	return []source.Item{
		{Index: 0, Identifier: "abc", Offset: 3, Label: "cat"},
		{Index: 1, Identifier: "def", Offset: 7.5, Label: "dog"},
		{Index: 2, Identifier: "ghi", Offset: 0},
	}
}

func TestOpenReusesExistingSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipset.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.CreateRun(context.Background(), "run-1", "in.csv", sampleItems()); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if reopened.Path() != path {
		t.Fatalf("Path = %q", reopened.Path())
	}
	runs, err := reopened.ListRuns(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clipset.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestCreateRunInsertsPendingItems(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.CreateRun(ctx, "run-1", "in.csv", sampleItems())
	if err != nil {
		t.Fatalf("CreateRun: %v", err)
	}
	if run.Total != 3 || run.InputPath != "in.csv" || run.Finished() {
		t.Fatalf("unexpected run: %+v", run)
	}

	records, err := store.Items(ctx, "run-1")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i, record := range records {
		if record.Index != i || record.Status != StatusPending {
			t.Fatalf("record %d: %+v", i, record)
		}
	}
	if records[1].Offset != 7.5 || records[1].Label != "dog" {
		t.Fatalf("record 1 lost fields: %+v", records[1])
	}
	if records[2].Label != "" {
		t.Fatalf("expected empty label, got %q", records[2].Label)
	}
}

func TestRecordLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if _, err := store.CreateRun(ctx, "run-1", "", sampleItems()); err != nil {
		t.Fatalf("CreateRun: %v", err)
	}

	if err := store.RecordFetch(ctx, "run-1", 0, "/raw/abc.mp4", nil); err != nil {
		t.Fatalf("RecordFetch: %v", err)
	}
	fetchErr := services.Wrap(services.ErrResourceUnavailable, "fetch", "resolve", "video is private", nil)
	if err := store.RecordFetch(ctx, "run-1", 1, "", fetchErr); err != nil {
		t.Fatalf("RecordFetch failure: %v", err)
	}
	if err := store.RecordExtraction(ctx, "run-1", 0, "/flat/abc.png", "/flat/abc.wav", 1, nil); err != nil {
		t.Fatalf("RecordExtraction: %v", err)
	}
	if err := store.RecordPartition(ctx, "run-1", 0, "/data/images/cat/abc.png", "/data/sounds/cat/abc.wav"); err != nil {
		t.Fatalf("RecordPartition: %v", err)
	}

	records, err := store.Items(ctx, "run-1")
	if err != nil {
		t.Fatalf("Items: %v", err)
	}
	first := records[0]
	if first.Status != StatusPartitioned || first.VideoPath != "/raw/abc.mp4" {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.ImagePath != "/data/images/cat/abc.png" || first.AudioSeconds != 1 {
		t.Fatalf("unexpected first record paths: %+v", first)
	}
	second := records[1]
	if second.Status != StatusFetchFailed || !second.Status.IsFailure() {
		t.Fatalf("unexpected second status: %s", second.Status)
	}
	if second.ErrorKind != "resource_unavailable" || second.ErrorMessage == "" {
		t.Fatalf("unexpected failure fields: %+v", second)
	}

	counts, err := store.StatusCounts(ctx, "run-1")
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if counts[StatusPartitioned] != 1 || counts[StatusFetchFailed] != 1 || counts[StatusPending] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
}

func TestRecordUnknownItem(t *testing.T) {
	store := openTestStore(t)
	if err := store.RecordFetch(context.Background(), "missing", 0, "/raw/x.mp4", nil); err == nil {
		t.Fatal("expected error for unknown item")
	}
}

func TestFinishRunAndLookup(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"aaaa-1111", "aaaa-2222", "bbbb-3333"} {
		if _, err := store.CreateRun(ctx, id, "", nil); err != nil {
			t.Fatalf("CreateRun %s: %v", id, err)
		}
	}

	if err := store.FinishRun(ctx, "bbbb-3333", Counts{Fetched: 2, Extracted: 2, Partitioned: 2, Failed: 1}); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
	if err := store.FinishRun(ctx, "zzzz", Counts{}); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}

	run, err := store.GetRun(ctx, "bbbb")
	if err != nil {
		t.Fatalf("GetRun prefix: %v", err)
	}
	if run.ID != "bbbb-3333" || !run.Finished() || run.Partitioned != 2 || run.Failed != 1 {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.Elapsed() < 0 {
		t.Fatalf("negative elapsed: %v", run.Elapsed())
	}
	if _, err := store.GetRun(ctx, "aaaa"); !errors.Is(err, ErrAmbiguousRun) {
		t.Fatalf("expected ErrAmbiguousRun, got %v", err)
	}
	if _, err := store.GetRun(ctx, "cccc"); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}

	runs, err := store.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "bbbb-3333" {
		t.Fatalf("expected newest run first, got %s", runs[0].ID)
	}
}
