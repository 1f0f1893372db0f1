package extraction

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/gofrs/flock"

	"clipset/internal/sampler"
	"clipset/internal/services"
	"clipset/internal/source"
)

// fakeExtractor writes both artifacts, or fails for the configured videos
// after writing a partial image. Videos in failEarly fail before writing.
type fakeExtractor struct {
	fail      map[string]error
	failEarly map[string]error
	calls     []string
}

func (f *fakeExtractor) Extract(_ context.Context, videoPath string, _, duration float64, outputBase string) (sampler.Pair, error) {
	f.calls = append(f.calls, videoPath)
	if err, ok := f.failEarly[videoPath]; ok {
		return sampler.Pair{}, err
	}
	if err, ok := f.fail[videoPath]; ok {
		_ = os.WriteFile(outputBase+".png", []byte("partial"), 0o644)
		return sampler.Pair{}, err
	}
	pair := sampler.Pair{ImagePath: outputBase + ".png", AudioPath: outputBase + ".wav", AudioSeconds: duration}
	for _, p := range pair.Paths() {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			return sampler.Pair{}, err
		}
	}
	return pair, nil
}

func newTestSession(t *testing.T, extractor Extractor, opts ...Option) (*Session, string, string) {
	t.Helper()
	base := t.TempDir()
	videos := filepath.Join(base, "videos")
	output := filepath.Join(base, "data")
	if err := os.MkdirAll(videos, 0o755); err != nil {
		t.Fatal(err)
	}
	s, err := NewSession(videos, output, extractor, opts...)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, videos, output
}

func items(paths ...string) []Item {
	out := make([]Item, len(paths))
	for i, p := range paths {
		out[i] = Item{Source: source.Item{Index: i, Identifier: p, Offset: 1, Label: "l"}, VideoPath: p}
	}
	return out
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if e.Name() == LockFileName {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestNewSessionValidatesPaths(t *testing.T) {
	ext := &fakeExtractor{}
	if _, err := NewSession(string(filepath.Separator), t.TempDir(), ext); !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path for root videos dir, got %v", err)
	}
	if _, err := NewSession(filepath.Join(t.TempDir(), "missing"), t.TempDir(), ext); !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path for missing videos dir, got %v", err)
	}
	if _, err := NewSession(t.TempDir(), string(filepath.Separator), ext); !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path for root output dir, got %v", err)
	}
	if _, err := NewSession(t.TempDir(), t.TempDir(), ext, WithFailurePolicy("retry")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for unknown policy, got %v", err)
	}

	output := filepath.Join(t.TempDir(), "nested", "data")
	s, err := NewSession(t.TempDir(), output, ext)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if info, err := os.Stat(output); err != nil || !info.IsDir() {
		t.Fatalf("expected output dir created: %v", err)
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle, got %s", s.State())
	}
}

func TestExtractBatchItemPolicyRollsBackOnlyFailingItem(t *testing.T) {
	ext := &fakeExtractor{fail: map[string]error{
		"b.mp4": services.Wrap(services.ErrNoAudioTrack, "extract", "open", "b.mp4", nil),
	}}
	s, _, output := newTestSession(t, ext, WithDuration(5))

	batch, err := s.ExtractBatch(context.Background(), items("a.mp4", "b.mp4", "c.mp4"))
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}
	if len(batch.Attempts) != 3 || batch.CleanedUp {
		t.Fatalf("unexpected batch %#v", batch)
	}
	if batch.Attempts[1].Status != StatusFailed || !errors.Is(batch.Attempts[1].Err, services.ErrNoAudioTrack) {
		t.Fatalf("unexpected failing attempt %#v", batch.Attempts[1])
	}
	if batch.Count(StatusExtracted) != 2 {
		t.Fatalf("expected 2 extracted, got %d", batch.Count(StatusExtracted))
	}
	pairs := batch.Pairs()
	if pairs[1].Source.Index != 2 || pairs[1].AudioSeconds != 5 {
		t.Fatalf("pair lost its source item: %#v", pairs[1])
	}
	want := []string{"0.png", "0.wav", "2.png", "2.wav"}
	if got := listDir(t, output); !equal(got, want) {
		t.Fatalf("unexpected output %v, want %v", got, want)
	}
	if s.State() != StateIdle {
		t.Fatalf("expected idle after batch, got %s", s.State())
	}
}

func TestExtractBatchItemPolicyKeepsExistingFiles(t *testing.T) {
	ext := &fakeExtractor{
		failEarly: map[string]error{"a.mp4": errors.New("ffprobe: moov atom not found")},
		fail:      map[string]error{"b.mp4": errors.New("audio encoder failed")},
	}
	s, _, output := newTestSession(t, ext)
	if err := os.MkdirAll(output, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"0.png", "0.wav", "1.wav"} {
		if err := os.WriteFile(filepath.Join(output, name), []byte("earlier"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	batch, err := s.ExtractBatch(context.Background(), items("a.mp4", "b.mp4"))
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}
	if batch.Count(StatusFailed) != 2 {
		t.Fatalf("expected both attempts to fail, got %#v", batch.Attempts)
	}
	// 1.png was written by the failing attempt; everything else predates it.
	want := []string{"0.png", "0.wav", "1.wav"}
	if got := listDir(t, output); !equal(got, want) {
		t.Fatalf("unexpected output %v, want %v", got, want)
	}
	for _, name := range want {
		data, err := os.ReadFile(filepath.Join(output, name))
		if err != nil || string(data) != "earlier" {
			t.Fatalf("%s changed: %q %v", name, data, err)
		}
	}
}

func TestExtractBatchSessionPolicyWipesOutput(t *testing.T) {
	ext := &fakeExtractor{fail: map[string]error{"b.mp4": errors.New("decoder crashed")}}
	s, _, output := newTestSession(t, ext, WithFailurePolicy(PolicySession))
	if err := os.WriteFile(filepath.Join(output, "notes.txt"), []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	batch, err := s.ExtractBatch(context.Background(), items("a.mp4", "b.mp4", "c.mp4"))
	if err != nil {
		t.Fatalf("ExtractBatch: %v", err)
	}
	if !batch.CleanedUp || s.State() != StateCleanedUp {
		t.Fatalf("expected cleaned up session, batch=%v state=%s", batch.CleanedUp, s.State())
	}
	if !errors.Is(batch.Attempts[1].Err, services.ErrExtractionFailed) {
		t.Fatalf("expected wrapped extraction failure, got %v", batch.Attempts[1].Err)
	}
	if batch.Attempts[0].Status != StatusFailed || batch.Attempts[2].Status != StatusSkipped {
		t.Fatalf("unexpected statuses %s %s", batch.Attempts[0].Status, batch.Attempts[2].Status)
	}
	if len(ext.calls) != 2 {
		t.Fatalf("expected extraction to stop after failure, calls=%v", ext.calls)
	}
	if got := listDir(t, output); !equal(got, []string{"notes.txt"}) {
		t.Fatalf("unexpected output %v", got)
	}

	batch, err = s.ExtractBatch(context.Background(), items("c.mp4"))
	if err != nil || batch.Count(StatusExtracted) != 1 {
		t.Fatalf("expected session to be re-entrant, err=%v batch=%#v", err, batch)
	}
}

func TestExtractBatchBusyWhenLocked(t *testing.T) {
	s, _, output := newTestSession(t, &fakeExtractor{})
	other := flock.New(filepath.Join(output, LockFileName))
	ok, err := other.TryLock()
	if err != nil || !ok {
		t.Fatalf("pre-lock failed: ok=%v err=%v", ok, err)
	}
	defer other.Unlock()

	if _, err := s.ExtractBatch(context.Background(), items("a.mp4")); !errors.Is(err, services.ErrSessionBusy) {
		t.Fatalf("expected session busy, got %v", err)
	}
}

func TestCleanupRemovesOnlyArtifacts(t *testing.T) {
	s, _, output := newTestSession(t, &fakeExtractor{})
	for _, name := range []string{"a.png", "b.wav", "c.txt"} {
		if err := os.WriteFile(filepath.Join(output, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	result, err := s.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %v", result.Removed)
	}
	if got := listDir(t, output); !equal(got, []string{"c.txt"}) {
		t.Fatalf("unexpected remaining files %v", got)
	}
	if s.State() != StateCleanedUp {
		t.Fatalf("expected cleaned up state, got %s", s.State())
	}

	again, err := s.Cleanup()
	if err != nil || len(again.Removed) != 0 {
		t.Fatalf("expected idempotent cleanup, removed=%v err=%v", again.Removed, err)
	}
}

func TestCleanupMissingOutputDir(t *testing.T) {
	s, _, output := newTestSession(t, &fakeExtractor{})
	if err := os.RemoveAll(output); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Cleanup(); !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path, got %v", err)
	}
}

func TestCleanDirRejectsRoot(t *testing.T) {
	called := false
	_, err := CleanDir(string(filepath.Separator), func(string) bool {
		called = true
		return false
	})
	if !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path for root, got %v", err)
	}
	if called {
		t.Fatal("root directory must not be listed")
	}
}

func TestRemoveOriginals(t *testing.T) {
	s, videos, _ := newTestSession(t, &fakeExtractor{})
	for _, name := range []string{"0.mp4", "1.mp4"} {
		if err := os.WriteFile(filepath.Join(videos, name), []byte("v"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(videos, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	result, err := s.RemoveOriginals()
	if err != nil {
		t.Fatalf("RemoveOriginals: %v", err)
	}
	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %v", result.Removed)
	}
	if got := listDir(t, videos); !equal(got, []string{"keep"}) {
		t.Fatalf("unexpected remaining entries %v", got)
	}
	if again, err := s.RemoveOriginals(); err != nil || len(again.Removed) != 0 {
		t.Fatalf("expected idempotent removal, removed=%v err=%v", again.Removed, err)
	}
}

func TestIsRoot(t *testing.T) {
	if !IsRoot("/") || !IsRoot("/../") {
		t.Fatal("expected / to be root")
	}
	if IsRoot("/tmp") {
		t.Fatal("/tmp is not root")
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
