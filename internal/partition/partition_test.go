package partition

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"clipset/internal/sampler"
	"clipset/internal/services"
	"clipset/internal/source"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s to exist: %v", path, err)
	}
}

func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected %s to be gone, stat err=%v", path, err)
	}
}

func TestPartitionPerBaseName(t *testing.T) {
	base := t.TempDir()
	flat := filepath.Join(base, "data")
	root := filepath.Join(base, "dataset")
	writeFiles(t, flat, "x.png", "x.wav", "y.png", "y.wav")

	tree, err := Partition([]string{"cat", "dog"}, flat, root)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	for _, rel := range []string{"images/cat/x.png", "sounds/cat/x.wav", "images/dog/y.png", "sounds/dog/y.wav"} {
		assertExists(t, filepath.Join(root, rel))
	}
	for _, name := range []string{"x.png", "x.wav", "y.png", "y.wav"} {
		assertMissing(t, filepath.Join(flat, name))
	}
	if tree.Count() != 4 {
		t.Fatalf("expected 4 moves, got %d", tree.Count())
	}
	if got := tree.Labels(ModalitySounds); len(got) != 2 || got[0] != "cat" || got[1] != "dog" {
		t.Fatalf("unexpected labels %v", got)
	}
}

func TestPartitionPerFile(t *testing.T) {
	base := t.TempDir()
	flat := filepath.Join(base, "data")
	root := filepath.Join(base, "dataset")
	writeFiles(t, flat, "0.png", "0.wav", "1.png", "notes.txt", ".clipset.lock")

	tree, err := Partition([]string{"cat", "cat", "dog"}, flat, root)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	assertExists(t, filepath.Join(root, "images", "dog", "1.png"))
	assertExists(t, filepath.Join(flat, "notes.txt"))
	assertExists(t, filepath.Join(flat, ".clipset.lock"))
	if files := tree.Files(ModalityImages, "cat"); len(files) != 1 || files[0] != "0.png" {
		t.Fatalf("unexpected cat images %v", files)
	}
}

func TestPartitionRejectsLabelMismatchBeforeMoving(t *testing.T) {
	base := t.TempDir()
	flat := filepath.Join(base, "data")
	writeFiles(t, flat, "x.png", "x.wav", "y.png", "y.wav")

	_, err := Partition([]string{"cat", "dog", "bird"}, flat, filepath.Join(base, "dataset"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	assertExists(t, filepath.Join(flat, "x.png"))
	assertMissing(t, filepath.Join(base, "dataset"))
}

func TestPartitionMissingFlatDir(t *testing.T) {
	_, err := Partition(nil, filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path, got %v", err)
	}
}

func TestPartitionArtifactsFromPairs(t *testing.T) {
	base := t.TempDir()
	flat := filepath.Join(base, "data")
	root := filepath.Join(base, "dataset")
	writeFiles(t, flat, "0.png", "0.wav", "4.png", "4.wav")

	pairs := []sampler.Pair{
		{ImagePath: filepath.Join(flat, "0.png"), AudioPath: filepath.Join(flat, "0.wav"), Source: source.Item{Index: 0, Label: "people/crowd"}},
		{ImagePath: filepath.Join(flat, "4.png"), AudioPath: filepath.Join(flat, "4.wav"), Source: source.Item{Index: 4, Label: ""}},
	}
	artifacts := ArtifactsFromPairs(pairs)
	if len(artifacts) != 4 {
		t.Fatalf("expected 4 artifacts, got %d", len(artifacts))
	}

	tree, err := PartitionArtifacts(artifacts, root)
	if err != nil {
		t.Fatalf("PartitionArtifacts: %v", err)
	}
	assertExists(t, filepath.Join(root, "images", "people-crowd", "0.png"))
	assertExists(t, filepath.Join(root, "sounds", "unlabeled", "4.wav"))
	if tree.Count() != 4 {
		t.Fatalf("expected 4 moves, got %d", tree.Count())
	}
}

func TestPartitionArtifactsValidatesFirst(t *testing.T) {
	base := t.TempDir()
	writeFiles(t, base, "0.png", "0.mp4")
	artifacts := []Artifact{
		{Path: filepath.Join(base, "0.png"), Label: "cat"},
		{Path: filepath.Join(base, "0.mp4"), Label: "cat"},
	}
	_, err := PartitionArtifacts(artifacts, filepath.Join(base, "dataset"))
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	assertExists(t, filepath.Join(base, "0.png"))

	if _, err := PartitionArtifacts(nil, " "); !errors.Is(err, services.ErrInvalidPath) {
		t.Fatalf("expected invalid path for empty root, got %v", err)
	}
}
