package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates path with size filler bytes (at least one), creating
// parent directories. Sizes only matter to code that skips empty files.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	WriteText(t, path, string(bytes.Repeat([]byte{'x'}, int(max(size, 1)))))
}

// WriteText writes content to path, creating parent directories.
func WriteText(t testing.TB, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
