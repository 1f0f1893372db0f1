// Package fileutil moves dataset artifacts between directories.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
)

// renameFunc is swapped in tests to simulate cross-device renames.
var renameFunc = os.Rename

// MoveFile renames src to dst. Across filesystems it copies, verifies the
// copy against the source, and only then removes src.
func MoveFile(src, dst string) error {
	err := renameFunc(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := CopyFileVerified(src, dst); err != nil {
		return fmt.Errorf("cross-device move %s: %w", src, err)
	}
	return os.Remove(src)
}

// CopyFileVerified copies src to dst, syncs it, and re-reads dst to compare
// its SHA-256 with the source. dst is removed on any failure.
func CopyFileVerified(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	want := sha256.New()
	if _, err = io.Copy(io.MultiWriter(out, want), in); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}

	got, size, err := digest(dst)
	if err != nil {
		return err
	}
	if size != info.Size() {
		return fmt.Errorf("copy size mismatch: source %d bytes, destination %d bytes", info.Size(), size)
	}
	if !bytes.Equal(got, want.Sum(nil)) {
		return errors.New("copy hash mismatch")
	}
	return nil
}

func digest(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return nil, 0, err
	}
	return h.Sum(nil), n, nil
}
