package extraction

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clipset/internal/logging"
	"clipset/internal/sampler"
	"clipset/internal/services"
)

// CleanupResult lists the files a cleanup removed.
type CleanupResult struct {
	Dir     string
	Removed []string
}

// Cleanup removes every .png and .wav file from the output directory.
// Other files are left untouched. Calling it on a clean directory is a no-op.
func (s *Session) Cleanup() (CleanupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.acquire()
	if err != nil {
		return CleanupResult{Dir: s.outputDir}, err
	}
	defer release()

	result, err := s.cleanupLocked()
	if err != nil {
		return result, err
	}
	s.state = StateCleanedUp
	return result, nil
}

func (s *Session) cleanupLocked() (CleanupResult, error) {
	result, err := CleanDir(s.outputDir, isArtifact)
	if err != nil {
		return result, err
	}
	s.logger.Info("cleaned output directory",
		logging.String("dir", s.outputDir),
		logging.Int("removed", len(result.Removed)),
	)
	return result, nil
}

// RemoveOriginals deletes every regular file in the videos directory. It is
// never invoked by ExtractBatch.
func (s *Session) RemoveOriginals() (CleanupResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := CleanDir(s.videosDir, func(string) bool { return true })
	if err != nil {
		return result, err
	}
	s.logger.Info("removed original videos",
		logging.String("dir", s.videosDir),
		logging.Int("removed", len(result.Removed)),
	)
	return result, nil
}

// CleanDir removes the regular files in dir whose names satisfy match.
// A missing directory or the filesystem root is rejected before anything is
// touched.
func CleanDir(dir string, match func(name string) bool) (CleanupResult, error) {
	abs, err := existingDir(dir)
	if err != nil {
		return CleanupResult{Dir: dir}, services.Wrap(services.ErrInvalidPath, "cleanup", "validate directory", dir, err)
	}
	result := CleanupResult{Dir: abs}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return result, services.Wrap(services.ErrInvalidPath, "cleanup", "list directory", abs, err)
	}
	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !match(entry.Name()) {
			continue
		}
		path := filepath.Join(abs, entry.Name())
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		result.Removed = append(result.Removed, path)
	}
	if len(errs) > 0 {
		return result, services.Wrap(services.ErrInvalidPath, "cleanup", "remove files", abs, errors.Join(errs...))
	}
	return result, nil
}

func isArtifact(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case sampler.ImageExt, sampler.AudioExt:
		return true
	default:
		return false
	}
}

// safeDir resolves dir to an absolute path and rejects the filesystem root.
func safeDir(dir string) (string, error) {
	if strings.TrimSpace(dir) == "" {
		return "", errors.New("directory not set")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if IsRoot(abs) {
		return "", fmt.Errorf("%s is the filesystem root", abs)
	}
	return abs, nil
}

func existingDir(dir string) (string, error) {
	abs, err := safeDir(dir)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}
	return abs, nil
}

// IsRoot reports whether path is a filesystem root.
func IsRoot(path string) bool {
	cleaned := filepath.Clean(path)
	return filepath.Dir(cleaned) == cleaned
}
