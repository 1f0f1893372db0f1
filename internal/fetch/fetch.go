package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"clipset/internal/logging"
	"clipset/internal/services"
)

// DefaultQuality is the stream resolution requested from every backend.
const DefaultQuality = "360p"

// Stream is a resolved, downloadable rendition of a remote clip.
type Stream interface {
	// DefaultName is the file name used when the caller supplies none.
	DefaultName() string
	// Save writes the stream to path.
	Save(ctx context.Context, path string) error
}

// Resolver looks up the stream for an identifier at a quality. It returns an
// error wrapping services.ErrResourceUnavailable when no stream matches.
type Resolver interface {
	Resolve(ctx context.Context, identifier, quality string) (Stream, error)
}

// Fetcher downloads single clips.
type Fetcher struct {
	resolver Resolver
	quality  string
	logger   *slog.Logger
}

// NewFetcher builds a Fetcher. An empty quality selects DefaultQuality.
func NewFetcher(resolver Resolver, quality string, logger *slog.Logger) *Fetcher {
	quality = strings.TrimSpace(quality)
	if quality == "" {
		quality = DefaultQuality
	}
	return &Fetcher{
		resolver: resolver,
		quality:  quality,
		logger:   logging.NewComponentLogger(logger, "fetch"),
	}
}

// Quality reports the resolution requested from the resolver.
func (f *Fetcher) Quality() string {
	return f.quality
}

// Fetch downloads identifier into outputDir and returns the written path.
// An empty outputName uses the stream's default name.
func (f *Fetcher) Fetch(ctx context.Context, identifier, outputDir, outputName string) (string, error) {
	if f == nil || f.resolver == nil {
		return "", services.Wrap(services.ErrConfiguration, "fetch", "resolve", "fetcher has no resolver", nil)
	}
	if strings.TrimSpace(outputDir) == "" {
		return "", services.Wrap(services.ErrInvalidPath, "fetch", "prepare directory", "output directory is empty", nil)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrInvalidPath, "fetch", "prepare directory", outputDir, err)
	}

	stream, err := f.resolver.Resolve(ctx, identifier, f.quality)
	if err != nil {
		if errors.Is(err, services.ErrResourceUnavailable) {
			return "", err
		}
		return "", services.Wrap(services.ErrFetchFailed, "fetch", "resolve", identifier, err)
	}
	if stream == nil {
		return "", services.Wrap(services.ErrResourceUnavailable, "fetch", "resolve", fmt.Sprintf("no %s stream for %s", f.quality, identifier), nil)
	}

	name := strings.TrimSpace(outputName)
	if name == "" {
		name = stream.DefaultName()
	}
	name = filepath.Base(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", services.Wrap(services.ErrFetchFailed, "fetch", "name output", "stream has no usable file name", nil)
	}
	dest := filepath.Join(outputDir, name)

	if err := stream.Save(ctx, dest); err != nil {
		_ = os.Remove(dest)
		if errors.Is(err, services.ErrResourceUnavailable) {
			return "", err
		}
		return "", services.Wrap(services.ErrFetchFailed, "fetch", "download", identifier, err)
	}
	return dest, nil
}
