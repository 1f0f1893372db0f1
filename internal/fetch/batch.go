package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"clipset/internal/logging"
	"clipset/internal/services"
	"clipset/internal/source"
)

// DefaultWorkers bounds concurrent downloads when no pool size is configured.
const DefaultWorkers = 8

// VideoExt is the container extension of fetched clips.
const VideoExt = ".mp4"

// Result is the outcome of fetching one item. Exactly one of LocalPath and
// Err is set.
type Result struct {
	Index      int
	Identifier string
	LocalPath  string
	Err        error
}

// OK reports whether the item was fetched.
func (r Result) OK() bool {
	return r.Err == nil && r.LocalPath != ""
}

// BatchFetcher fetches many items concurrently.
type BatchFetcher struct {
	fetcher     *Fetcher
	workers     int
	urlTemplate string
	logger      *slog.Logger
}

// NewBatchFetcher builds a pool of at most workers concurrent downloads.
// Identifiers are rendered through urlTemplate before resolution.
func NewBatchFetcher(fetcher *Fetcher, workers int, urlTemplate string, logger *slog.Logger) *BatchFetcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &BatchFetcher{
		fetcher:     fetcher,
		workers:     workers,
		urlTemplate: urlTemplate,
		logger:      logging.NewComponentLogger(logger, "fetch"),
	}
}

// FetchMany downloads every item into outputDir. The returned slice has one
// entry per item in input order; successful files are named {Index}.mp4.
func (b *BatchFetcher) FetchMany(ctx context.Context, items []source.Item, outputDir string) []Result {
	results := make([]Result, len(items))
	if len(items) == 0 {
		return results
	}

	workers := min(len(items), b.workers)
	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = b.fetchOne(ctx, items[i], outputDir)
			}
		}()
	}
	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	var ok int
	for _, r := range results {
		if r.OK() {
			ok++
		}
	}
	b.logger.Info("fetch batch complete",
		logging.Int("items", len(items)),
		logging.Int("fetched", ok),
		logging.Int("failed", len(items)-ok),
		logging.Int("workers", workers),
	)
	return results
}

func (b *BatchFetcher) fetchOne(ctx context.Context, item source.Item, outputDir string) (result Result) {
	result = Result{Index: item.Index, Identifier: item.Identifier}
	itemCtx := services.WithItemIndex(services.WithStage(ctx, "fetch"), item.Index)
	logger := logging.WithContext(itemCtx, b.logger)
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			result.LocalPath = ""
			result.Err = services.Wrap(services.ErrFetchFailed, "fetch", "download", item.Identifier, fmt.Errorf("panic: %v", r))
		}
		if result.Err != nil {
			logger.Warn("fetch failed",
				logging.String(logging.FieldEventType, "fetch_failed"),
				logging.String("identifier", item.Identifier),
				logging.String(logging.FieldErrorKind, services.Kind(result.Err)),
				logging.Error(result.Err),
			)
			return
		}
		logger.Info("fetched clip",
			logging.String(logging.FieldEventType, "fetched"),
			logging.String("identifier", item.Identifier),
			logging.String("path", result.LocalPath),
			logging.Duration("elapsed", time.Since(started)),
		)
	}()

	path, err := b.fetcher.Fetch(itemCtx, item.URL(b.urlTemplate), outputDir, item.Stem()+VideoExt)
	if err != nil {
		result.Err = err
		return result
	}
	result.LocalPath = path
	return result
}

// Succeeded returns the items whose fetch produced a file, paired with the
// local path, preserving input order.
func Succeeded(items []source.Item, results []Result) ([]source.Item, []string) {
	var kept []source.Item
	var paths []string
	for i, r := range results {
		if i >= len(items) || !r.OK() {
			continue
		}
		kept = append(kept, items[i])
		paths = append(paths, r.LocalPath)
	}
	return kept, paths
}
