package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"clipset/internal/extraction"
	"clipset/internal/fetch"
	"clipset/internal/logging"
	"clipset/internal/manifest"
	"clipset/internal/partition"
	"clipset/internal/sampler"
	"clipset/internal/services"
	"clipset/internal/source"
	"clipset/internal/textutil"
)

var (
	defaultRunID = uuid.NewString
	newRunID     = defaultRunID
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore records run progress in the manifest.
func WithStore(store *manifest.Store) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithRemoveOriginals deletes the fetched videos once the dataset is built.
func WithRemoveOriginals(enabled bool) Option {
	return func(p *Pipeline) {
		p.removeOriginals = enabled
	}
}

// Pipeline wires the batch fetcher, the extraction session and the
// partitioner.
type Pipeline struct {
	fetcher         *fetch.BatchFetcher
	session         *extraction.Session
	datasetDir      string
	store           *manifest.Store
	removeOriginals bool
	logger          *slog.Logger
}

// New builds a pipeline that fetches into the session's videos directory
// and partitions into datasetDir.
func New(fetcher *fetch.BatchFetcher, session *extraction.Session, datasetDir string, opts ...Option) (*Pipeline, error) {
	if fetcher == nil || session == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "fetcher and session required", nil)
	}
	datasetDir = strings.TrimSpace(datasetDir)
	if datasetDir == "" || extraction.IsRoot(datasetDir) {
		return nil, services.Wrap(services.ErrInvalidPath, "pipeline", "new", "dataset directory "+datasetDir, nil)
	}
	p := &Pipeline{
		fetcher:    fetcher,
		session:    session,
		datasetDir: datasetDir,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p, nil
}

// Session exposes the extraction session for cleanup commands.
func (p *Pipeline) Session() *extraction.Session {
	return p.session
}

// Run builds the dataset from items. Per-row failures are reported on the
// outcomes; the returned error is reserved for failures that stop the run.
func (p *Pipeline) Run(ctx context.Context, inputPath string, items []source.Item) (Report, error) {
	runID := newRunID()
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, p.logger)
	started := time.Now()

	report := Report{RunID: runID, Outcomes: make([]Outcome, len(items))}
	for i, item := range items {
		report.Outcomes[i] = Outcome{Item: item}
	}

	if p.store != nil {
		if _, err := p.store.CreateRun(ctx, runID, inputPath, items); err != nil {
			return report, err
		}
	}
	logger.Info("build started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("items", len(items)),
		logging.String("input", inputPath),
	)

	extractItems := p.fetch(ctx, items, &report)

	batch, err := p.session.ExtractBatch(services.WithStage(ctx, StageExtract), extractItems)
	if err != nil {
		return report, p.finish(ctx, &report, err)
	}
	report.CleanedUp = batch.CleanedUp
	p.recordExtraction(ctx, batch, &report)

	tree, err := partition.PartitionArtifacts(partition.ArtifactsFromPairs(batch.Pairs()), p.datasetDir)
	report.Tree = tree
	if err != nil {
		return report, p.finish(ctx, &report, err)
	}
	p.recordPartition(ctx, batch.Pairs(), &report)

	if p.removeOriginals {
		removed, err := p.session.RemoveOriginals()
		report.Removed = len(removed.Removed)
		if err != nil {
			logging.WarnWithContext(logger, "remove originals failed", "remove_originals_failed",
				logging.String(logging.FieldImpact, "fetched videos remain on disk"),
				logging.Error(err),
			)
		}
	}

	if err := p.finish(ctx, &report, nil); err != nil {
		return report, err
	}
	counts := report.Counts()
	logger.Info("build complete",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("partitioned", counts.Partitioned),
		logging.Int("failed", counts.Failed),
		logging.Bool("cleaned_up", report.CleanedUp),
		logging.Duration("elapsed", time.Since(started)),
	)
	return report, nil
}

func (p *Pipeline) fetch(ctx context.Context, items []source.Item, report *Report) []extraction.Item {
	results := p.fetcher.FetchMany(services.WithStage(ctx, StageFetch), items, p.session.VideosDir())
	for i, result := range results {
		outcome := &report.Outcomes[i]
		outcome.Stage = StageFetch
		if result.OK() {
			outcome.VideoPath = result.LocalPath
		} else {
			outcome.Err = result.Err
		}
		p.record(ctx, func(store *manifest.Store) error {
			return store.RecordFetch(ctx, report.RunID, items[i].Index, result.LocalPath, result.Err)
		})
	}

	kept, paths := fetch.Succeeded(items, results)
	extractItems := make([]extraction.Item, len(kept))
	for i := range kept {
		extractItems[i] = extraction.Item{Source: kept[i], VideoPath: paths[i]}
	}
	return extractItems
}

func (p *Pipeline) recordExtraction(ctx context.Context, batch extraction.Batch, report *Report) {
	byIndex := p.outcomeIndex(report)
	for _, attempt := range batch.Attempts {
		outcome, ok := byIndex[attempt.Item.Source.Index]
		if !ok {
			continue
		}
		outcome.Stage = StageExtract
		err := attempt.Err
		if attempt.Status == extraction.StatusSkipped {
			err = services.Wrap(services.ErrExtractionFailed, StageExtract, "skip", "skipped after session cleanup", nil)
		}
		if err != nil {
			outcome.Err = err
		} else {
			outcome.ImagePath = attempt.Pair.ImagePath
			outcome.AudioPath = attempt.Pair.AudioPath
		}
		p.record(ctx, func(store *manifest.Store) error {
			return store.RecordExtraction(ctx, report.RunID, attempt.Item.Source.Index,
				attempt.Pair.ImagePath, attempt.Pair.AudioPath, attempt.Pair.AudioSeconds, err)
		})
	}
}

func (p *Pipeline) recordPartition(ctx context.Context, pairs []sampler.Pair, report *Report) {
	byIndex := p.outcomeIndex(report)
	for _, pair := range pairs {
		outcome, ok := byIndex[pair.Source.Index]
		if !ok {
			continue
		}
		outcome.Stage = StagePartition
		outcome.ImagePath = p.datasetPath(partition.ModalityImages, pair.Source.Label, pair.ImagePath)
		outcome.AudioPath = p.datasetPath(partition.ModalitySounds, pair.Source.Label, pair.AudioPath)
		p.record(ctx, func(store *manifest.Store) error {
			return store.RecordPartition(ctx, report.RunID, pair.Source.Index, outcome.ImagePath, outcome.AudioPath)
		})
	}
}

func (p *Pipeline) datasetPath(modality, label, flatPath string) string {
	return filepath.Join(p.datasetDir, modality, textutil.LabelDirName(label), filepath.Base(flatPath))
}

func (p *Pipeline) outcomeIndex(report *Report) map[int]*Outcome {
	byIndex := make(map[int]*Outcome, len(report.Outcomes))
	for i := range report.Outcomes {
		byIndex[report.Outcomes[i].Item.Index] = &report.Outcomes[i]
	}
	return byIndex
}

// record applies a manifest write. Manifest failures are logged and never
// fail the build.
func (p *Pipeline) record(ctx context.Context, write func(*manifest.Store) error) {
	if p.store == nil {
		return
	}
	if err := write(p.store); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "manifest write failed", "manifest_write_failed",
			logging.String(logging.FieldImpact, "run history is incomplete"),
			logging.Error(err),
		)
	}
}

func (p *Pipeline) finish(ctx context.Context, report *Report, runErr error) error {
	if runErr != nil {
		logging.ErrorWithContext(logging.WithContext(ctx, p.logger), "build stopped", "run_failed",
			logging.String(logging.FieldErrorKind, services.Kind(runErr)),
			logging.Error(runErr),
		)
	}
	if p.store == nil {
		return runErr
	}
	if err := p.store.FinishRun(ctx, report.RunID, report.Counts()); err != nil {
		return errors.Join(runErr, err)
	}
	return runErr
}
