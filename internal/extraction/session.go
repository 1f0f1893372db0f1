package extraction

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"clipset/internal/logging"
	"clipset/internal/sampler"
	"clipset/internal/services"
	"clipset/internal/source"
)

const (
	// PolicyItem rolls back only the failing item.
	PolicyItem = "item"
	// PolicySession cleans the whole output directory on the first failure.
	PolicySession = "session"

	// LockFileName is created in the output directory while a batch runs.
	LockFileName = ".clipset.lock"

	defaultDuration = 5.0
)

// Extractor produces one artifact pair. *sampler.Sampler satisfies it.
type Extractor interface {
	Extract(ctx context.Context, videoPath string, offset, duration float64, outputBase string) (sampler.Pair, error)
}

// State is the lifecycle phase of a session.
type State int

const (
	StateIdle State = iota
	StateExtracting
	StateCleanedUp
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateExtracting:
		return "extracting"
	case StateCleanedUp:
		return "cleaned_up"
	default:
		return "unknown"
	}
}

// Item is one clip to sample.
type Item struct {
	Source    source.Item
	VideoPath string
	// Name is the artifact base name; defaults to the source index.
	Name string
}

func (i Item) name() string {
	if n := strings.TrimSpace(i.Name); n != "" {
		return filepath.Base(n)
	}
	return i.Source.Stem()
}

// Status is the outcome of one attempt.
type Status string

const (
	StatusExtracted Status = "extracted"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Attempt records what happened to one item.
type Attempt struct {
	Item   Item
	Status Status
	Pair   sampler.Pair
	Err    error
}

// Batch is the outcome of ExtractBatch, one attempt per item in input order.
type Batch struct {
	Attempts  []Attempt
	CleanedUp bool
}

// Pairs returns the successfully extracted pairs in input order.
func (b Batch) Pairs() []sampler.Pair {
	var pairs []sampler.Pair
	for _, a := range b.Attempts {
		if a.Status == StatusExtracted {
			pairs = append(pairs, a.Pair)
		}
	}
	return pairs
}

// Count returns how many attempts ended with status.
func (b Batch) Count(status Status) int {
	n := 0
	for _, a := range b.Attempts {
		if a.Status == status {
			n++
		}
	}
	return n
}

// Option configures a session.
type Option func(*Session)

// WithFailurePolicy selects PolicyItem or PolicySession.
func WithFailurePolicy(policy string) Option {
	return func(s *Session) {
		if p := strings.ToLower(strings.TrimSpace(policy)); p != "" {
			s.policy = p
		}
	}
}

// WithDuration sets the audio slice length in seconds.
func WithDuration(seconds float64) Option {
	return func(s *Session) {
		if seconds > 0 {
			s.duration = seconds
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Session owns an output directory for the duration of extraction batches.
type Session struct {
	videosDir string
	outputDir string
	extractor Extractor
	policy    string
	duration  float64
	logger    *slog.Logger
	lock      *flock.Flock

	mu    sync.Mutex
	state State
}

// NewSession validates videosDir and creates outputDir when missing.
func NewSession(videosDir, outputDir string, extractor Extractor, opts ...Option) (*Session, error) {
	if extractor == nil {
		return nil, services.Wrap(services.ErrConfiguration, "extract", "new session", "extractor required", nil)
	}
	videos, err := existingDir(videosDir)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidPath, "extract", "new session", "videos directory", err)
	}
	output, err := safeDir(outputDir)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidPath, "extract", "new session", "output directory", err)
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return nil, services.Wrap(services.ErrInvalidPath, "extract", "new session", "create output directory", err)
	}

	s := &Session{
		videosDir: videos,
		outputDir: output,
		extractor: extractor,
		policy:    PolicyItem,
		duration:  defaultDuration,
		logger:    logging.NewNop(),
		lock:      flock.New(filepath.Join(output, LockFileName)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.policy != PolicyItem && s.policy != PolicySession {
		return nil, services.Wrap(services.ErrValidation, "extract", "new session", fmt.Sprintf("unknown failure policy %q", s.policy), nil)
	}
	s.logger = logging.NewComponentLogger(s.logger, "extraction")
	return s, nil
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OutputDir returns the absolute output directory.
func (s *Session) OutputDir() string { return s.outputDir }

// VideosDir returns the absolute videos directory.
func (s *Session) VideosDir() string { return s.videosDir }

// ExtractBatch samples every item sequentially. Only path and lock errors
// are returned; extraction failures are recorded on the attempts.
func (s *Session) ExtractBatch(ctx context.Context, items []Item) (Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.acquire()
	if err != nil {
		return Batch{}, err
	}
	defer release()

	s.state = StateExtracting
	batch := Batch{Attempts: make([]Attempt, len(items))}
	for i, item := range items {
		batch.Attempts[i] = Attempt{Item: item, Status: StatusSkipped}
	}

	for i, item := range items {
		itemCtx := services.WithItemIndex(services.WithStage(ctx, "extract"), item.Source.Index)
		logger := logging.WithContext(itemCtx, s.logger)

		pair, err := s.extractOne(itemCtx, item)
		if err == nil {
			pair.Source = item.Source
			batch.Attempts[i].Status = StatusExtracted
			batch.Attempts[i].Pair = pair
			logger.Debug("extracted artifacts",
				logging.String("image", pair.ImagePath),
				logging.String("audio", pair.AudioPath),
				logging.Float64("audio_seconds", pair.AudioSeconds),
			)
			continue
		}

		batch.Attempts[i].Status = StatusFailed
		batch.Attempts[i].Err = err
		logging.ErrorWithContext(logger, "extraction failed", "extract_failed",
			logging.String("video", item.VideoPath),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String("policy", s.policy),
			logging.Error(err),
		)

		if s.policy == PolicySession {
			for j := range batch.Attempts[:i] {
				if batch.Attempts[j].Status == StatusExtracted {
					batch.Attempts[j].Status = StatusFailed
					batch.Attempts[j].Pair = sampler.Pair{}
					batch.Attempts[j].Err = services.Wrap(services.ErrExtractionFailed, "extract", "cleanup", "removed by session cleanup", nil)
				}
			}
			if _, cerr := s.cleanupLocked(); cerr != nil {
				s.state = StateIdle
				return batch, cerr
			}
			batch.CleanedUp = true
			s.state = StateCleanedUp
			s.logger.Warn("session cleaned up after extraction failure",
				logging.String(logging.FieldEventType, "session_cleanup"),
				logging.String(logging.FieldImpact, "all artifacts in the output directory were removed"),
				logging.String(logging.FieldErrorHint, "fix the failing clip or use failure_policy = \"item\""),
				logging.Int("skipped", len(items)-i-1),
			)
			return batch, nil
		}
	}

	s.state = StateIdle
	s.logger.Info("extraction batch complete",
		logging.Int("items", len(items)),
		logging.Int("extracted", batch.Count(StatusExtracted)),
		logging.Int("failed", batch.Count(StatusFailed)),
	)
	return batch, nil
}

// extractOne runs the extractor and, on failure, removes the artifacts this
// attempt created. Files that were already there are left alone.
func (s *Session) extractOne(ctx context.Context, item Item) (sampler.Pair, error) {
	base := filepath.Join(s.outputDir, item.name())
	ledger := newLedger(base+sampler.ImageExt, base+sampler.AudioExt)

	pair, err := s.extractor.Extract(ctx, item.VideoPath, item.Source.Offset, s.duration, base)
	if err != nil {
		ledger.rollback()
		if !errors.Is(err, services.ErrExtractionFailed) && !errors.Is(err, services.ErrNoAudioTrack) && !errors.Is(err, services.ErrInvalidPath) {
			err = services.Wrap(services.ErrExtractionFailed, "extract", "sample", item.VideoPath, err)
		}
		return sampler.Pair{}, err
	}
	return pair, nil
}

// ledger holds the target paths that did not exist before an attempt.
type ledger []string

func newLedger(targets ...string) ledger {
	var absent ledger
	for _, path := range targets {
		if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
			absent = append(absent, path)
		}
	}
	return absent
}

// rollback removes the written-but-unconfirmed paths.
func (l ledger) rollback() {
	for _, path := range l {
		_ = os.Remove(path)
	}
}

func (s *Session) acquire() (func(), error) {
	ok, err := s.lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidPath, "extract", "lock output directory", s.outputDir, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrSessionBusy, "extract", "lock output directory", "another clipset process is using "+s.outputDir, nil)
	}
	return func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}, nil
}
