package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed run history.
type Store struct {
	db   *sql.DB
	path string
}

// connPragmas apply to every pooled connection, not just the first.
var connPragmas = []string{
	"journal_mode(WAL)",
	"foreign_keys(1)",
	"busy_timeout(5000)",
}

// Open creates or opens the manifest at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("manifest path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure manifest directory: %w", err)
	}

	query := url.Values{"_pragma": connPragmas}
	db, err := sql.Open("sqlite", "file:"+path+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path is the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// busy_timeout covers most contention; the retry loop covers the WAL cases
// SQLite reports as SQLITE_BUSY without waiting.
const (
	sqliteBusy     = 5
	busyAttempts   = 5
	busyFirstDelay = 10 * time.Millisecond
	busyMaxDelay   = 200 * time.Millisecond
)

func isBusy(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		// Extended result codes keep the primary code in the low byte.
		return coded.Code()&0xff == sqliteBusy
	}
	return err != nil && strings.Contains(err.Error(), "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyFirstDelay
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || attempt == busyAttempts || !isBusy(err) {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, busyMaxDelay)
	}
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var err error
		res, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(timeLayout, value)
}
