package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"clipset/internal/source"
)

const runColumns = "id, input_path, started_at, finished_at, total, fetched, extracted, partitioned, failed"

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun is returned when a run id prefix matches several runs.
var ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

// CreateRun inserts the run and one pending record per item.
func (s *Store) CreateRun(ctx context.Context, id, inputPath string, items []source.Item) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("run id required")
	}
	started := now()

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO runs (id, input_path, started_at, total) VALUES (?, ?, ?, ?)`,
			id, nullableString(inputPath), started, len(items),
		); err != nil {
			return err
		}
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO items (run_id, idx, identifier, offset_seconds, label, status, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, item := range items {
			if _, err := stmt.ExecContext(ctx, id, item.Index, item.Identifier, item.Offset, nullableString(item.Label), StatusPending, started); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return s.GetRun(ctx, id)
}

// FinishRun stamps the run with its final tallies.
func (s *Store) FinishRun(ctx context.Context, id string, counts Counts) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE runs SET finished_at = ?, fetched = ?, extracted = ?, partitioned = ?, failed = ? WHERE id = ?`,
		now(), counts.Fetched, counts.Extracted, counts.Partitioned, counts.Failed, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// GetRun returns the run with id, or the single run whose id starts with it.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == nil {
		return run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	switch len(runs) {
	case 0:
		return nil, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	case 1:
		return &runs[0], nil
	default:
		return nil, fmt.Errorf("%s: %w", id, ErrAmbiguousRun)
	}
}

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run         Run
		inputPath   sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&inputPath,
		&startedRaw,
		&finishedRaw,
		&run.Total,
		&run.Fetched,
		&run.Extracted,
		&run.Partitioned,
		&run.Failed,
	); err != nil {
		return nil, err
	}
	run.InputPath = inputPath.String
	if started, err := parseTime(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTime(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}

// Elapsed reports how long the run took, or has taken so far.
func (r Run) Elapsed() time.Duration {
	if r.FinishedAt != nil {
		return r.FinishedAt.Sub(r.StartedAt)
	}
	return time.Since(r.StartedAt)
}
