package manifest

import (
	"context"
	"database/sql"
	"fmt"

	"clipset/internal/services"
)

const recordColumns = "run_id, idx, identifier, offset_seconds, label, status, video_path, image_path, audio_path, audio_seconds, error_kind, error_message, updated_at"

// RecordFetch stores the fetch outcome of item idx.
func (s *Store) RecordFetch(ctx context.Context, runID string, idx int, videoPath string, fetchErr error) error {
	if fetchErr != nil {
		return s.recordFailure(ctx, runID, idx, StatusFetchFailed, fetchErr)
	}
	return s.update(ctx, runID, idx,
		`UPDATE items SET status = ?, video_path = ?, error_kind = NULL, error_message = NULL, updated_at = ?
         WHERE run_id = ? AND idx = ?`,
		StatusFetched, nullableString(videoPath), now(), runID, idx,
	)
}

// RecordExtraction stores the extraction outcome of item idx.
func (s *Store) RecordExtraction(ctx context.Context, runID string, idx int, imagePath, audioPath string, audioSeconds float64, extractErr error) error {
	if extractErr != nil {
		return s.recordFailure(ctx, runID, idx, StatusExtractFailed, extractErr)
	}
	return s.update(ctx, runID, idx,
		`UPDATE items SET status = ?, image_path = ?, audio_path = ?, audio_seconds = ?,
             error_kind = NULL, error_message = NULL, updated_at = ?
         WHERE run_id = ? AND idx = ?`,
		StatusExtracted, nullableString(imagePath), nullableString(audioPath), audioSeconds, now(), runID, idx,
	)
}

// RecordPartition stores the final dataset paths of item idx.
func (s *Store) RecordPartition(ctx context.Context, runID string, idx int, imagePath, audioPath string) error {
	return s.update(ctx, runID, idx,
		`UPDATE items SET status = ?, image_path = ?, audio_path = ?, updated_at = ?
         WHERE run_id = ? AND idx = ?`,
		StatusPartitioned, nullableString(imagePath), nullableString(audioPath), now(), runID, idx,
	)
}

func (s *Store) recordFailure(ctx context.Context, runID string, idx int, status Status, cause error) error {
	return s.update(ctx, runID, idx,
		`UPDATE items SET status = ?, error_kind = ?, error_message = ?, updated_at = ?
         WHERE run_id = ? AND idx = ?`,
		status, services.Kind(cause), cause.Error(), now(), runID, idx,
	)
}

func (s *Store) update(ctx context.Context, runID string, idx int, query string, args ...any) error {
	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item %s/%d: %w", runID, idx, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update item %s/%d: no such item", runID, idx)
	}
	return nil
}

// Items returns the records of a run ordered by index.
func (s *Store) Items(ctx context.Context, runID string) ([]Record, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM items WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return records, nil
}

// StatusCounts tallies the records of a run by status.
func (s *Store) StatusCounts(ctx context.Context, runID string) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM items WHERE run_id = ? GROUP BY status`, runID)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	defer rows.Close()

	counts := map[Status]int{}
	for rows.Next() {
		var (
			status string
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[Status(status)] = count
	}
	return counts, rows.Err()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (Record, error) {
	var (
		record       Record
		label        sql.NullString
		status       string
		videoPath    sql.NullString
		imagePath    sql.NullString
		audioPath    sql.NullString
		audioSeconds sql.NullFloat64
		errorKind    sql.NullString
		errorMessage sql.NullString
		updatedRaw   string
	)
	if err := scanner.Scan(
		&record.RunID,
		&record.Index,
		&record.Identifier,
		&record.Offset,
		&label,
		&status,
		&videoPath,
		&imagePath,
		&audioPath,
		&audioSeconds,
		&errorKind,
		&errorMessage,
		&updatedRaw,
	); err != nil {
		return Record{}, err
	}
	record.Label = label.String
	record.Status = Status(status)
	record.VideoPath = videoPath.String
	record.ImagePath = imagePath.String
	record.AudioPath = audioPath.String
	record.AudioSeconds = audioSeconds.Float64
	record.ErrorKind = errorKind.String
	record.ErrorMessage = errorMessage.String
	if updated, err := parseTime(updatedRaw); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}
