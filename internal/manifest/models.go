package manifest

import "time"

// Status is the lifecycle position of one input row within a run.
type Status string

const (
	StatusPending       Status = "pending"
	StatusFetched       Status = "fetched"
	StatusFetchFailed   Status = "fetch_failed"
	StatusExtracted     Status = "extracted"
	StatusExtractFailed Status = "extract_failed"
	StatusPartitioned   Status = "partitioned"
)

// IsFailure reports whether the status ends the item's progress.
func (s Status) IsFailure() bool {
	return s == StatusFetchFailed || s == StatusExtractFailed
}

// Run summarizes one pipeline invocation.
type Run struct {
	ID          string
	InputPath   string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Total       int
	Fetched     int
	Extracted   int
	Partitioned int
	Failed      int
}

// Finished reports whether FinishRun was recorded.
func (r Run) Finished() bool {
	return r.FinishedAt != nil
}

// Counts are the tallies stored when a run finishes.
type Counts struct {
	Fetched     int `json:"fetched"`
	Extracted   int `json:"extracted"`
	Partitioned int `json:"partitioned"`
	Failed      int `json:"failed"`
}

// Record is one input row and its outcome.
type Record struct {
	RunID        string
	Index        int
	Identifier   string
	Offset       float64
	Label        string
	Status       Status
	VideoPath    string
	ImagePath    string
	AudioPath    string
	AudioSeconds float64
	ErrorKind    string
	ErrorMessage string
	UpdatedAt    time.Time
}
