package pipeline

import (
	"clipset/internal/manifest"
	"clipset/internal/partition"
	"clipset/internal/source"
)

// Stage names reported on outcomes.
const (
	StageFetch     = "fetch"
	StageExtract   = "extract"
	StagePartition = "partition"
)

// Outcome is what happened to one input row.
type Outcome struct {
	Item      source.Item
	VideoPath string
	ImagePath string
	AudioPath string
	// Stage is the last stage the row reached.
	Stage string
	Err   error
}

// OK reports whether the row ended up in the dataset.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Stage == StagePartition
}

// Report summarizes a pipeline run.
type Report struct {
	RunID     string
	Outcomes  []Outcome
	Tree      partition.Tree
	CleanedUp bool
	Removed   int
}

// Counts tallies the outcomes the way the manifest stores them.
func (r Report) Counts() manifest.Counts {
	var counts manifest.Counts
	for _, o := range r.Outcomes {
		switch {
		case o.Err != nil:
			counts.Failed++
		case o.Stage == StagePartition:
			counts.Partitioned++
		}
		if o.VideoPath != "" {
			counts.Fetched++
		}
		if o.ImagePath != "" && o.AudioPath != "" {
			counts.Extracted++
		}
	}
	return counts
}

// Failures returns the failed outcomes in input order.
func (r Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}
