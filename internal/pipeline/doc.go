// Package pipeline runs the full dataset build: fetch every input row,
// sample a frame and an audio slice from each fetched clip, and move the
// artifacts into the labeled dataset tree.
//
// Every stage carries the originating source.Item alongside its outputs, so
// a failed fetch or extraction drops only that row and never shifts the
// labels of the rows after it. When a manifest store is attached, each
// row's progress is recorded under a run id.
package pipeline
