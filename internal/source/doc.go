// Package source loads the input table that drives a dataset build.
//
// Each row becomes an Item whose Index is its position in the table. The
// index is the artifact stem for every downstream stage, so fetch gaps never
// shift the correlation between a row, its clip, and its artifacts.
//
// Two layouts are understood:
//   - plain: identifier,offset[,label]
//   - vggsound: ytid_start,label or ytid,start,label[,split]
package source
