// Package partition moves flat artifacts into the labeled dataset tree
// {root}/images/{label}/*.png and {root}/sounds/{label}/*.wav.
//
// Partition keeps the positional contract: labels are matched against the
// artifact files of a flat directory in listing order, either one label per
// file or one per shared base name. PartitionArtifacts takes explicit
// (path, label) records instead and is what the pipeline uses. Both move
// files rather than copy them and are not transactional.
package partition
