// Package textutil provides filename sanitization and label normalization.
//
// Labels from input tables become directory names in the dataset tree, so
// they are normalized to Unicode NFC and stripped of path separators and
// other characters that are unsafe on common filesystems.
package textutil
