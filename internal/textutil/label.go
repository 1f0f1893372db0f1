package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// UnlabeledDir is used when a label sanitizes to nothing.
const UnlabeledDir = "unlabeled"

// LabelDirName converts a dataset label into a directory name. The label is
// NFC-normalized so visually identical labels share a directory, internal
// whitespace is collapsed, and unsafe characters are replaced.
func LabelDirName(label string) string {
	label = norm.NFC.String(label)
	label = strings.Join(strings.Fields(label), " ")
	label = SanitizeFileName(label)
	label = strings.Trim(label, ".")
	if label == "" {
		return UnlabeledDir
	}
	return label
}
