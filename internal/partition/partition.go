package partition

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"clipset/internal/fileutil"
	"clipset/internal/sampler"
	"clipset/internal/services"
	"clipset/internal/textutil"
)

// Modality roots under the dataset directory.
const (
	ModalityImages = "images"
	ModalitySounds = "sounds"
)

// Artifact is one file destined for the labeled tree.
type Artifact struct {
	Path  string
	Label string
}

// Tree maps modality to label directory to the file names moved there, in
// move order.
type Tree map[string]map[string][]string

func (t Tree) add(modality, label, name string) {
	if t[modality] == nil {
		t[modality] = map[string][]string{}
	}
	t[modality][label] = append(t[modality][label], name)
}

// Files returns the names moved into modality/label.
func (t Tree) Files(modality, label string) []string {
	return t[modality][label]
}

// Labels returns the label directories of modality, sorted.
func (t Tree) Labels(modality string) []string {
	labels := make([]string, 0, len(t[modality]))
	for label := range t[modality] {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// Count returns the number of files moved.
func (t Tree) Count() int {
	n := 0
	for _, labels := range t {
		for _, files := range labels {
			n += len(files)
		}
	}
	return n
}

// ArtifactsFromPairs flattens extracted pairs into labeled artifacts.
func ArtifactsFromPairs(pairs []sampler.Pair) []Artifact {
	artifacts := make([]Artifact, 0, len(pairs)*2)
	for _, pair := range pairs {
		for _, path := range pair.Paths() {
			artifacts = append(artifacts, Artifact{Path: path, Label: pair.Source.Label})
		}
	}
	return artifacts
}

// Partition moves the artifact files of flatDir under root. labels holds
// either one label per file or one per base name, in listing order.
func Partition(labels []string, flatDir, root string) (Tree, error) {
	files, err := listArtifacts(flatDir)
	if err != nil {
		return nil, err
	}

	stems := make([]string, 0, len(files))
	stemIndex := map[string]int{}
	for _, name := range files {
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if _, ok := stemIndex[stem]; !ok {
			stemIndex[stem] = len(stems)
			stems = append(stems, stem)
		}
	}

	artifacts := make([]Artifact, len(files))
	switch len(labels) {
	case len(files):
		for i, name := range files {
			artifacts[i] = Artifact{Path: filepath.Join(flatDir, name), Label: labels[i]}
		}
	case len(stems):
		for i, name := range files {
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			artifacts[i] = Artifact{Path: filepath.Join(flatDir, name), Label: labels[stemIndex[stem]]}
		}
	default:
		return nil, services.Wrap(
			services.ErrValidation,
			"partition",
			"match labels",
			fmt.Sprintf("%d labels for %d files (%d base names) in %s", len(labels), len(files), len(stems), flatDir),
			nil,
		)
	}
	return PartitionArtifacts(artifacts, root)
}

// PartitionArtifacts moves each artifact under root by extension and label.
// Every artifact is validated before the first move.
func PartitionArtifacts(artifacts []Artifact, root string) (Tree, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrInvalidPath, "partition", "validate root", "dataset root is empty", nil)
	}
	modalities := make([]string, len(artifacts))
	for i, a := range artifacts {
		modality, ok := modalityFor(a.Path)
		if !ok {
			return nil, services.Wrap(services.ErrValidation, "partition", "dispatch", fmt.Sprintf("unsupported artifact %s", a.Path), nil)
		}
		modalities[i] = modality
	}

	tree := Tree{}
	for i, a := range artifacts {
		label := textutil.LabelDirName(a.Label)
		dir := filepath.Join(root, modalities[i], label)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return tree, services.Wrap(services.ErrInvalidPath, "partition", "create label directory", dir, err)
		}
		name := filepath.Base(a.Path)
		if err := fileutil.MoveFile(a.Path, filepath.Join(dir, name)); err != nil {
			return tree, services.Wrap(services.ErrInvalidPath, "partition", "move artifact", a.Path, err)
		}
		tree.add(modalities[i], label, name)
	}
	return tree, nil
}

func modalityFor(path string) (string, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case sampler.ImageExt:
		return ModalityImages, true
	case sampler.AudioExt:
		return ModalitySounds, true
	default:
		return "", false
	}
}

// listArtifacts returns the .png and .wav files of dir in listing order,
// ignoring dotfiles and everything else.
func listArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidPath, "partition", "list flat directory", dir, err)
	}
	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") || !entry.Type().IsRegular() {
			continue
		}
		if _, ok := modalityFor(name); ok {
			files = append(files, name)
		}
	}
	return files, nil
}
