// Package techdetect guesses the languages used by a repository from the
// file names at its root and one directory below.
package techdetect

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kevinmichaelchen/readme-drafter/internal/models"
	"k8s.io/klog/v2"
)

// Lister lists a repository directory. The empty path is the root.
type Lister interface {
	ListContents(ctx context.Context, path string) ([]models.Entry, error)
}

// Extractor maps recognized file suffixes to technology tags.
type Extractor struct {
	suffixes []string
	table    map[string]string
}

// New builds an extractor from a {suffix: tag} table, e.g. {".py": "py"}.
func New(table map[string]string) *Extractor {
	t := make(map[string]string, len(table))
	suffixes := make([]string, 0, len(table))
	for suffix, tag := range table {
		if suffix == "" || tag == "" {
			continue
		}
		t[suffix] = tag
		suffixes = append(suffixes, suffix)
	}
	// Longest first so ".tar.gz"-style entries beat ".gz".
	sort.Slice(suffixes, func(i, j int) bool {
		if len(suffixes[i]) != len(suffixes[j]) {
			return len(suffixes[i]) > len(suffixes[j])
		}
		return suffixes[i] < suffixes[j]
	})
	return &Extractor{suffixes: suffixes, table: t}
}

// Extract inspects root entries and the contents of each root directory.
// Nothing deeper is listed. An empty set is a valid result.
func (e *Extractor) Extract(ctx context.Context, repo Lister) (models.TechSet, error) {
	techs := models.TechSet{}

	root, err := repo.ListContents(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("listing root: %w", err)
	}

	dirs := 0
	for _, entry := range root {
		switch entry.Type {
		case models.EntryDir:
			dirs++
			children, err := repo.ListContents(ctx, entry.Path)
			if err != nil {
				return nil, fmt.Errorf("listing %s: %w", entry.Path, err)
			}
			for _, child := range children {
				if child.Type == models.EntryFile {
					e.add(techs, child.Name)
				}
			}
		case models.EntryFile:
			e.add(techs, entry.Name)
		}
	}

	klog.V(2).Infof("scanned %d root entries and %d directories, found %v", len(root), dirs, techs.Sorted())
	return techs, nil
}

// Tag returns the tag for name, if its suffix is recognized.
func (e *Extractor) Tag(name string) (string, bool) {
	for _, suffix := range e.suffixes {
		if strings.HasSuffix(name, suffix) {
			return e.table[suffix], true
		}
	}
	return "", false
}

func (e *Extractor) add(techs models.TechSet, name string) {
	if tag, ok := e.Tag(name); ok {
		techs.Add(tag)
	}
}
