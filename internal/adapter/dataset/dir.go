package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"ncdc/internal/domain"
)

// DirLoader reads a corpus from a directory tree with one subdirectory per
// label and one sample per file. Include and exclude patterns are doublestar
// globs matched against root-relative paths.
type DirLoader struct {
	includes []string
	excludes []string
	opts     Options
}

func NewDirLoader(includes, excludes []string, opts Options) *DirLoader {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &DirLoader{
		includes: includes,
		excludes: excludes,
		opts:     opts,
	}
}

func (l *DirLoader) Load(root string) (domain.Corpus, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var corpus domain.Corpus
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if relPath != "." && l.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		// The first path segment is the label; files directly under the
		// root carry none and are skipped.
		relPath = filepath.ToSlash(relPath)
		label, _, found := strings.Cut(relPath, "/")
		if !found {
			return nil
		}

		if !l.shouldInclude(relPath) || l.shouldExclude(relPath) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		corpus = append(corpus, domain.Sample{
			Text:  Normalize(string(data), l.opts),
			Label: label,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk dataset dir: %w", err)
	}

	corpus = samplePerLabel(corpus, l.opts.PerLabel, l.opts.SampleSeed)
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: no samples under %s", domain.ErrInvalidArgument, root)
	}
	return corpus, nil
}

func (l *DirLoader) shouldInclude(path string) bool {
	for _, pattern := range l.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func (l *DirLoader) shouldExclude(path string) bool {
	for _, pattern := range l.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
