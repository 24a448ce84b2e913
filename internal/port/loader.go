package port

import "ncdc/internal/domain"

// CorpusLoader reads a labeled corpus from a path (a file or a directory,
// depending on the implementation).
type CorpusLoader interface {
	Load(path string) (domain.Corpus, error)
}
