package usecase

import (
	"io"
	"log/slog"
	"time"

	"ncdc/internal/adapter/classifier"
	"ncdc/internal/adapter/distance"
	"ncdc/internal/domain"
	"ncdc/internal/port"
)

// ClassifyUseCase labels test texts against a reference corpus: distance
// vector first, then the k-nearest-neighbour vote.
type ClassifyUseCase struct {
	builder    *distance.Builder
	classifier *classifier.Classifier[string]
	k          int
	untied     bool
	log        *slog.Logger
}

// NewClassifyUseCase creates a classify use case. untied switches the vote to
// the multi-label variant, reporting every tied front-runner instead of
// resolving the tie. A nil logger discards output.
func NewClassifyUseCase(
	builder *distance.Builder,
	clf *classifier.Classifier[string],
	k int,
	untied bool,
	log *slog.Logger,
) *ClassifyUseCase {
	return &ClassifyUseCase{
		builder:    builder,
		classifier: clf,
		k:          k,
		untied:     untied,
		log:        ensureLogger(log),
	}
}

// ClassifyText labels a single text against the reference corpus.
func (u *ClassifyUseCase) ClassifyText(text string, refs domain.Corpus, onProgress port.ProgressFunc) (domain.Prediction, error) {
	start := time.Now()
	vec, err := u.builder.Vector(text, refs.Texts(), onProgress)
	if err != nil {
		return domain.Prediction{}, err
	}
	u.log.Debug("distance vector built",
		"refs", len(refs),
		"duration", time.Since(start),
	)
	return u.predict(0, vec, refs.Labels())
}

// ClassifyBatch labels every test text against the reference corpus using a
// single two-phase matrix build.
func (u *ClassifyUseCase) ClassifyBatch(tests []string, refs domain.Corpus, onProgress port.ProgressFunc) ([]domain.Prediction, error) {
	start := time.Now()
	m, err := u.builder.Matrix(tests, refs.Texts(), onProgress)
	if err != nil {
		return nil, err
	}
	u.log.Debug("distance matrix built",
		"refs", m.Rows,
		"tests", m.Cols,
		"duration", time.Since(start),
	)
	return u.ClassifyMatrix(m, refs.Labels())
}

// ClassifyMatrix labels every column of a precomputed distance matrix, for
// example one loaded from disk.
func (u *ClassifyUseCase) ClassifyMatrix(m domain.DistanceMatrix, refLabels []string) ([]domain.Prediction, error) {
	predictions := make([]domain.Prediction, m.Cols)
	for j := 0; j < m.Cols; j++ {
		p, err := u.predict(j, m.Column(j), refLabels)
		if err != nil {
			return nil, err
		}
		predictions[j] = p
	}
	return predictions, nil
}

func (u *ClassifyUseCase) predict(index int, vec domain.DistanceVector, labels []string) (domain.Prediction, error) {
	if u.untied {
		candidates, err := u.classifier.ClassifyMulti(vec, labels, u.k)
		if err != nil {
			return domain.Prediction{}, err
		}
		return domain.Prediction{
			Index:      index,
			Label:      candidates[0],
			Candidates: candidates,
		}, nil
	}

	label, err := u.classifier.Classify(vec, labels, u.k)
	if err != nil {
		return domain.Prediction{}, err
	}
	return domain.Prediction{Index: index, Label: label}, nil
}

func ensureLogger(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return log
}
