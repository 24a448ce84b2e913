package usecase

import (
	"fmt"
	"log/slog"

	"ncdc/internal/adapter/classifier"
	"ncdc/internal/adapter/distance"
	"ncdc/internal/domain"
	"ncdc/internal/port"
)

// EvaluateUseCase scores classification accuracy over a labeled test set.
type EvaluateUseCase struct {
	builder    *distance.Builder
	classifier *classifier.Classifier[string]
	k          int
	untied     bool
	log        *slog.Logger
}

// NewEvaluateUseCase creates an evaluate use case. In untied mode a test
// sample counts as correct when its true label appears anywhere in the tied
// front-runner set, and no tie-breaking happens at all.
func NewEvaluateUseCase(
	builder *distance.Builder,
	clf *classifier.Classifier[string],
	k int,
	untied bool,
	log *slog.Logger,
) *EvaluateUseCase {
	return &EvaluateUseCase{
		builder:    builder,
		classifier: clf,
		k:          k,
		untied:     untied,
		log:        ensureLogger(log),
	}
}

// EvaluateCorpus builds the distance matrix for the labeled test corpus and
// scores it against the reference corpus.
func (u *EvaluateUseCase) EvaluateCorpus(tests, refs domain.Corpus, onProgress port.ProgressFunc) (domain.Evaluation, error) {
	m, err := u.builder.Matrix(tests.Texts(), refs.Texts(), onProgress)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return u.Evaluate(m, refs.Labels(), tests.Labels())
}

// Evaluate scores a precomputed distance matrix. refLabels align with matrix
// rows, testLabels with matrix columns.
func (u *EvaluateUseCase) Evaluate(m domain.DistanceMatrix, refLabels, testLabels []string) (domain.Evaluation, error) {
	if len(refLabels) != m.Rows {
		return domain.Evaluation{}, fmt.Errorf("%w: %d reference labels for %d matrix rows", domain.ErrInvalidArgument, len(refLabels), m.Rows)
	}
	if len(testLabels) != m.Cols {
		return domain.Evaluation{}, fmt.Errorf("%w: %d test labels for %d matrix columns", domain.ErrInvalidArgument, len(testLabels), m.Cols)
	}

	ev := domain.Evaluation{
		Total:     m.Cols,
		Confusion: make(map[string]map[string]int),
	}

	for j := 0; j < m.Cols; j++ {
		predicted, err := u.predictColumn(m.Column(j), refLabels, testLabels[j])
		if err != nil {
			return domain.Evaluation{}, err
		}

		if predicted == testLabels[j] {
			ev.Correct++
		}
		row := ev.Confusion[testLabels[j]]
		if row == nil {
			row = make(map[string]int)
			ev.Confusion[testLabels[j]] = row
		}
		row[predicted]++
	}

	if ev.Total > 0 {
		ev.Accuracy = float64(ev.Correct) / float64(ev.Total)
	}
	u.log.Debug("evaluation finished",
		"total", ev.Total,
		"correct", ev.Correct,
		"accuracy", ev.Accuracy,
		"untied", u.untied,
	)
	return ev, nil
}

func (u *EvaluateUseCase) predictColumn(col domain.DistanceVector, refLabels []string, trueLabel string) (string, error) {
	if !u.untied {
		return u.classifier.Classify(col, refLabels, u.k)
	}

	candidates, err := u.classifier.ClassifyMulti(col, refLabels, u.k)
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		if c == trueLabel {
			return trueLabel, nil
		}
	}
	return candidates[0], nil
}
