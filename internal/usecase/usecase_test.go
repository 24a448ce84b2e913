package usecase

import (
	"errors"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"ncdc/internal/adapter/classifier"
	"ncdc/internal/adapter/compressor"
	"ncdc/internal/adapter/distance"
	"ncdc/internal/domain"
)

func newBuilder(t *testing.T) *distance.Builder {
	t.Helper()
	c, err := compressor.New("gzip", -1)
	if err != nil {
		t.Fatal(err)
	}
	return distance.NewBuilder(distance.NewEngine(c), 2, nil)
}

func newStringClassifier(t *testing.T, tb classifier.TieBreak) *classifier.Classifier[string] {
	t.Helper()
	clf, err := classifier.New[string](tb, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatal(err)
	}
	return clf
}

func matrixFromColumns(refs int, cols ...[]float64) domain.DistanceMatrix {
	m := domain.NewDistanceMatrix(refs, len(cols))
	for j, col := range cols {
		copy(m.Column(j), col)
	}
	return m
}

func TestClassifyMatrix(t *testing.T) {
	refLabels := []string{"3", "1", "2", "3", "1"}
	m := matrixFromColumns(5,
		[]float64{0.6348, 0.6589, 0.6435, 0.685, 0.7143},
		[]float64{0.9, 0.1, 0.8, 0.7, 0.2},
	)

	u := NewClassifyUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 5, false, nil)
	preds, err := u.ClassifyMatrix(m, refLabels)
	if err != nil {
		t.Fatal(err)
	}
	if len(preds) != 2 {
		t.Fatalf("expected 2 predictions, got %d", len(preds))
	}
	if preds[0].Index != 0 || preds[0].Label != "3" {
		t.Errorf("column 0: got %+v", preds[0])
	}
	if preds[1].Index != 1 || preds[1].Label != "1" {
		t.Errorf("column 1: got %+v", preds[1])
	}
}

func TestClassifyText(t *testing.T) {
	text := "the visiting side scored a late winner in the derby"
	refs := domain.Corpus{
		{Text: text, Label: "sports"},
		{Text: "the central bank kept its main rate unchanged on thursday", Label: "business"},
	}

	u := NewClassifyUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 1, false, nil)
	pred, err := u.ClassifyText(text, refs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if pred.Label != "sports" {
		t.Errorf("an exact duplicate should be nearest, got %q", pred.Label)
	}
	if pred.Candidates != nil {
		t.Errorf("tied-mode prediction should carry no candidate set, got %v", pred.Candidates)
	}
}

func TestClassifyTextUntied(t *testing.T) {
	text := "the visiting side scored a late winner in the derby"
	refs := domain.Corpus{
		{Text: text, Label: "sports"},
		{Text: "the central bank kept its main rate unchanged on thursday", Label: "business"},
	}

	u := NewClassifyUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 2, true, nil)
	pred, err := u.ClassifyText(text, refs, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pred.Candidates) != 2 {
		t.Fatalf("k=2 over two distinct labels must tie, got %v", pred.Candidates)
	}
	if pred.Candidates[0] != "sports" || pred.Label != "sports" {
		t.Errorf("nearest label should lead the candidate set, got %+v", pred)
	}
}

func TestClassifyBatchAgainstSingle(t *testing.T) {
	refs := domain.Corpus{
		{Text: "stoppage time goal wins the cup final", Label: "sports"},
		{Text: "shares fell after the earnings report", Label: "business"},
		{Text: "the league announced the new season schedule", Label: "sports"},
	}
	tests := []string{
		"a goal in stoppage time decided the final",
		"the earnings report sent shares lower",
	}

	u := NewClassifyUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 1, false, nil)

	batch, err := u.ClassifyBatch(tests, refs, nil)
	if err != nil {
		t.Fatal(err)
	}
	for j, text := range tests {
		single, err := u.ClassifyText(text, refs, nil)
		if err != nil {
			t.Fatal(err)
		}
		if batch[j].Label != single.Label {
			t.Errorf("test %d: batch %q != single %q", j, batch[j].Label, single.Label)
		}
	}
}

func TestEvaluate(t *testing.T) {
	refLabels := []string{"a", "b"}
	testLabels := []string{"a", "b", "a"}
	m := matrixFromColumns(2,
		[]float64{0.1, 0.9},
		[]float64{0.2, 0.8},
		[]float64{0.9, 0.1},
	)

	u := NewEvaluateUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 1, false, nil)
	ev, err := u.Evaluate(m, refLabels, testLabels)
	if err != nil {
		t.Fatal(err)
	}

	if ev.Total != 3 || ev.Correct != 1 {
		t.Errorf("expected 1/3 correct, got %d/%d", ev.Correct, ev.Total)
	}
	if math.Abs(ev.Accuracy-1.0/3.0) > 1e-12 {
		t.Errorf("accuracy: got %v", ev.Accuracy)
	}
	if ev.Confusion["a"]["a"] != 1 || ev.Confusion["a"]["b"] != 1 || ev.Confusion["b"]["a"] != 1 {
		t.Errorf("unexpected confusion: %v", ev.Confusion)
	}

	perLabel := ev.PerLabelAccuracy()
	if math.Abs(perLabel["a"]-0.5) > 1e-12 || perLabel["b"] != 0 {
		t.Errorf("unexpected per-label accuracy: %v", perLabel)
	}
}

func TestEvaluateUntied(t *testing.T) {
	refLabels := []string{"a", "b"}
	testLabels := []string{"a", "b"}
	m := matrixFromColumns(2,
		[]float64{0.1, 0.9},
		[]float64{0.2, 0.8},
	)

	// k=2 over two distinct labels always ties. Untied scoring accepts the
	// true label as a member of the tied set.
	untied := NewEvaluateUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 2, true, nil)
	ev, err := untied.Evaluate(m, refLabels, testLabels)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Correct != 2 {
		t.Errorf("untied mode should accept both columns, got %d/%d", ev.Correct, ev.Total)
	}

	// Tied mode must resolve each tie to the nearer label instead.
	tied := NewEvaluateUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 2, false, nil)
	ev, err = tied.Evaluate(m, refLabels, testLabels)
	if err != nil {
		t.Fatal(err)
	}
	if ev.Correct != 1 {
		t.Errorf("tied mode should only score the first column, got %d/%d", ev.Correct, ev.Total)
	}
}

func TestEvaluateValidation(t *testing.T) {
	u := NewEvaluateUseCase(newBuilder(t), newStringClassifier(t, classifier.TieBreakDecrement), 1, false, nil)
	m := domain.NewDistanceMatrix(2, 1)

	if _, err := u.Evaluate(m, []string{"a"}, []string{"a"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("row mismatch: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := u.Evaluate(m, []string{"a", "b"}, []string{"a", "b"}); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("column mismatch: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSummarize(t *testing.T) {
	m := matrixFromColumns(2,
		[]float64{0.1, 0.3},
		[]float64{0.2, 0.4},
	)

	s := Summarize(m)
	if s.Rows != 2 || s.Cols != 2 {
		t.Errorf("shape: got %dx%d", s.Rows, s.Cols)
	}
	if s.Min != 0.1 || s.Max != 0.4 {
		t.Errorf("range: got [%v, %v]", s.Min, s.Max)
	}
	if math.Abs(s.Mean-0.25) > 1e-12 {
		t.Errorf("mean: got %v", s.Mean)
	}
	if want := math.Sqrt(0.05 / 3.0); math.Abs(s.StdDev-want) > 1e-12 {
		t.Errorf("stddev: got %v, want %v", s.StdDev, want)
	}
	if s.Median != 0.2 || s.P90 != 0.4 {
		t.Errorf("quantiles: median %v p90 %v", s.Median, s.P90)
	}

	empty := Summarize(domain.DistanceMatrix{})
	if empty.Min != 0 || empty.Max != 0 {
		t.Errorf("empty matrix should summarize to zeros, got %+v", empty)
	}
}

func TestMatrixUseCaseRoundTrip(t *testing.T) {
	refs := domain.Corpus{
		{Text: "stoppage time goal wins the cup final", Label: "sports"},
		{Text: "shares fell after the earnings report", Label: "business"},
	}
	tests := []string{"the cup final went to extra time"}

	u := NewMatrixUseCase(newBuilder(t), nil)
	m, err := u.Build(tests, refs, nil)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "matrix.csv")
	if err := u.Save(path, m, refs.Labels()); err != nil {
		t.Fatal(err)
	}
	got, labels, err := u.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if labels[0] != "sports" || labels[1] != "business" {
		t.Errorf("labels: got %v", labels)
	}
	for i := range m.Data {
		if got.Data[i] != m.Data[i] {
			t.Fatalf("value %d drifted through the round trip", i)
		}
	}
}
