package domain

// Sample is one labeled text in a reference or test corpus.
type Sample struct {
	Text  string
	Label string
}

// Corpus is an ordered collection of labeled samples. Order matters: distance
// vectors and matrices are index-aligned with it.
type Corpus []Sample

// Texts returns the sample texts in corpus order.
func (c Corpus) Texts() []string {
	texts := make([]string, len(c))
	for i, s := range c {
		texts[i] = s.Text
	}
	return texts
}

// Labels returns the sample labels in corpus order.
func (c Corpus) Labels() []string {
	labels := make([]string, len(c))
	for i, s := range c {
		labels[i] = s.Label
	}
	return labels
}

// DistanceVector holds one distance per reference sample, aligned by index
// with the reference corpus and its labels.
type DistanceVector []float64

// DistanceMatrix is a reference-count x test-count grid of distances.
// Column j is the distance vector for test sample j. Storage is column-major
// so that a column is a contiguous slice and parallel per-column writes touch
// disjoint memory.
type DistanceMatrix struct {
	Rows int // reference corpus size
	Cols int // test corpus size
	Data []float64
}

// NewDistanceMatrix allocates a rows x cols matrix.
func NewDistanceMatrix(rows, cols int) DistanceMatrix {
	return DistanceMatrix{
		Rows: rows,
		Cols: cols,
		Data: make([]float64, rows*cols),
	}
}

// At returns the distance between reference sample i and test sample j.
func (m DistanceMatrix) At(i, j int) float64 {
	return m.Data[j*m.Rows+i]
}

// Set stores the distance between reference sample i and test sample j.
func (m DistanceMatrix) Set(i, j int, v float64) {
	m.Data[j*m.Rows+i] = v
}

// Column returns the distance vector for test sample j. The returned slice
// aliases the matrix storage; it is not a copy.
func (m DistanceMatrix) Column(j int) DistanceVector {
	return DistanceVector(m.Data[j*m.Rows : (j+1)*m.Rows])
}

// Prediction is the classification result for one test sample.
type Prediction struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	// Candidates holds the full most-common set when classification ran in
	// the multi-label (untied) mode; empty otherwise.
	Candidates []string `json:"candidates,omitempty"`
}

// Evaluation summarizes a classification run against known test labels.
type Evaluation struct {
	Total    int
	Correct  int
	Accuracy float64
	// Confusion maps true label -> predicted label -> count. In untied mode
	// the predicted label is the true label whenever it appears in the
	// returned candidate set.
	Confusion map[string]map[string]int
}

// PerLabelAccuracy derives the accuracy of each true label from the
// confusion counts.
func (e Evaluation) PerLabelAccuracy() map[string]float64 {
	out := make(map[string]float64, len(e.Confusion))
	for label, row := range e.Confusion {
		total := 0
		for _, n := range row {
			total += n
		}
		if total > 0 {
			out[label] = float64(row[label]) / float64(total)
		}
	}
	return out
}
