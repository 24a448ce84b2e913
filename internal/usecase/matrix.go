package usecase

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"ncdc/internal/adapter/distance"
	"ncdc/internal/adapter/store"
	"ncdc/internal/domain"
	"ncdc/internal/port"
)

// MatrixUseCase builds, persists and summarizes distance matrices.
type MatrixUseCase struct {
	builder *distance.Builder
	log     *slog.Logger
}

func NewMatrixUseCase(builder *distance.Builder, log *slog.Logger) *MatrixUseCase {
	return &MatrixUseCase{
		builder: builder,
		log:     ensureLogger(log),
	}
}

// Build computes the distance matrix of every test text against the corpus.
func (u *MatrixUseCase) Build(tests []string, refs domain.Corpus, onProgress port.ProgressFunc) (domain.DistanceMatrix, error) {
	start := time.Now()
	m, err := u.builder.Matrix(tests, refs.Texts(), onProgress)
	if err != nil {
		return domain.DistanceMatrix{}, err
	}
	u.log.Debug("distance matrix built",
		"refs", m.Rows,
		"tests", m.Cols,
		"duration", time.Since(start),
	)
	return m, nil
}

// Save writes a matrix and its reference labels to a CSV file.
func (u *MatrixUseCase) Save(path string, m domain.DistanceMatrix, refLabels []string) error {
	if err := store.SaveMatrix(path, m, refLabels); err != nil {
		return err
	}
	u.log.Debug("distance matrix saved", "path", path, "refs", m.Rows, "tests", m.Cols)
	return nil
}

// Load reads a matrix and its reference labels back from a CSV file.
func (u *MatrixUseCase) Load(path string) (domain.DistanceMatrix, []string, error) {
	return store.LoadMatrix(path)
}

// Summary returns distribution statistics over all matrix entries.
func (u *MatrixUseCase) Summary(m domain.DistanceMatrix) MatrixSummary {
	return Summarize(m)
}

// MatrixSummary describes the distance distribution of one matrix.
type MatrixSummary struct {
	Rows   int
	Cols   int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Median float64
	P90    float64
}

// Summarize computes distribution statistics over all matrix entries. A
// healthy matrix shows clear spread; a near-constant one means the compressor
// is not discriminating between the corpora.
func Summarize(m domain.DistanceMatrix) MatrixSummary {
	s := MatrixSummary{Rows: m.Rows, Cols: m.Cols}
	if len(m.Data) == 0 {
		return s
	}

	vals := make([]float64, len(m.Data))
	copy(vals, m.Data)
	sort.Float64s(vals)

	s.Min = vals[0]
	s.Max = vals[len(vals)-1]
	if len(vals) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	} else {
		s.Mean = vals[0]
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, vals, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, vals, nil)
	return s
}
