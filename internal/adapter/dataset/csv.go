package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"ncdc/internal/domain"
)

// CSVLoader reads one sample per CSV row, AG News style: a label column and
// one or more text columns joined with a single space.
type CSVLoader struct {
	labelColumn int
	textColumns []int
	header      bool
	opts        Options
}

// NewCSVLoader returns a loader taking labels from labelColumn and text from
// textColumns. An empty textColumns means every column except the label one.
// header skips the first row.
func NewCSVLoader(labelColumn int, textColumns []int, header bool, opts Options) *CSVLoader {
	return &CSVLoader{
		labelColumn: labelColumn,
		textColumns: textColumns,
		header:      header,
		opts:        opts,
	}
}

func (l *CSVLoader) Load(path string) (domain.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: malformed dataset %s: %v", domain.ErrInvalidArgument, path, err)
	}
	if l.header && len(records) > 0 {
		records = records[1:]
	}

	corpus := make(domain.Corpus, 0, len(records))
	for i, rec := range records {
		if l.labelColumn >= len(rec) {
			return nil, fmt.Errorf("%w: row %d has no label column %d", domain.ErrInvalidArgument, i+1, l.labelColumn)
		}

		cols := l.textColumns
		if len(cols) == 0 {
			cols = make([]int, 0, len(rec)-1)
			for j := range rec {
				if j != l.labelColumn {
					cols = append(cols, j)
				}
			}
		}

		parts := make([]string, 0, len(cols))
		for _, j := range cols {
			if j >= len(rec) {
				return nil, fmt.Errorf("%w: row %d has no text column %d", domain.ErrInvalidArgument, i+1, j)
			}
			parts = append(parts, rec[j])
		}

		corpus = append(corpus, domain.Sample{
			Text:  Normalize(strings.Join(parts, " "), l.opts),
			Label: strings.TrimSpace(rec[l.labelColumn]),
		})
	}

	corpus = samplePerLabel(corpus, l.opts.PerLabel, l.opts.SampleSeed)
	if len(corpus) == 0 {
		return nil, fmt.Errorf("%w: dataset %s holds no samples", domain.ErrInvalidArgument, path)
	}
	return corpus, nil
}
