package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"ncdc/internal/domain"
)

// SaveMatrix writes a distance matrix as CSV: a header naming the test
// columns, then one row per reference sample holding its label and the
// distance to every test sample. Floats use shortest round-trip formatting,
// so LoadMatrix restores the exact values.
func SaveMatrix(path string, m domain.DistanceMatrix, refLabels []string) error {
	if len(refLabels) != m.Rows {
		return fmt.Errorf("%w: %d labels for %d matrix rows", domain.ErrInvalidArgument, len(refLabels), m.Rows)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create matrix file: %w", err)
	}

	w := csv.NewWriter(f)

	header := make([]string, m.Cols+1)
	header[0] = "label"
	for j := 0; j < m.Cols; j++ {
		header[j+1] = "t" + strconv.Itoa(j)
	}
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("failed to write matrix file: %w", err)
	}

	row := make([]string, m.Cols+1)
	for i := 0; i < m.Rows; i++ {
		row[0] = refLabels[i]
		for j := 0; j < m.Cols; j++ {
			row[j+1] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("failed to write matrix file: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write matrix file: %w", err)
	}
	return f.Close()
}

// LoadMatrix reads a matrix written by SaveMatrix and returns it together
// with the reference labels.
func LoadMatrix(path string) (domain.DistanceMatrix, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.DistanceMatrix{}, nil, fmt.Errorf("failed to open matrix file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return domain.DistanceMatrix{}, nil, fmt.Errorf("%w: malformed matrix file: %v", domain.ErrInvalidArgument, err)
	}
	if len(records) < 2 || len(records[0]) < 2 || records[0][0] != "label" {
		return domain.DistanceMatrix{}, nil, fmt.Errorf("%w: %s is not a distance matrix file", domain.ErrInvalidArgument, path)
	}

	rows := len(records) - 1
	cols := len(records[0]) - 1
	m := domain.NewDistanceMatrix(rows, cols)
	labels := make([]string, rows)

	for i, rec := range records[1:] {
		labels[i] = rec[0]
		for j, cell := range rec[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return domain.DistanceMatrix{}, nil, fmt.Errorf("%w: row %d column %d: %v", domain.ErrInvalidArgument, i+2, j+2, err)
			}
			m.Set(i, j, v)
		}
	}
	return m, labels, nil
}
