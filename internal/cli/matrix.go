package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ncdc/internal/adapter/store"
	"ncdc/internal/usecase"
)

var (
	matrixTests  string
	matrixCorpus string
	matrixOutput string
	matrixInfo   string
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Build or inspect a distance matrix",
	Long: `Build the full distance matrix between a test corpus and a reference
corpus, optionally writing it to a CSV file for later evaluation runs.
With --info, summarize a previously written matrix instead of building.

Examples:
  ncdc matrix --tests test.csv --corpus train.csv -o distances.csv
  ncdc matrix --info distances.csv`,
	RunE: runMatrix,
}

func init() {
	rootCmd.AddCommand(matrixCmd)
	matrixCmd.Flags().StringVar(&matrixTests, "tests", "", "test corpus: CSV file or directory")
	matrixCmd.Flags().StringVarP(&matrixCorpus, "corpus", "c", "", "reference corpus: CSV file or directory")
	matrixCmd.Flags().StringVarP(&matrixOutput, "output", "o", "", "write the matrix to this CSV file")
	matrixCmd.Flags().StringVar(&matrixInfo, "info", "", "summarize an existing matrix file instead of building one")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if matrixInfo != "" {
		m, refLabels, err := store.LoadMatrix(matrixInfo)
		if err != nil {
			return fmt.Errorf("failed to load matrix: %w", err)
		}
		fmt.Printf("Matrix file: %s (%d reference labels)\n", matrixInfo, len(refLabels))
		printSummary(usecase.Summarize(m))
		return nil
	}

	if matrixTests == "" || matrixCorpus == "" {
		return fmt.Errorf("both --tests and --corpus are required (or --info to inspect a saved matrix)")
	}

	refs, err := loadCorpus(matrixCorpus, cfg)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}
	tests, err := loadCorpus(matrixTests, cfg)
	if err != nil {
		return fmt.Errorf("failed to load test corpus: %w", err)
	}

	builder, cleanup, err := newBuilder(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	uc := usecase.NewMatrixUseCase(builder, newLogger(cfg))

	m, err := uc.Build(tests.Texts(), refs, newProgressFunc("Compressing"))
	if err != nil {
		return fmt.Errorf("failed to build matrix: %w", err)
	}

	if matrixOutput != "" {
		if err := uc.Save(matrixOutput, m, refs.Labels()); err != nil {
			return fmt.Errorf("failed to save matrix: %w", err)
		}
		fmt.Printf("Matrix written to %s\n", matrixOutput)
	}

	printSummary(uc.Summary(m))
	return nil
}

func printSummary(s usecase.MatrixSummary) {
	fmt.Printf("Matrix: %d refs x %d tests (%d distances)\n", s.Rows, s.Cols, s.Rows*s.Cols)
	fmt.Printf("  min/max: %.4f / %.4f\n", s.Min, s.Max)
	fmt.Printf("  mean:    %.4f (stddev %.4f)\n", s.Mean, s.StdDev)
	fmt.Printf("  median:  %.4f\n", s.Median)
	fmt.Printf("  p90:     %.4f\n", s.P90)
}
