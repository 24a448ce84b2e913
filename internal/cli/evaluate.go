package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"ncdc/internal/adapter/store"
	"ncdc/internal/domain"
	"ncdc/internal/usecase"
)

var (
	evalTests    string
	evalCorpus   string
	evalMatrix   string
	evalK        int
	evalTieBreak string
	evalSeed     int64
	evalUntied   bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score classification accuracy on a labeled test corpus",
	Long: `Classify every sample of a labeled test corpus against a reference
corpus and report accuracy, per-label accuracy and the confusion counts.
A matrix saved by 'ncdc matrix -o' can stand in for the reference corpus;
the test corpus then only supplies the true labels.

Examples:
  ncdc evaluate --tests test.csv --corpus train.csv -k 3
  ncdc evaluate --tests test.csv --matrix distances.csv --untied`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
	evaluateCmd.Flags().StringVar(&evalTests, "tests", "", "labeled test corpus: CSV file or directory (required)")
	evaluateCmd.Flags().StringVarP(&evalCorpus, "corpus", "c", "", "reference corpus: CSV file or directory")
	evaluateCmd.Flags().StringVar(&evalMatrix, "matrix", "", "precomputed distance matrix CSV instead of a reference corpus")
	evaluateCmd.Flags().IntVarP(&evalK, "top-k", "k", 0, "number of neighbours in the vote (default from config)")
	evaluateCmd.Flags().StringVar(&evalTieBreak, "tie-break", "", "tie-break strategy: random, decrement or min_total (default from config)")
	evaluateCmd.Flags().Int64Var(&evalSeed, "seed", 0, "seed for the random tie-break (0 = from config, or time)")
	evaluateCmd.Flags().BoolVar(&evalUntied, "untied", false, "count a sample correct when its label is among the tied front-runners")
	evaluateCmd.MarkFlagRequired("tests")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	if evalCorpus == "" && evalMatrix == "" {
		return fmt.Errorf("either --corpus or --matrix is required")
	}

	tests, err := loadCorpus(evalTests, cfg)
	if err != nil {
		return fmt.Errorf("failed to load test corpus: %w", err)
	}

	builder, cleanup, err := newBuilder(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	clf, err := newClassifier(cfg, evalTieBreak, evalSeed)
	if err != nil {
		return err
	}

	uc := usecase.NewEvaluateUseCase(builder, clf, pickK(cfg, evalK), evalUntied, newLogger(cfg))

	var ev domain.Evaluation
	if evalMatrix != "" {
		m, refLabels, err := store.LoadMatrix(evalMatrix)
		if err != nil {
			return fmt.Errorf("failed to load matrix: %w", err)
		}
		ev, err = uc.Evaluate(m, refLabels, tests.Labels())
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
	} else {
		refs, err := loadCorpus(evalCorpus, cfg)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		ev, err = uc.EvaluateCorpus(tests, refs, newProgressFunc("Evaluating"))
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}
	}

	printEvaluation(ev)
	return nil
}

func printEvaluation(ev domain.Evaluation) {
	fmt.Printf("Evaluation: %d/%d correct (accuracy %.2f%%)\n", ev.Correct, ev.Total, ev.Accuracy*100)

	labels := make([]string, 0, len(ev.Confusion))
	for l := range ev.Confusion {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	perLabel := ev.PerLabelAccuracy()
	fmt.Println("\nPer-label accuracy:")
	for _, l := range labels {
		total := 0
		for _, n := range ev.Confusion[l] {
			total += n
		}
		fmt.Printf("  %-16s %6.2f%%  (n=%d)\n", l, perLabel[l]*100, total)
	}

	fmt.Println("\nConfusion (true label -> predictions):")
	for _, l := range labels {
		row := ev.Confusion[l]
		preds := make([]string, 0, len(row))
		for p := range row {
			preds = append(preds, p)
		}
		sort.Strings(preds)

		parts := make([]string, 0, len(preds))
		for _, p := range preds {
			parts = append(parts, fmt.Sprintf("%s: %d", p, row[p]))
		}
		fmt.Printf("  %-16s %s\n", l, strings.Join(parts, ", "))
	}
}
