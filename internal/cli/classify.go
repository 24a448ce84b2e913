package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ncdc/internal/adapter/dataset"
	"ncdc/internal/domain"
	"ncdc/internal/port"
	"ncdc/internal/usecase"
)

var (
	classifyText     string
	classifyFile     string
	classifyInput    string
	classifyCorpus   string
	classifyK        int
	classifyTieBreak string
	classifySeed     int64
	classifyUntied   bool
	classifyJSON     bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Label text against a reference corpus",
	Long: `Classify text by compression distance against a labeled reference corpus.
The corpus is either a CSV dataset (label column + text columns) or a
directory with one subdirectory per label.

Examples:
  ncdc classify -t "stocks rallied on fed comments" --corpus train.csv
  ncdc classify --file article.txt --corpus corpus_dir -k 5
  ncdc classify --input headlines.txt --corpus train.csv --json`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	classifyCmd.Flags().StringVarP(&classifyText, "text", "t", "", "text to classify")
	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "file holding one text to classify")
	classifyCmd.Flags().StringVar(&classifyInput, "input", "", "file with one text per line for batch classification")
	classifyCmd.Flags().StringVarP(&classifyCorpus, "corpus", "c", "", "labeled reference corpus: CSV file or directory (required)")
	classifyCmd.Flags().IntVarP(&classifyK, "top-k", "k", 0, "number of neighbours in the vote (default from config)")
	classifyCmd.Flags().StringVar(&classifyTieBreak, "tie-break", "", "tie-break strategy: random, decrement or min_total (default from config)")
	classifyCmd.Flags().Int64Var(&classifySeed, "seed", 0, "seed for the random tie-break (0 = from config, or time)")
	classifyCmd.Flags().BoolVar(&classifyUntied, "untied", false, "report all tied front-runners instead of breaking ties")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output as JSON")
	classifyCmd.MarkFlagRequired("corpus")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	sources := 0
	for _, s := range []string{classifyText, classifyFile, classifyInput} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return fmt.Errorf("exactly one of --text, --file or --input is required")
	}

	refs, err := loadCorpus(classifyCorpus, cfg)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	builder, cleanup, err := newBuilder(cfg, GetRootDir())
	if err != nil {
		return err
	}
	defer cleanup()

	clf, err := newClassifier(cfg, classifyTieBreak, classifySeed)
	if err != nil {
		return err
	}

	uc := usecase.NewClassifyUseCase(builder, clf, pickK(cfg, classifyK), classifyUntied, newLogger(cfg))

	opts := dataset.Options{
		Lowercase: cfg.Dataset.Lowercase,
		MaxChars:  cfg.Dataset.MaxChars,
	}

	var progress port.ProgressFunc
	if !classifyJSON {
		progress = newProgressFunc("Comparing")
	}

	// Batch mode: one text per input line.
	if classifyInput != "" {
		texts, err := readInputLines(classifyInput, opts)
		if err != nil {
			return err
		}
		preds, err := uc.ClassifyBatch(texts, refs, progress)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		return printBatch(preds, texts)
	}

	text := classifyText
	if classifyFile != "" {
		data, err := os.ReadFile(classifyFile)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}
		text = string(data)
	}
	text = dataset.Normalize(text, opts)

	pred, err := uc.ClassifyText(text, refs, progress)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if classifyJSON {
		output, _ := json.MarshalIndent(pred, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Corpus: %d samples, %d labels\n", len(refs), countLabels(refs))
	fmt.Printf("Predicted: %s\n", pred.Label)
	if len(pred.Candidates) > 1 {
		fmt.Printf("Tied candidates: %s\n", strings.Join(pred.Candidates, ", "))
	}
	return nil
}

func readInputLines(path string, opts dataset.Options) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	var texts []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := dataset.Normalize(scanner.Text(), opts)
		if line == "" {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("input file holds no texts")
	}
	return texts, nil
}

func printBatch(preds []domain.Prediction, texts []string) error {
	if classifyJSON {
		output, _ := json.MarshalIndent(preds, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	for i, p := range preds {
		text := texts[i]
		if len(text) > 60 {
			text = text[:60] + "..."
		}
		fmt.Printf("[%d] %-12s %s\n", i+1, p.Label, text)
	}
	return nil
}

func countLabels(c domain.Corpus) int {
	seen := make(map[string]struct{}, len(c))
	for _, s := range c {
		seen[s.Label] = struct{}{}
	}
	return len(seen)
}
