package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"ncdc/config"
	"ncdc/internal/adapter/classifier"
	"ncdc/internal/adapter/compressor"
	"ncdc/internal/adapter/dataset"
	"ncdc/internal/adapter/distance"
	"ncdc/internal/domain"
	"ncdc/internal/port"
	"ncdc/internal/usecase"
)

func main() {
	corpusPath := flag.String("corpus", "", "Labeled reference corpus (CSV file or directory)")
	testsPath := flag.String("tests", "", "Labeled test corpus (CSV file or directory)")
	dir := flag.String("dir", ".", "Directory whose ncdc config to use")
	topK := flag.Int("k", 0, "Neighbour count (0 = from config)")
	workers := flag.Int("workers", 0, "Worker count (0 = from config)")
	flag.Parse()

	if *corpusPath == "" || *testsPath == "" {
		fmt.Println("Usage: go run cmd/benchmark/main.go -corpus train.csv -tests test.csv")
		fmt.Println("\nRuns the evaluation once per compression backend and compares:")
		fmt.Println("  1. Classification accuracy")
		fmt.Println("  2. Wall-clock time and distance throughput")
		os.Exit(1)
	}

	cfg, err := config.LoadFromDir(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	refs, err := loadCorpus(*corpusPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading corpus: %v\n", err)
		os.Exit(1)
	}
	tests, err := loadCorpus(*testsPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading test corpus: %v\n", err)
		os.Exit(1)
	}

	k := cfg.Classify.K
	if *topK > 0 {
		k = *topK
	}
	w := cfg.Workers
	if *workers > 0 {
		w = *workers
	}

	tb, err := classifier.ParseTieBreak(cfg.Classify.TieBreak)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("COMPRESSOR BENCHMARK")
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Reference samples: %d\n", len(refs))
	fmt.Printf("Test samples:      %d\n", len(tests))
	fmt.Printf("Vote:              k=%d, tie-break %s\n", k, cfg.Classify.TieBreak)
	fmt.Println()

	type result struct {
		name     string
		accuracy float64
		elapsed  time.Duration
		rate     float64
	}
	var results []result

	distances := len(refs)*len(tests) + len(refs) + len(tests)

	for _, name := range compressor.Names() {
		comp, err := compressor.New(name, -1)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Fresh seeded RNG per backend so the random tie-break cannot skew
		// one backend against another.
		var rng *rand.Rand
		if cfg.Classify.Seed != 0 {
			rng = rand.New(rand.NewSource(cfg.Classify.Seed))
		}
		clf, err := classifier.New[string](tb, rng)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		builder := distance.NewBuilder(distance.NewEngine(comp), w, nil)
		uc := usecase.NewEvaluateUseCase(builder, clf, k, false, nil)

		start := time.Now()
		ev, err := uc.EvaluateCorpus(tests, refs, nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error evaluating with %s: %v\n", name, err)
			os.Exit(1)
		}
		elapsed := time.Since(start)
		rate := float64(distances) / elapsed.Seconds()

		rating := "LOW"
		if ev.Accuracy > 0.9 {
			rating = "HIGH"
		} else if ev.Accuracy > 0.75 {
			rating = "GOOD"
		} else if ev.Accuracy > 0.5 {
			rating = "OK"
		}

		fmt.Printf("%-6s [%-4s %5.1f%%]  %10s  %9.0f compressions/s\n",
			name, rating, ev.Accuracy*100, elapsed.Round(time.Millisecond), rate)

		results = append(results, result{name, ev.Accuracy, elapsed, rate})
	}

	best := results[0]
	fastest := results[0]
	for _, r := range results[1:] {
		if r.accuracy > best.accuracy {
			best = r
		}
		if r.elapsed < fastest.elapsed {
			fastest = r
		}
	}

	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("Best accuracy: %s (%.1f%%)\n", best.name, best.accuracy*100)
	fmt.Printf("Fastest:       %s (%s)\n", fastest.name, fastest.elapsed.Round(time.Millisecond))

	if best.accuracy < 0.5 {
		fmt.Println("Status: POOR - texts may be too short, or labels too similar")
	} else if best.accuracy < 0.75 {
		fmt.Println("Status: OK - consider more reference samples per label")
	} else {
		fmt.Println("Status: GOOD - compression distance separates these labels well")
	}
}

func loadCorpus(path string, cfg *config.Config) (domain.Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	opts := dataset.Options{
		Lowercase:  cfg.Dataset.Lowercase,
		MaxChars:   cfg.Dataset.MaxChars,
		PerLabel:   cfg.Dataset.PerLabel,
		SampleSeed: cfg.Dataset.SampleSeed,
	}

	var loader port.CorpusLoader
	if info.IsDir() {
		loader = dataset.NewDirLoader(cfg.Dataset.Includes, cfg.Dataset.Excludes, opts)
	} else {
		loader = dataset.NewCSVLoader(cfg.Dataset.LabelColumn, cfg.Dataset.TextColumns, cfg.Dataset.Header, opts)
	}
	return loader.Load(path)
}
