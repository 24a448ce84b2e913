package cli

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"ncdc/config"
	"ncdc/internal/adapter/classifier"
	"ncdc/internal/adapter/compressor"
	"ncdc/internal/adapter/dataset"
	"ncdc/internal/adapter/distance"
	"ncdc/internal/adapter/store"
	"ncdc/internal/domain"
	"ncdc/internal/port"
)

// newLogger builds the slog logger the usecases report through.
func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// loadCorpus reads a labeled corpus. A directory loads one subdirectory per
// label; anything else is treated as a CSV dataset.
func loadCorpus(path string, cfg *config.Config) (domain.Corpus, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("corpus path: %w", err)
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

// openLengthCache opens the persistent length cache under workDir, dropping
// its contents first when clear is set. The caller owns Close.
func openLengthCache(cfg *config.Config, workDir string, clear bool, logger *slog.Logger) (*store.BoltCache, error) {
	if err := config.EnsureWorkDir(workDir); err != nil {
		return nil, fmt.Errorf("failed to create .ncdc directory: %w", err)
	}
	stamp := store.CacheStamp(cfg.Compressor.Name, cfg.Compressor.Level)
	bc, err := store.NewBoltCache(cfg.CacheDBPath(workDir), stamp)
	if err != nil {
		return nil, fmt.Errorf("failed to open length cache: %w", err)
	}
	if clear {
		if err := bc.Clear(); err != nil {
			bc.Close()
			return nil, fmt.Errorf("failed to clear length cache: %w", err)
		}
	}
	if stored, err := bc.Stamp(); err == nil {
		n, _ := bc.Size()
		logger.Debug("length cache open", "stamp", stored, "entries", n)
	}
	return bc, nil
}

// newBuilder assembles the compressor, engine and distance builder from the
// config, opening the persistent length cache when enabled. The returned
// cleanup closes the cache.
func newBuilder(cfg *config.Config, workDir string) (*distance.Builder, func(), error) {
	comp, err := compressor.New(cfg.Compressor.Name, cfg.Compressor.Level)
	if err != nil {
		return nil, nil, err
	}
	engine := distance.NewEngine(comp)

	cleanup := func() {}
	var cache port.LengthCache
	if cfg.Cache.Enabled {
		bc, err := openLengthCache(cfg, workDir, clearCache, newLogger(cfg))
		if err != nil {
			return nil, nil, err
		}
		cache = bc
		cleanup = func() { bc.Close() }
	}

	return distance.NewBuilder(engine, cfg.Workers, cache), cleanup, nil
}

// newClassifier builds the voting classifier, letting command flags override
// the configured tie-break and seed.
func newClassifier(cfg *config.Config, tieBreakFlag string, seedFlag int64) (*classifier.Classifier[string], error) {
	name := cfg.Classify.TieBreak
	if tieBreakFlag != "" {
		name = tieBreakFlag
	}
	tb, err := classifier.ParseTieBreak(name)
	if err != nil {
		return nil, err
	}

	seed := cfg.Classify.Seed
	if seedFlag != 0 {
		seed = seedFlag
	}
	var rng *rand.Rand
	if seed != 0 {
		rng = rand.New(rand.NewSource(seed))
	}
	return classifier.New[string](tb, rng)
}

// pickK resolves the neighbour count, flag over config. Range checking stays
// with the classifier.
func pickK(cfg *config.Config, kFlag int) int {
	if kFlag > 0 {
		return kFlag
	}
	return cfg.Classify.K
}

// newProgressFunc renders a progress bar over the distance computations. The
// callback arrives from concurrent workers, so the bar sits behind a mutex.
func newProgressFunc(description string) port.ProgressFunc {
	var (
		mu          sync.Mutex
		bar         *progressbar.ProgressBar
		startTime   time.Time
		initialized bool
	)

	return func(done, total int) {
		mu.Lock()
		defer mu.Unlock()

		if !initialized {
			startTime = time.Now()
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowBytes(false),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]=[reset]",
					SaucerHead:    "[green]>[reset]",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
			initialized = true
		}

		bar.Set(done)

		if done > 0 {
			elapsed := time.Since(startTime)
			rate := float64(done) / elapsed.Seconds()
			remaining := total - done
			if rate > 0 {
				eta := time.Duration(float64(remaining)/rate) * time.Second
				bar.Describe(fmt.Sprintf("[cyan]%s[reset] ETA: %s", description, formatDuration(eta)))
			}
		}
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "<1s"
	}
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		m := int(d.Minutes())
		s := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%ds", m, s)
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%dh%dm", h, m)
}
