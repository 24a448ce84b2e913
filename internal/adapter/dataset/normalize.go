// Package dataset loads labeled corpora from CSV files or from directory
// trees with one subdirectory per label. Both loaders normalize text the same
// way and support reproducible per-label subsampling.
package dataset

import (
	"math/rand"
	"strings"

	"ncdc/internal/domain"
)

// Options control cleanup and reduction applied after loading.
type Options struct {
	Lowercase  bool
	MaxChars   int   // truncate each text to this many runes, 0 = unlimited
	PerLabel   int   // keep at most this many samples per label, 0 = all
	SampleSeed int64 // shuffle seed for the per-label cap
}

// Normalize collapses whitespace runs to single spaces and trims the ends,
// then applies the optional lowercase and truncation steps. Compressed
// lengths are sensitive to formatting noise, so every text entering a
// distance computation should pass through here; both loaders do.
func Normalize(text string, opts Options) string {
	text = strings.Join(strings.Fields(text), " ")
	if opts.Lowercase {
		text = strings.ToLower(text)
	}
	if opts.MaxChars > 0 {
		text = truncateRunes(text, opts.MaxChars)
	}
	return text
}

func truncateRunes(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// samplePerLabel keeps at most perLabel samples of each label, chosen by a
// seeded shuffle so a fixed seed always selects the same subset. The
// surviving samples keep their original corpus order.
func samplePerLabel(c domain.Corpus, perLabel int, seed int64) domain.Corpus {
	if perLabel <= 0 {
		return c
	}

	byLabel := make(map[string][]int)
	var labelOrder []string
	for i, s := range c {
		if _, seen := byLabel[s.Label]; !seen {
			labelOrder = append(labelOrder, s.Label)
		}
		byLabel[s.Label] = append(byLabel[s.Label], i)
	}

	rng := rand.New(rand.NewSource(seed))
	keep := make(map[int]bool, len(c))
	for _, label := range labelOrder {
		idxs := byLabel[label]
		rng.Shuffle(len(idxs), func(a, b int) {
			idxs[a], idxs[b] = idxs[b], idxs[a]
		})
		n := perLabel
		if n > len(idxs) {
			n = len(idxs)
		}
		for _, i := range idxs[:n] {
			keep[i] = true
		}
	}

	out := make(domain.Corpus, 0, len(keep))
	for i, s := range c {
		if keep[i] {
			out = append(out, s)
		}
	}
	return out
}
