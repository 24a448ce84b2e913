// Package classifier assigns labels by majority vote over the k nearest
// reference samples of a distance vector. Labels are generic; the vote only
// ever compares them for equality.
package classifier

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"ncdc/internal/domain"
)

// Classifier votes over precomputed distance vectors. It is safe for
// concurrent use except under the random strategy, whose generator is
// unsynchronized.
type Classifier[L comparable] struct {
	tieBreak TieBreak
	rng      *rand.Rand
}

// New returns a classifier with the given tie-break strategy. rng feeds the
// random strategy only; nil means a clock-seeded generator.
func New[L comparable](tieBreak TieBreak, rng *rand.Rand) (*Classifier[L], error) {
	if _, err := ParseTieBreak(string(tieBreak)); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Classifier[L]{tieBreak: tieBreak, rng: rng}, nil
}

// Classify returns the winning label among the k references nearest by
// distance. distances and labels are index-aligned with the reference
// corpus. A tied vote is resolved by the configured strategy.
func (c *Classifier[L]) Classify(distances []float64, labels []L, k int) (L, error) {
	var zero L
	if err := validate(len(distances), len(labels), k); err != nil {
		return zero, err
	}

	order := argsort(distances)
	tied := mostCommon(order[:k], labels)
	if len(tied) == 1 {
		return tied[0], nil
	}

	switch c.tieBreak {
	case TieBreakRandom:
		return tied[c.rng.Intn(len(tied))], nil
	case TieBreakDecrement:
		return decrement(order, labels, k), nil
	case TieBreakMinTotal:
		return minTotal(order[:k], distances, labels, tied), nil
	}
	return zero, fmt.Errorf("%w: unknown tie-break %q", domain.ErrInvalidArgument, c.tieBreak)
}

// ClassifyMulti returns every label tied for the most votes in the k-window,
// in first-occurrence order, without tie-breaking. The result always holds at
// least one label.
func (c *Classifier[L]) ClassifyMulti(distances []float64, labels []L, k int) ([]L, error) {
	if err := validate(len(distances), len(labels), k); err != nil {
		return nil, err
	}
	order := argsort(distances)
	return mostCommon(order[:k], labels), nil
}

// Neighbours returns the indices of the k smallest distances in ascending
// distance order. Equal distances keep ascending index order. k is clamped
// to [0, len(distances)].
func Neighbours(distances []float64, k int) []int {
	order := argsort(distances)
	if k < 0 {
		k = 0
	}
	if k > len(order) {
		k = len(order)
	}
	return order[:k]
}

func validate(nDistances, nLabels, k int) error {
	if nDistances != nLabels {
		return fmt.Errorf("%w: %d distances for %d labels", domain.ErrInvalidArgument, nDistances, nLabels)
	}
	if k < 1 || k > nLabels {
		return fmt.Errorf("%w: k=%d outside [1, %d]", domain.ErrInvalidArgument, k, nLabels)
	}
	return nil
}

// argsort returns indices ordered by ascending distance. The sort is stable,
// so equal distances keep their original index order.
func argsort(distances []float64) []int {
	order := make([]int, len(distances))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return distances[order[a]] < distances[order[b]]
	})
	return order
}

// mostCommon returns every label carrying the maximum vote count within the
// window, in first-occurrence order.
func mostCommon[L comparable](window []int, labels []L) []L {
	counts := make(map[L]int, len(window))
	seen := make([]L, 0, len(window))
	for _, idx := range window {
		l := labels[idx]
		if counts[l] == 0 {
			seen = append(seen, l)
		}
		counts[l]++
	}

	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}

	tied := make([]L, 0, len(seen))
	for _, l := range seen {
		if counts[l] == max {
			tied = append(tied, l)
		}
	}
	return tied
}

// decrement re-votes over progressively smaller prefixes of the same sorted
// order. A window of one is always a singleton, so the loop terminates.
func decrement[L comparable](order []int, labels []L, k int) L {
	for kk := k - 1; kk >= 1; kk-- {
		if tied := mostCommon(order[:kk], labels); len(tied) == 1 {
			return tied[0]
		}
	}
	// not reached: a window of one is a singleton
	return labels[order[0]]
}

// minTotal sums, per tied label, the distances of that label's members inside
// the original window and keeps the smallest total. An exact tie between
// totals keeps the first tied label in window order.
func minTotal[L comparable](window []int, distances []float64, labels []L, tied []L) L {
	inTie := make(map[L]bool, len(tied))
	for _, l := range tied {
		inTie[l] = true
	}

	totals := make(map[L]float64, len(tied))
	for _, idx := range window {
		if l := labels[idx]; inTie[l] {
			totals[l] += distances[idx]
		}
	}

	best := tied[0]
	for _, l := range tied[1:] {
		if totals[l] < totals[best] {
			best = l
		}
	}
	return best
}
