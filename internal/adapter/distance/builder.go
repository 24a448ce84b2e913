package distance

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"ncdc/internal/domain"
	"ncdc/internal/port"
)

// Builder fans pairwise distance computations out across a bounded worker
// pool. Every worker writes only its own output slot, so the result is
// identical for any worker count and completion order.
type Builder struct {
	engine  *Engine
	workers int
	cache   port.LengthCache
}

// NewBuilder returns a builder over engine. workers <= 0 means GOMAXPROCS.
// cache may be nil; it only ever short-circuits individual length
// computations, never joint ones.
func NewBuilder(engine *Engine, workers int, cache port.LengthCache) *Builder {
	return &Builder{engine: engine, workers: workers, cache: cache}
}

// Vector computes the distance from text to every reference sample.
// vec[i] equals Engine.Distance(text, refs[i]). onProgress, when non-nil, is
// called once per completed reference with (done, len(refs)).
func (b *Builder) Vector(text string, refs []string, onProgress port.ProgressFunc) (domain.DistanceVector, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: empty reference corpus", domain.ErrInvalidArgument)
	}

	tlen, err := b.length(text)
	if err != nil {
		return nil, err
	}

	vec := make(domain.DistanceVector, len(refs))
	var done atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(b.limit())
	for i := range refs {
		i := i
		g.Go(func() error {
			rlen, err := b.length(refs[i])
			if err != nil {
				return err
			}
			d, err := b.engine.DistanceWithLengths(text, tlen, refs[i], rlen)
			if err != nil {
				return err
			}
			vec[i] = d
			if onProgress != nil {
				onProgress(int(done.Add(1)), len(refs))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vec, nil
}

// Matrix computes the full refs x tests distance grid in two phases: first
// every reference length once, then one column per test sample reusing those
// lengths. The barrier between the phases guarantees phase 2 only reads
// completed lengths. Progress counts one unit per reference length and one
// per finished column, len(refs)+len(tests) units in total.
func (b *Builder) Matrix(tests, refs []string, onProgress port.ProgressFunc) (domain.DistanceMatrix, error) {
	if len(tests) == 0 {
		return domain.DistanceMatrix{}, fmt.Errorf("%w: empty test set", domain.ErrInvalidArgument)
	}
	if len(refs) == 0 {
		return domain.DistanceMatrix{}, fmt.Errorf("%w: empty reference corpus", domain.ErrInvalidArgument)
	}

	total := len(refs) + len(tests)
	var done atomic.Int64

	rlens := make([]int, len(refs))
	g := new(errgroup.Group)
	g.SetLimit(b.limit())
	for i := range refs {
		i := i
		g.Go(func() error {
			n, err := b.length(refs[i])
			if err != nil {
				return err
			}
			rlens[i] = n
			if onProgress != nil {
				onProgress(int(done.Add(1)), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.DistanceMatrix{}, err
	}

	m := domain.NewDistanceMatrix(len(refs), len(tests))
	g = new(errgroup.Group)
	g.SetLimit(b.limit())
	for j := range tests {
		j := j
		g.Go(func() error {
			tlen, err := b.length(tests[j])
			if err != nil {
				return err
			}
			col := m.Column(j)
			for i := range refs {
				d, err := b.engine.DistanceWithLengths(tests[j], tlen, refs[i], rlens[i])
				if err != nil {
					return err
				}
				col[i] = d
			}
			if onProgress != nil {
				onProgress(int(done.Add(1)), total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.DistanceMatrix{}, err
	}
	return m, nil
}

// length resolves one text's compressed length through the cache when one is
// configured.
func (b *Builder) length(text string) (int, error) {
	if b.cache != nil {
		if n, ok := b.cache.Get(text); ok {
			return n, nil
		}
	}
	n, err := b.engine.Length(text)
	if err != nil {
		return 0, err
	}
	if b.cache != nil {
		b.cache.Put(text, n)
	}
	return n, nil
}

func (b *Builder) limit() int {
	if b.workers > 0 {
		return b.workers
	}
	return runtime.GOMAXPROCS(0)
}
