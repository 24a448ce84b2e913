package distance

import (
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"ncdc/internal/adapter/cache"
	"ncdc/internal/adapter/compressor"
	"ncdc/internal/domain"
	"ncdc/internal/port"
)

var refTexts = []string{
	"the market rallied as tech stocks surged to record highs",
	"the home team clinched the championship in extra time",
	"scientists reported a breakthrough in battery chemistry",
	"the central bank held interest rates steady this quarter",
	"the striker scored twice in the second half",
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	c, err := compressor.New("gzip", -1)
	if err != nil {
		t.Fatal(err)
	}
	return NewEngine(c)
}

func TestDistanceEntryPointsAgree(t *testing.T) {
	e := newTestEngine(t)
	a := "compression distance treats similarity as shared structure"
	for _, b := range refTexts {
		d1, err := e.Distance(a, b)
		if err != nil {
			t.Fatal(err)
		}

		la, err := e.Length(a)
		if err != nil {
			t.Fatal(err)
		}
		d2, err := e.DistanceWithLength(a, la, b)
		if err != nil {
			t.Fatal(err)
		}

		lb, err := e.Length(b)
		if err != nil {
			t.Fatal(err)
		}
		d3, err := e.DistanceWithLengths(a, la, b, lb)
		if err != nil {
			t.Fatal(err)
		}

		if d1 != d2 || d2 != d3 {
			t.Errorf("entry points disagree for %q: %v %v %v", b, d1, d2, d3)
		}
	}
}

func TestDistanceSimilarTextsAreCloser(t *testing.T) {
	e := newTestEngine(t)
	a := strings.Repeat("rates held steady as inflation cooled ", 20)
	b := strings.Repeat("the visiting side won on penalties after extra time ", 20)

	self, err := e.Distance(a, a)
	if err != nil {
		t.Fatal(err)
	}
	cross, err := e.Distance(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if self >= cross {
		t.Errorf("expected d(a,a)=%v < d(a,b)=%v", self, cross)
	}
	if self < 0 || cross > 1.5 {
		t.Errorf("distances out of plausible range: %v %v", self, cross)
	}
}

func TestDistanceEmptyInputs(t *testing.T) {
	e := newTestEngine(t)
	// Degenerate but defined: framing overhead keeps lengths positive.
	if _, err := e.Distance("", ""); err != nil {
		t.Fatalf("empty inputs should not fail: %v", err)
	}
	if _, err := e.Distance("", "some text"); err != nil {
		t.Fatalf("one empty input should not fail: %v", err)
	}
}

func TestVectorMatchesDistance(t *testing.T) {
	e := newTestEngine(t)
	b := NewBuilder(e, 4, nil)
	text := "stocks slid after the rate decision"

	vec, err := b.Vector(text, refTexts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(vec) != len(refTexts) {
		t.Fatalf("expected %d distances, got %d", len(refTexts), len(vec))
	}
	for i, ref := range refTexts {
		want, err := e.Distance(text, ref)
		if err != nil {
			t.Fatal(err)
		}
		if vec[i] != want {
			t.Errorf("vec[%d]=%v, Distance=%v", i, vec[i], want)
		}
	}
}

func TestMatrixColumnsMatchVector(t *testing.T) {
	e := newTestEngine(t)
	b := NewBuilder(e, 3, nil)
	tests := []string{
		"the index closed lower on profit taking",
		"a late goal sealed the derby",
	}

	m, err := b.Matrix(tests, refTexts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if m.Rows != len(refTexts) || m.Cols != len(tests) {
		t.Fatalf("expected %dx%d matrix, got %dx%d", len(refTexts), len(tests), m.Rows, m.Cols)
	}

	for j, text := range tests {
		vec, err := b.Vector(text, refTexts, nil)
		if err != nil {
			t.Fatal(err)
		}
		col := m.Column(j)
		for i := range vec {
			if col[i] != vec[i] {
				t.Errorf("column %d row %d: matrix=%v vector=%v", j, i, col[i], vec[i])
			}
		}
	}
}

func TestWorkerCountDoesNotChangeResults(t *testing.T) {
	e := newTestEngine(t)
	tests := []string{"battery research update", "cup final report"}

	var base domain.DistanceMatrix
	for _, workers := range []int{0, 1, 2, 8} {
		m, err := NewBuilder(e, workers, nil).Matrix(tests, refTexts, nil)
		if err != nil {
			t.Fatal(err)
		}
		if base.Data == nil {
			base = m
			continue
		}
		for i := range m.Data {
			if m.Data[i] != base.Data[i] {
				t.Fatalf("workers=%d: element %d differs: %v vs %v", workers, i, m.Data[i], base.Data[i])
			}
		}
	}
}

func TestBuilderEmptyInputs(t *testing.T) {
	b := NewBuilder(newTestEngine(t), 1, nil)

	if _, err := b.Vector("text", nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Vector with no refs: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := b.Matrix(nil, refTexts, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Matrix with no tests: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := b.Matrix([]string{"t"}, nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("Matrix with no refs: expected ErrInvalidArgument, got %v", err)
	}
}

func TestMatrixProgress(t *testing.T) {
	b := NewBuilder(newTestEngine(t), 1, nil)
	tests := []string{"one", "two", "three"}

	var calls int
	var lastDone, lastTotal int
	_, err := b.Matrix(tests, refTexts, func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	})
	if err != nil {
		t.Fatal(err)
	}

	wantTotal := len(refTexts) + len(tests)
	if calls != wantTotal {
		t.Errorf("expected %d progress calls, got %d", wantTotal, calls)
	}
	if lastDone != wantTotal || lastTotal != wantTotal {
		t.Errorf("expected final progress %d/%d, got %d/%d", wantTotal, wantTotal, lastDone, lastTotal)
	}
}

type failingCompressor struct{}

func (failingCompressor) Name() string { return "failing" }

func (failingCompressor) CompressedSize(string) (int, error) {
	return 0, errors.New("backend exploded")
}

func TestComputationFailurePropagates(t *testing.T) {
	e := NewEngine(failingCompressor{})

	if _, err := e.Distance("a", "b"); !errors.Is(err, domain.ErrComputation) {
		t.Errorf("Distance: expected ErrComputation, got %v", err)
	}

	b := NewBuilder(e, 2, nil)
	if _, err := b.Vector("a", refTexts, nil); !errors.Is(err, domain.ErrComputation) {
		t.Errorf("Vector: expected ErrComputation, got %v", err)
	}
	if _, err := b.Matrix([]string{"a"}, refTexts, nil); !errors.Is(err, domain.ErrComputation) {
		t.Errorf("Matrix: expected ErrComputation, got %v", err)
	}
}

// countingCache records hits and misses so tests can observe consultation.
type countingCache struct {
	mu     sync.Mutex
	sizes  map[string]int
	hits   int
	misses int
}

func newCountingCache() *countingCache {
	return &countingCache{sizes: make(map[string]int)}
}

func (c *countingCache) Get(text string) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.sizes[text]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return n, ok
}

func (c *countingCache) Put(text string, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sizes[text] = size
}

func TestLengthCacheDoesNotChangeResults(t *testing.T) {
	e := newTestEngine(t)
	tests := []string{"cache me once", "cache me twice"}

	plain, err := NewBuilder(e, 2, nil).Matrix(tests, refTexts, nil)
	if err != nil {
		t.Fatal(err)
	}

	cc := newCountingCache()
	cached := NewBuilder(e, 2, cc)

	first, err := cached.Matrix(tests, refTexts, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := cached.Matrix(tests, refTexts, nil)
	if err != nil {
		t.Fatal(err)
	}

	for i := range plain.Data {
		if first.Data[i] != plain.Data[i] || second.Data[i] != plain.Data[i] {
			t.Fatalf("cached results differ at element %d", i)
		}
	}

	cc.mu.Lock()
	hits, misses := cc.hits, cc.misses
	cc.mu.Unlock()
	wantMisses := len(refTexts) + len(tests)
	if misses != wantMisses {
		t.Errorf("expected %d misses (first run only), got %d", wantMisses, misses)
	}
	if hits != wantMisses {
		t.Errorf("expected %d hits (second run), got %d", wantMisses, hits)
	}
}

// countingCompressor wraps a real backend and counts CompressedSize calls.
type countingCompressor struct {
	inner port.Compressor
	calls atomic.Int64
}

func (c *countingCompressor) Name() string { return c.inner.Name() }

func (c *countingCompressor) CompressedSize(text string) (int, error) {
	c.calls.Add(1)
	return c.inner.CompressedSize(text)
}

func TestInMemoryCacheAvoidsRecompression(t *testing.T) {
	base, err := compressor.New("gzip", -1)
	if err != nil {
		t.Fatal(err)
	}
	cc := &countingCompressor{inner: base}
	b := NewBuilder(NewEngine(cc), 1, cache.NewLengthCache(0))
	text := "rates were left unchanged at the quarterly meeting"

	first, err := b.Vector(text, refTexts, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Cold cache: the text, every reference, and one joint per reference.
	if want := int64(2*len(refTexts) + 1); cc.calls.Load() != want {
		t.Errorf("cold run: expected %d compressions, got %d", want, cc.calls.Load())
	}

	cc.calls.Store(0)
	second, err := b.Vector(text, refTexts, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Warm cache: only the joint compressions remain.
	if want := int64(len(refTexts)); cc.calls.Load() != want {
		t.Errorf("warm run: expected %d compressions, got %d", want, cc.calls.Load())
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("distance %d changed between runs: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestEngineExposesBackend(t *testing.T) {
	c, err := compressor.New("zstd", -1)
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(c)
	if e.Compressor() != c {
		t.Error("engine should hand back the backend it wraps")
	}
	if got := e.Compressor().Name(); got != "zstd" {
		t.Errorf("backend name: got %q", got)
	}
}
