package compressor

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"ncdc/internal/domain"
)

func TestNewAllBackends(t *testing.T) {
	for _, name := range Names() {
		c, err := New(name, -1)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", name, err)
		}
		if c.Name() != name {
			t.Errorf("expected Name()=%q, got %q", name, c.Name())
		}
	}
}

func TestNewUnknownBackend(t *testing.T) {
	_, err := New("brotli", -1)
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if !strings.Contains(err.Error(), "brotli") {
		t.Errorf("error should name the backend, got %q", err.Error())
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New("gzip", 42); err == nil {
		t.Error("expected error for gzip level 42")
	}
	if _, err := New("zlib", 42); err == nil {
		t.Error("expected error for zlib level 42")
	}
}

func TestCompressedSizeDeterministic(t *testing.T) {
	text := "the quick brown fox jumps over the lazy dog, twice: " +
		"the quick brown fox jumps over the lazy dog"

	for _, name := range Names() {
		c, err := New(name, -1)
		if err != nil {
			t.Fatal(err)
		}

		first, err := c.CompressedSize(text)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if first <= 0 {
			t.Errorf("%s: expected positive length, got %d", name, first)
		}
		for i := 0; i < 5; i++ {
			n, err := c.CompressedSize(text)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if n != first {
				t.Errorf("%s: length changed between calls: %d then %d", name, first, n)
			}
		}
	}
}

func TestCompressedSizeEmptyInput(t *testing.T) {
	for _, name := range Names() {
		c, err := New(name, -1)
		if err != nil {
			t.Fatal(err)
		}
		n, err := c.CompressedSize("")
		if err != nil {
			t.Fatalf("%s: compressing empty string failed: %v", name, err)
		}
		if n <= 0 {
			t.Errorf("%s: expected framing overhead for empty input, got %d", name, n)
		}
	}
}

func TestCompressedSizeRedundancy(t *testing.T) {
	// A compressor useful for NCD must compress repetition well below the
	// raw length.
	c, err := New("gzip", -1)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("abcdefgh ", 200)
	n, err := c.CompressedSize(text)
	if err != nil {
		t.Fatal(err)
	}
	if n >= len(text)/4 {
		t.Errorf("expected strong compression of repeated text, got %d of %d bytes", n, len(text))
	}
}

func TestCompressedSizeConcurrent(t *testing.T) {
	c, err := New("gzip", -1)
	if err != nil {
		t.Fatal(err)
	}
	text := strings.Repeat("concurrent compression is still deterministic ", 20)
	want, err := c.CompressedSize(text)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make([]int, 32)
	for i := range results {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			n, err := c.CompressedSize(text)
			if err != nil {
				t.Errorf("concurrent call failed: %v", err)
				return
			}
			results[slot] = n
		}(i)
	}
	wg.Wait()

	for i, n := range results {
		if n != want {
			t.Errorf("slot %d: got %d, want %d", i, n, want)
		}
	}
}
