// Package distance computes normalised compression distances (NCD) and
// batches them into vectors and matrices over a reference corpus.
//
// NCD approximates the information distance between two texts using a real
// compressor C:
//
//	NCD(a, b) = (C(a+" "+b) - min(C(a), C(b))) / max(C(a), C(b))
//
// where C(x) is the compressed byte length of x. Similar texts share
// structure the compressor exploits, pulling the joint length toward the
// smaller individual length and the distance toward zero.
package distance

import (
	"fmt"

	"ncdc/internal/domain"
	"ncdc/internal/port"
)

// separator joins the two texts before the joint compression. A single space
// keeps the boundary byte-identical to what the individual compressions saw
// around word boundaries.
const separator = " "

// Engine computes pairwise distances with one compressor backend. It is
// stateless beyond the backend and safe for concurrent use whenever the
// backend is.
type Engine struct {
	comp port.Compressor
}

// NewEngine returns an engine measuring lengths with comp.
func NewEngine(comp port.Compressor) *Engine {
	return &Engine{comp: comp}
}

// Compressor returns the backend the engine measures with.
func (e *Engine) Compressor() port.Compressor {
	return e.comp
}

// Length returns the compressed length of one text.
func (e *Engine) Length(text string) (int, error) {
	n, err := e.comp.CompressedSize(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrComputation, e.comp.Name(), err)
	}
	return n, nil
}

// Distance computes NCD(a, b), compressing a, b and their joined form.
//
// Every backend emits at least its framing bytes, so compressed lengths stay
// positive even for empty inputs and the denominator is never zero. Distances
// for near-empty inputs are dominated by that framing overhead; they are
// well defined, just not meaningful.
func (e *Engine) Distance(a, b string) (float64, error) {
	la, err := e.Length(a)
	if err != nil {
		return 0, err
	}
	return e.DistanceWithLength(a, la, b)
}

// DistanceWithLength computes NCD(a, b) reusing a's known compressed length la.
func (e *Engine) DistanceWithLength(a string, la int, b string) (float64, error) {
	lb, err := e.Length(b)
	if err != nil {
		return 0, err
	}
	return e.DistanceWithLengths(a, la, b, lb)
}

// DistanceWithLengths computes NCD(a, b) reusing both individual lengths.
// The joint length depends on the pair and is recomputed on every call.
func (e *Engine) DistanceWithLengths(a string, la int, b string, lb int) (float64, error) {
	lab, err := e.Length(a + separator + b)
	if err != nil {
		return 0, err
	}
	return ncd(la, lb, lab), nil
}

func ncd(la, lb, lab int) float64 {
	lo, hi := la, lb
	if lo > hi {
		lo, hi = hi, lo
	}
	return float64(lab-lo) / float64(hi)
}
