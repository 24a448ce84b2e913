package classifier

import (
	"fmt"

	"ncdc/internal/domain"
)

// TieBreak selects how a tied k-nearest-neighbour vote is resolved.
type TieBreak string

const (
	// TieBreakRandom picks uniformly among the tied labels.
	TieBreakRandom TieBreak = "random"
	// TieBreakDecrement re-votes over a window shrunk one neighbour at a
	// time until a single label leads.
	TieBreakDecrement TieBreak = "decrement"
	// TieBreakMinTotal picks the tied label whose neighbours sit closest in
	// aggregate.
	TieBreakMinTotal TieBreak = "min_total"
)

// ParseTieBreak validates a tie-break identifier from config or a flag.
func ParseTieBreak(s string) (TieBreak, error) {
	switch tb := TieBreak(s); tb {
	case TieBreakRandom, TieBreakDecrement, TieBreakMinTotal:
		return tb, nil
	default:
		return "", fmt.Errorf("%w: unknown tie-break %q", domain.ErrInvalidArgument, s)
	}
}
