package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Certainty is an integer percent in [-100, 100]: +100 full affirmation,
// -100 full negation, 0 full uncertainty. Ordering is standard integer
// order (spec §3).
type Certainty int8

// NewCertainty validates and constructs a Certainty from a percent value.
func NewCertainty(percent int) (Certainty, error) {
	if percent < -100 || percent > 100 {
		return 0, fmt.Errorf("certainty %d%% out of range [-100, 100]", percent)
	}
	return Certainty(percent), nil
}

// ParseCertainty parses the grammar's certainty token ("72%", "-100%") or
// the lossless text form produced by String, into a Certainty.
func ParseCertainty(s string) (Certainty, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	percent, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("invalid certainty literal %q: %w", s, err)
	}
	return NewCertainty(percent)
}

func (c Certainty) TypeId() TypeId { return TypeCertainty }

func (c Certainty) String() string { return fmt.Sprintf("%d%%", int(c)) }

// Compare implements the standard integer ordering used by WHERE predicates.
func (c Certainty) Compare(other Certainty) int {
	switch {
	case c < other:
		return -1
	case c > other:
		return 1
	default:
		return 0
	}
}
