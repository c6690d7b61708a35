package earning

import (
	"errors"
	"math"
	"math/rand"
)

const (
	fullTurns       = 5
	probabilityDiff = 1e-9
)

type SpinOutcome struct {
	Value       int
	Probability float64
	Color       string
}

// SpinSelector draws an outcome with the configured probabilities. The
// outcomes are always visited in declaration order.
type SpinSelector struct {
	outcomes []SpinOutcome
	random   func() float64
}

// NewSpinSelector returns an error unless the probabilities are
// non-negative and sum to 1. random must return values in [0, 1), it
// defaults to math/rand.
func NewSpinSelector(outcomes []SpinOutcome, random func() float64) (*SpinSelector, error) {
	if len(outcomes) == 0 {
		return nil, errors.New("no spin outcome")
	}

	sum := 0.0
	for _, o := range outcomes {
		if o.Probability < 0 {
			return nil, errors.New("negative spin probability")
		}
		sum += o.Probability
	}

	if math.Abs(sum-1) > probabilityDiff {
		return nil, errors.New("spin probabilities must sum to 1")
	}

	if random == nil {
		random = rand.Float64
	}

	return &SpinSelector{outcomes: outcomes, random: random}, nil
}

func (s *SpinSelector) Outcomes() []SpinOutcome {
	return s.outcomes
}

// Select returns the first outcome whose cumulative probability is at least
// r. If rounding leaves r unmatched, the last outcome is selected.
func (s *SpinSelector) Select(r float64) (int, SpinOutcome) {
	cumulative := 0.0
	for i, o := range s.outcomes {
		cumulative += o.Probability
		if r <= cumulative {
			return i, o
		}
	}

	last := len(s.outcomes) - 1
	return last, s.outcomes[last]
}

func (s *SpinSelector) Spin() (int, SpinOutcome) {
	return s.Select(s.random())
}

// RotationTarget is the wheel rotation in degrees which lands the pointer on
// the middle of the segment at index after five full turns. Segments have
// equal sizes.
func (s *SpinSelector) RotationTarget(index int) float64 {
	segment := 360.0 / float64(len(s.outcomes))
	midAngle := float64(index)*segment + segment/2
	return fullTurns*360 + (360 - midAngle)
}
