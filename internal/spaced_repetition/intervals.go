package spaced_repetition

import (
	"errors"
	"fmt"
)

// ErrInvalidPolicy is returned for empty policies or non-positive intervals
var ErrInvalidPolicy = errors.New("invalid interval policy")

// DefaultIntervals are the review gaps in days: 1, 3, 7, 15, 30
var DefaultIntervals = []int{1, 3, 7, 15, 30}

// IntervalPolicy is the fixed ordered sequence of day offsets between reviews.
// Index 0 is the gap from creation to the first review; index k is the gap
// after the k-th review.
type IntervalPolicy struct {
	days []int
}

// NewIntervalPolicy validates and copies the given intervals
func NewIntervalPolicy(days []int) (IntervalPolicy, error) {
	if len(days) == 0 {
		return IntervalPolicy{}, fmt.Errorf("%w: no intervals", ErrInvalidPolicy)
	}
	for i, d := range days {
		if d <= 0 {
			return IntervalPolicy{}, fmt.Errorf("%w: interval %d is %d days", ErrInvalidPolicy, i, d)
		}
	}
	return IntervalPolicy{days: append([]int(nil), days...)}, nil
}

// DefaultPolicy returns the policy built from DefaultIntervals
func DefaultPolicy() IntervalPolicy {
	return IntervalPolicy{days: append([]int(nil), DefaultIntervals...)}
}

// Len returns the number of reviews needed to exhaust the policy
func (p IntervalPolicy) Len() int {
	return len(p.days)
}

// Gap returns the interval at index k and whether it exists
func (p IntervalPolicy) Gap(k int) (int, bool) {
	if k < 0 || k >= len(p.days) {
		return 0, false
	}
	return p.days[k], true
}

// Days returns a copy of the intervals
func (p IntervalPolicy) Days() []int {
	return append([]int(nil), p.days...)
}
