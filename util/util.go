package util

import (
	"golang.org/x/exp/constraints"
)

// ProgressFunc is told how many of total items are done. A nil ProgressFunc
// reports nothing.
type ProgressFunc func(done, total int)

func (p ProgressFunc) Report(done, total int) {
	if p != nil {
		p(done, total)
	}
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}

// ArgMax returns the index of the first largest value, or -1 when empty.
func ArgMax[A constraints.Ordered](values []A) int {
	if len(values) == 0 {
		return -1
	}
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
