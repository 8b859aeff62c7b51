package slidingwindow

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// percentile returns the value at position p (0..1) of xs in sorted order,
// using nearest-rank interpolation. xs is copied before sorting. Generic
// over constraints.Ordered so the same helper serves latency (float64)
// samples without hard-coding a numeric type.
func percentile[T constraints.Ordered](xs []T, p float64) T {
	if len(xs) == 0 {
		var zero T
		return zero
	}
	sorted := append([]T(nil), xs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
