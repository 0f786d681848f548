package score

import (
	"sort"

	"github.com/bluehealth/cooccur/internal/model"
)

// DefaultDropCount is the number of rows and columns dropped by default.
const DefaultDropCount = 100

// ClampDrop returns the number of rows and columns that may actually be
// dropped from an (nA, nB) matrix: min(requested, nA-1, nB-1), never
// negative. At least one row and one column always survive.
func ClampDrop(requested, nA, nB int) int {
	d := min(requested, nA-1, nB-1)
	if d < 0 {
		return 0
	}
	return d
}

// Drop removes the d rows and d columns with the lowest marginals, where d
// is ClampDrop(requested, nA, nB). Ties are broken by index: the earlier
// row or column goes first. Terms, labels, exclusions and marginals are
// removed together with their counts.
//
// Drop returns the filtered matrix and d. When d is 0, m itself is
// returned.
func Drop(m *model.CountsMatrix, requested int) (*model.CountsMatrix, int) {
	nA, nB := m.Shape()
	d := ClampDrop(requested, nA, nB)
	if d == 0 {
		return m, 0
	}
	return m.Without(lowest(m.MarginalA, d), lowest(m.MarginalB, d)), d
}

// lowest returns the indices of the n smallest values.
func lowest(values []int64, n int) map[int]bool {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return values[idx[x]] < values[idx[y]]
	})

	out := make(map[int]bool, n)
	for _, i := range idx[:n] {
		out[i] = true
	}
	return out
}
