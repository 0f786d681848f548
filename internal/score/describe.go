package score

import (
	"math"
	"sort"

	"github.com/bluehealth/cooccur/internal/model"
)

// Describe returns summary statistics for every column of s: count, mean,
// sample standard deviation, min, quartiles and max. Quartiles use linear
// interpolation between closest ranks. The standard deviation of a column
// with fewer than two values is 0.
func Describe(s *model.ScoreMatrix) []model.ColumnStats {
	_, nB := s.Shape()
	stats := make([]model.ColumnStats, nB)
	for j := range nB {
		stats[j] = describeColumn(s.ColLabels[j], s.Column(j))
	}
	return stats
}

func describeColumn(label string, values []float64) model.ColumnStats {
	st := model.ColumnStats{Label: label, Count: len(values)}
	if len(values) == 0 {
		return st
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	st.Mean = sum / float64(len(sorted))

	if len(sorted) > 1 {
		var sq float64
		for _, v := range sorted {
			sq += (v - st.Mean) * (v - st.Mean)
		}
		st.Std = math.Sqrt(sq / float64(len(sorted)-1))
	}

	st.Min = sorted[0]
	st.Q25 = quantile(sorted, 0.25)
	st.Q50 = quantile(sorted, 0.50)
	st.Q75 = quantile(sorted, 0.75)
	st.Max = sorted[len(sorted)-1]
	return st
}

// quantile interpolates the q-th quantile of sorted values.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}
