// Package rank extracts the top-K associations of a score matrix in both
// directions.
package rank

import (
	"sort"

	"github.com/bluehealth/cooccur/internal/model"
)

// DefaultK is the number of associations kept per anchor.
const DefaultK = 3

// TopK ranks s in both directions. For every row anchor (dimension A) it
// keeps the k highest-scoring columns, and for every column anchor
// (dimension B) the k highest-scoring rows. Exact ties keep matrix index
// order, so identical input always yields identical output. A k larger
// than the number of candidates keeps all of them; k <= 0 means DefaultK.
func TopK(s *model.ScoreMatrix, k int) *model.Rankings {
	if k <= 0 {
		k = DefaultK
	}
	nA, nB := s.Shape()

	r := &model.Rankings{
		K:    k,
		AToB: make([]model.AssociationList, nA),
		BToA: make([]model.AssociationList, nB),
	}
	for i := range nA {
		r.AToB[i] = rankLine(s.RowLabels[i], s.ColLabels, s.Scores[i], k)
	}
	for j := range nB {
		r.BToA[j] = rankLine(s.ColLabels[j], s.RowLabels, s.Column(j), k)
	}
	return r
}

// rankLine orders candidates by score, descending and stable.
func rankLine(anchor string, labels []string, scores []float64, k int) model.AssociationList {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return scores[idx[x]] > scores[idx[y]]
	})

	n := min(k, len(idx))
	list := model.AssociationList{
		Anchor:     anchor,
		Associated: make([]string, n),
		Scores:     make([]float64, n),
	}
	for r, i := range idx[:n] {
		list.Associated[r] = labels[i]
		list.Scores[r] = scores[i]
	}
	return list
}
