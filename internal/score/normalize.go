package score

import (
	"errors"
	"fmt"

	"github.com/bluehealth/cooccur/internal/model"
)

// Score methods.
const (
	// MethodNormalize divides each count by the A-term marginal:
	// score[i][j] = counts[i][j] / marginalA[i].
	MethodNormalize = "normalize"

	// MethodAssociation is a Jaccard-style index:
	// score[i][j] = counts[i][j] / (marginalA[i] + marginalB[j] - counts[i][j]).
	MethodAssociation = "association"
)

// ErrUnknownMethod is returned for an unsupported score method.
var ErrUnknownMethod = errors.New("unknown score method")

// Methods lists the supported score methods.
func Methods() []string {
	return []string{MethodNormalize, MethodAssociation}
}

// IsMethod reports whether method is supported.
func IsMethod(method string) bool {
	for _, m := range Methods() {
		if m == method {
			return true
		}
	}
	return false
}

// Normalize computes the score matrix of m with the given method.
// A zero denominator yields a score of 0. The result has the shape of m
// and carries its display labels.
func Normalize(m *model.CountsMatrix, method string) (*model.ScoreMatrix, error) {
	var cell func(c, ma, mb int64) float64
	switch method {
	case MethodNormalize:
		cell = func(c, ma, _ int64) float64 {
			return ratio(c, ma)
		}
	case MethodAssociation:
		cell = func(c, ma, mb int64) float64 {
			return ratio(c, ma+mb-c)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}

	scores := make([][]float64, len(m.Counts))
	for i, row := range m.Counts {
		scores[i] = make([]float64, len(row))
		for j, c := range row {
			scores[i][j] = cell(c, m.MarginalA[i], m.MarginalB[j])
		}
	}

	return &model.ScoreMatrix{
		Method:    method,
		RowLabels: m.A.DisplayLabels(),
		ColLabels: m.B.DisplayLabels(),
		Scores:    scores,
	}, nil
}

func ratio(num, den int64) float64 {
	if den <= 0 {
		return 0
	}
	return float64(num) / float64(den)
}
