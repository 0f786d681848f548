package provider

import (
	"context"
	"fmt"

	"github.com/bluehealth/cooccur/internal/model"
)

// OfflineProvider always fails. It is used when the run is configured to
// stay offline, so that every category yields a clearly-marked placeholder.
type OfflineProvider struct{}

// Collect returns a failed Result.
func (OfflineProvider) Collect(_ context.Context, _ Request) Result {
	return Failure(fmt.Errorf("%w: offline mode", ErrUnavailable))
}

// StaticProvider serves pre-computed counts keyed by nothing but shape.
// It fills an (nA, nB) matrix by calling Cell, Row and Col; nil functions
// yield zero. It is useful for smoke runs and tests.
type StaticProvider struct {
	Cell func(i, j int) int64
	Row  func(i int) int64
	Col  func(j int) int64
}

// Collect builds the matrix from the configured functions.
func (p StaticProvider) Collect(ctx context.Context, req Request) Result {
	if err := ctx.Err(); err != nil {
		return Failure(fmt.Errorf("%w: %w", ErrUnavailable, err))
	}

	m := model.NewCountsMatrix(req.A, req.B)
	m.Source = req.Source
	for i := range m.Counts {
		for j := range m.Counts[i] {
			if p.Cell != nil {
				m.Counts[i][j] = p.Cell(i, j)
			}
		}
		if p.Row != nil {
			m.MarginalA[i] = p.Row(i)
		}
	}
	for j := range m.MarginalB {
		if p.Col != nil {
			m.MarginalB[j] = p.Col(j)
		}
	}
	return Success(m)
}
