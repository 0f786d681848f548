// Package provider defines the boundary between the collection orchestrator
// and the external literature-count source.
//
// A provider either returns a populated CountsMatrix or a failure reason.
// The two outcomes are carried by Result rather than by a Go error so that
// the orchestrator branches on an explicit value: a failure here is an
// expected, non-fatal outcome that degrades to an offline placeholder.
package provider

import (
	"context"
	"errors"

	"github.com/bluehealth/cooccur/internal/model"
)

// ErrUnavailable marks transport and availability failures of a provider.
var ErrUnavailable = errors.New("counts provider unavailable")

// Request is what the orchestrator asks a provider for.
type Request struct {
	// A is the primary dimension.
	A model.Dimension

	// B is the secondary dimension. For the sentinel category it equals A.
	B model.Dimension

	// Source identifies the evidence database, e.g. "pubmed".
	Source string

	// RetMax bounds the evidence retrieved per query.
	RetMax int
}

// Result is the two-outcome reply of a provider: exactly one of Counts and
// Failure is set.
type Result struct {
	// Counts is the populated matrix on success.
	Counts *model.CountsMatrix

	// Failure is the reason the provider could not produce counts.
	Failure error
}

// Success wraps a populated matrix.
func Success(counts *model.CountsMatrix) Result {
	return Result{Counts: counts}
}

// Failure wraps a failure reason.
func Failure(reason error) Result {
	if reason == nil {
		reason = ErrUnavailable
	}
	return Result{Failure: reason}
}

// OK reports whether the result carries counts.
func (r Result) OK() bool {
	return r.Failure == nil && r.Counts != nil
}

// CountsProvider produces a co-occurrence matrix for two dimensions.
type CountsProvider interface {
	// Collect performs one synchronous collection. It never panics on
	// transport problems; it reports them as a failed Result.
	Collect(ctx context.Context, req Request) Result
}

// Func adapts an ordinary function to CountsProvider.
type Func func(ctx context.Context, req Request) Result

// Collect calls f.
func (f Func) Collect(ctx context.Context, req Request) Result {
	return f(ctx, req)
}
