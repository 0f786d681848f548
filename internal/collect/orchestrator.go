package collect

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/provider"
)

// DefaultSource is the evidence database asked for counts.
const DefaultSource = "pubmed"

// Orchestrator drives the collection of one category at a time.
type Orchestrator struct {
	// provider supplies the counts.
	provider provider.CountsProvider

	// source identifies the evidence database.
	source string

	// retmax is forwarded to the provider.
	retmax int

	// now stamps CollectedAt. Overridable in tests.
	now func() time.Time

	// logger for structured logging.
	logger *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSource sets the evidence database.
func WithSource(source string) Option {
	return func(o *Orchestrator) {
		if source != "" {
			o.source = source
		}
	}
}

// WithRetMax sets the retrieval bound forwarded to the provider.
func WithRetMax(retmax int) Option {
	return func(o *Orchestrator) {
		o.retmax = retmax
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an Orchestrator around p.
func NewOrchestrator(p provider.CountsProvider, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		provider: p,
		source:   DefaultSource,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Collect requests the counts for category cat with factors a and
// category terms b. For a category without a secondary dimension b is
// ignored and the A x A matrix is requested.
//
// Collect never fails: when the provider reports a failure, or returns a
// matrix that does not match the requested shape, an offline placeholder
// is returned instead.
func (o *Orchestrator) Collect(ctx context.Context, cat model.Category, a, b model.Dimension) *model.CountsMatrix {
	if !cat.HasSecondary() {
		b = a
	}

	req := provider.Request{
		A:      a,
		B:      b,
		Source: o.source,
		RetMax: o.retmax,
	}

	result := o.provider.Collect(ctx, req)
	counts := result.Counts
	failure := result.Failure
	if failure == nil {
		failure = checkResult(counts, a.Len(), b.Len())
	}

	if failure != nil {
		o.logger.Warn("counts collection failed, using offline placeholder",
			"category", cat.DisplayName(),
			"error", failure,
		)
		counts = model.NewPlaceholder(a, b, failure)
	} else {
		// The provider may have echoed different dimension values; keep ours.
		counts.A = a
		counts.B = b
	}

	counts.Category = cat.DisplayName()
	if counts.Source == "" {
		counts.Source = o.source
	}
	counts.CollectedAt = o.now().UTC().Truncate(time.Second)

	nA, nB := counts.Shape()
	o.logger.Info("counts collected",
		"category", cat.DisplayName(),
		"mode", counts.Mode().String(),
		"rows", nA,
		"cols", nB,
	)
	return counts
}

// checkResult rejects a successful reply that cannot be used as-is.
func checkResult(m *model.CountsMatrix, nA, nB int) error {
	if m == nil {
		return fmt.Errorf("%w: provider returned no counts", provider.ErrUnavailable)
	}
	gotA, gotB := m.Shape()
	if gotA != nA || gotB != nB || len(m.Counts) != nA {
		return fmt.Errorf("%w: provider returned shape (%d,%d), want (%d,%d)",
			model.ErrShapeMismatch, gotA, gotB, nA, nB)
	}
	for _, row := range m.Counts {
		if len(row) != nB {
			return fmt.Errorf("%w: provider returned a ragged matrix", model.ErrShapeMismatch)
		}
		if slices.ContainsFunc(row, isNegative) {
			return fmt.Errorf("%w: provider returned a negative co-occurrence", model.ErrNegativeCount)
		}
	}
	if slices.ContainsFunc(m.MarginalA, isNegative) || slices.ContainsFunc(m.MarginalB, isNegative) {
		return fmt.Errorf("%w: provider returned a negative marginal", model.ErrNegativeCount)
	}
	if m.Metadata == nil {
		m.Metadata = model.CollectionMetadata{}
	}
	return nil
}

func isNegative(c int64) bool {
	return c < 0
}
