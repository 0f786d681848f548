package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bluehealth/cooccur/internal/model"
)

// BatchProcessor runs a pipeline over many categories.
//
// Design decision: We use a separate BatchProcessor rather than adding batch
// functionality to Pipeline because it keeps the Pipeline focused on one
// category and lets each category get a fresh pipeline instance.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each category.
	pipelineFactory func() *Pipeline

	// factors is dimension A, shared read-only by every run.
	factors *model.Dimension

	// concurrency is the maximum number of categories in flight.
	// It defaults to 1: categories run one at a time in order.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of categories in flight.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithFactors sets the shared dimension A handed to every run.
func WithFactors(a *model.Dimension) BatchOption {
	return func(b *BatchProcessor) {
		b.factors = a
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each category to create a
// fresh pipeline instance, so that step state doesn't leak between runs.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     1,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs every category and returns one run per category, in
// input order. A category that fails records its error on its run; the
// batch carries on with the next one. Categories not started because the
// context was cancelled get a run carrying the context error.
//
// The returned error is non-nil only when the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, categories []model.Category) ([]*model.CategoryRun, error) {
	results := make([]*model.CategoryRun, len(categories))
	var mu sync.Mutex

	err := bp.ProcessBatchWithCallback(ctx, categories, func(run *model.CategoryRun, index int) {
		mu.Lock()
		results[index] = run
		mu.Unlock()
	})

	for i, run := range results {
		if run == nil {
			cause := context.Cause(ctx)
			if cause == nil {
				cause = context.Canceled
			}
			run = model.NewCategoryRun(categories[i], bp.factors)
			recordError(run, cause)
			results[i] = run
		}
	}

	return results, err
}

// ProcessBatchWithCallback runs every category and calls callback with
// each finished run and its index in categories. With the default
// concurrency of 1 the callback sees the categories in order.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	categories []model.Category,
	callback func(run *model.CategoryRun, index int),
) error {
	bp.logger.Info("starting batch processing",
		"categories", len(categories),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, category := range categories {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			bp.logger.Info("processing category",
				"category", category.DisplayName(),
				"index", i+1,
				"total", len(categories),
			)

			run := model.NewCategoryRun(category, bp.factors)
			if err := bp.pipelineFactory().Execute(gctx, run); err != nil {
				bp.logger.Warn("category failed",
					"category", category.DisplayName(),
					"error", err,
				)
			}

			callback(run, i)

			// Errors stay on the run so the remaining categories still run.
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch processing complete",
		"categories", len(categories),
		"elapsed", time.Since(startTime),
	)

	return err
}
