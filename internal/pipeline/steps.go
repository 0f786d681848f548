package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bluehealth/cooccur/internal/artifact"
	"github.com/bluehealth/cooccur/internal/collect"
	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/rank"
	"github.com/bluehealth/cooccur/internal/report"
	"github.com/bluehealth/cooccur/internal/score"
)

// ErrMissingInput is returned when a step runs before the step that
// produces its input.
var ErrMissingInput = errors.New("step input missing")

// HistoryRecorder stores run history. *database.HistoryDB implements it.
type HistoryRecorder interface {
	RecordCollection(ctx context.Context, run *model.CategoryRun) (string, error)
	RecordAnalysis(ctx context.Context, run *model.CategoryRun) (string, error)
}

// SecondaryTermsStep loads dimension B of the run's category from
// "<terms dir>/<label>.txt". Categories without a secondary dimension reuse
// dimension A. In smoke mode the built-in dataset is used instead of files.
type SecondaryTermsStep struct {
	termsDir string
	smoke    bool
	logger   *slog.Logger
}

// NewSecondaryTermsStep creates a SecondaryTermsStep.
func NewSecondaryTermsStep(termsDir string, smoke bool, logger *slog.Logger) *SecondaryTermsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &SecondaryTermsStep{termsDir: termsDir, smoke: smoke, logger: logger}
}

// Name returns the step name.
func (s *SecondaryTermsStep) Name() string {
	return "secondary_terms"
}

// Do executes the step.
func (s *SecondaryTermsStep) Do(_ context.Context, run *model.CategoryRun) error {
	if run.A == nil {
		return fmt.Errorf("%w: factors not loaded", ErrMissingInput)
	}

	switch {
	case !run.Category.HasSecondary():
		run.B = run.A
	case s.smoke:
		b := collect.SmokeSecondary()
		run.B = &b
	default:
		b, err := collect.AssembleDimension(collect.DimensionFiles{
			Terms: filepath.Join(s.termsDir, run.Category.TermsFile()),
		}, s.logger)
		if err != nil {
			return fmt.Errorf("category %s: %w", run.Category.DisplayName(), err)
		}
		run.B = &b
	}
	return nil
}

// CollectStep asks the orchestrator for the run's counts matrix.
// It never fails on provider problems; those yield a placeholder.
type CollectStep struct {
	orchestrator *collect.Orchestrator
}

// NewCollectStep creates a CollectStep.
func NewCollectStep(o *collect.Orchestrator) *CollectStep {
	return &CollectStep{orchestrator: o}
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return "collect_counts"
}

// Do executes the step.
func (s *CollectStep) Do(ctx context.Context, run *model.CategoryRun) error {
	if run.A == nil {
		return fmt.Errorf("%w: factors not loaded", ErrMissingInput)
	}
	b := run.A
	if run.B != nil {
		b = run.B
	}
	run.Counts = s.orchestrator.Collect(ctx, run.Category, *run.A, *b)
	return nil
}

// SaveArtifactStep persists the run's counts as "<dir>/<artifact>.json".
type SaveArtifactStep struct {
	dir string
}

// NewSaveArtifactStep creates a SaveArtifactStep.
func NewSaveArtifactStep(dir string) *SaveArtifactStep {
	return &SaveArtifactStep{dir: dir}
}

// Name returns the step name.
func (s *SaveArtifactStep) Name() string {
	return "save_artifact"
}

// Do executes the step.
func (s *SaveArtifactStep) Do(_ context.Context, run *model.CategoryRun) error {
	if run.Counts == nil {
		return fmt.Errorf("%w: no counts to save", ErrMissingInput)
	}
	path, err := artifact.Save(run.Counts, s.dir, run.Category.ArtifactName())
	if err != nil {
		return err
	}
	run.ArtifactPath = path
	return nil
}

// RecordCollectionStep writes the collection to the run history.
type RecordCollectionStep struct {
	history HistoryRecorder
}

// NewRecordCollectionStep creates a RecordCollectionStep.
func NewRecordCollectionStep(history HistoryRecorder) *RecordCollectionStep {
	return &RecordCollectionStep{history: history}
}

// Name returns the step name.
func (s *RecordCollectionStep) Name() string {
	return "record_collection"
}

// Do executes the step.
func (s *RecordCollectionStep) Do(ctx context.Context, run *model.CategoryRun) error {
	_, err := s.history.RecordCollection(ctx, run)
	return err
}

// ResolveArtifactStep finds the run's counts artifact.
type ResolveArtifactStep struct {
	resolver *artifact.Resolver
	logger   *slog.Logger
}

// NewResolveArtifactStep creates a ResolveArtifactStep.
func NewResolveArtifactStep(resolver *artifact.Resolver, logger *slog.Logger) *ResolveArtifactStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResolveArtifactStep{resolver: resolver, logger: logger}
}

// Name returns the step name.
func (s *ResolveArtifactStep) Name() string {
	return "resolve_artifact"
}

// Do executes the step. When nothing is found the available artifacts are
// logged to help spot a misnamed category.
func (s *ResolveArtifactStep) Do(_ context.Context, run *model.CategoryRun) error {
	path, err := s.resolver.Resolve(run.Category.ArtifactName())
	if err != nil {
		if errors.Is(err, artifact.ErrArtifactNotFound) {
			available, listErr := s.resolver.List()
			if listErr == nil {
				s.logger.Warn("artifact not found",
					"artifact", run.Category.ArtifactName(),
					"candidates", s.resolver.Candidates(run.Category.ArtifactName()),
					"available", available,
				)
			}
		}
		return err
	}
	run.ArtifactPath = path
	return nil
}

// LoadArtifactStep reads the resolved artifact into the run.
type LoadArtifactStep struct {
	logger *slog.Logger
}

// NewLoadArtifactStep creates a LoadArtifactStep.
func NewLoadArtifactStep(logger *slog.Logger) *LoadArtifactStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoadArtifactStep{logger: logger}
}

// Name returns the step name.
func (s *LoadArtifactStep) Name() string {
	return "load_artifact"
}

// Do executes the step.
func (s *LoadArtifactStep) Do(_ context.Context, run *model.CategoryRun) error {
	if run.ArtifactPath == "" {
		return fmt.Errorf("%w: artifact not resolved", ErrMissingInput)
	}
	m, err := artifact.Load(run.ArtifactPath)
	if err != nil {
		return err
	}
	if m.IsPlaceholder() {
		s.logger.Warn("artifact is an offline placeholder, scores carry no evidence",
			"category", run.Category.DisplayName(),
			"error", m.Metadata[model.MetaKeyError],
		)
	}
	run.Counts = m
	return nil
}

// DropStep removes the least frequent rows and columns.
type DropStep struct {
	count  int
	logger *slog.Logger
}

// NewDropStep creates a DropStep requesting count rows and columns.
func NewDropStep(count int, logger *slog.Logger) *DropStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DropStep{count: count, logger: logger}
}

// Name returns the step name.
func (s *DropStep) Name() string {
	return "drop"
}

// Do executes the step.
func (s *DropStep) Do(_ context.Context, run *model.CategoryRun) error {
	if run.Counts == nil {
		return fmt.Errorf("%w: no counts to filter", ErrMissingInput)
	}
	nA, nB := run.Counts.Shape()
	run.Counts, run.Dropped = score.Drop(run.Counts, s.count)
	if run.Dropped < s.count {
		s.logger.Debug("drop count clamped",
			"requested", s.count,
			"dropped", run.Dropped,
			"rows", nA,
			"cols", nB,
		)
	}
	return nil
}

// ScoreStep normalizes the counts and computes column statistics.
type ScoreStep struct {
	method string
}

// NewScoreStep creates a ScoreStep.
func NewScoreStep(method string) *ScoreStep {
	return &ScoreStep{method: method}
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do executes the step.
func (s *ScoreStep) Do(_ context.Context, run *model.CategoryRun) error {
	if run.Counts == nil {
		return fmt.Errorf("%w: no counts to score", ErrMissingInput)
	}
	scores, err := score.Normalize(run.Counts, s.method)
	if err != nil {
		return err
	}
	run.Scores = scores
	run.Stats = score.Describe(scores)
	return nil
}

// RankStep extracts the top-K associations.
type RankStep struct {
	k int
}

// NewRankStep creates a RankStep.
func NewRankStep(k int) *RankStep {
	return &RankStep{k: k}
}

// Name returns the step name.
func (s *RankStep) Name() string {
	return "rank"
}

// Do executes the step.
func (s *RankStep) Do(_ context.Context, run *model.CategoryRun) error {
	if run.Scores == nil {
		return fmt.Errorf("%w: no scores to rank", ErrMissingInput)
	}
	run.Rankings = rank.TopK(run.Scores, s.k)
	return nil
}

// ExportStep writes the export files. With an empty root the files go
// next to the artifact.
type ExportStep struct {
	root   string
	logger *slog.Logger
}

// NewExportStep creates an ExportStep.
func NewExportStep(root string, logger *slog.Logger) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStep{root: root, logger: logger}
}

// Name returns the step name.
func (s *ExportStep) Name() string {
	return "export"
}

// Do executes the step.
func (s *ExportStep) Do(_ context.Context, run *model.CategoryRun) error {
	root := s.root
	if root == "" {
		root = filepath.Dir(run.ArtifactPath)
	}
	paths, err := report.NewExporter(root, s.logger).Export(run)
	run.Exports = append(run.Exports, paths...)
	return err
}

// RecordAnalysisStep writes the analysis to the run history.
// It is meant to be added with AddFinalStep so failures are recorded too.
type RecordAnalysisStep struct {
	history HistoryRecorder
}

// NewRecordAnalysisStep creates a RecordAnalysisStep.
func NewRecordAnalysisStep(history HistoryRecorder) *RecordAnalysisStep {
	return &RecordAnalysisStep{history: history}
}

// Name returns the step name.
func (s *RecordAnalysisStep) Name() string {
	return "record_analysis"
}

// Do executes the step.
func (s *RecordAnalysisStep) Do(ctx context.Context, run *model.CategoryRun) error {
	_, err := s.history.RecordAnalysis(ctx, run)
	return err
}

// CollectConfig holds configuration for the collection pipeline.
type CollectConfig struct {
	// TermsDir holds "<label>.txt" for every category.
	TermsDir string

	// Smoke selects the built-in dataset instead of term files.
	Smoke bool

	// CountsDir receives the artifacts.
	CountsDir string

	// History records the run when set.
	History HistoryRecorder

	// Logger for the steps.
	Logger *slog.Logger
}

// CollectPipeline creates the collection pipeline:
// secondary terms, counts, artifact and (optionally) history.
func CollectPipeline(o *collect.Orchestrator, cfg CollectConfig, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewSecondaryTermsStep(cfg.TermsDir, cfg.Smoke, cfg.Logger),
		NewCollectStep(o),
		NewSaveArtifactStep(cfg.CountsDir),
	)
	if cfg.History != nil {
		p.AddStep(NewRecordCollectionStep(cfg.History))
	}
	return p
}

// AnalyzeConfig holds configuration for the analysis pipeline.
type AnalyzeConfig struct {
	// DropCount is the requested number of rows and columns to drop.
	DropCount int

	// Method is the score method.
	Method string

	// TopK is the number of associations per anchor.
	TopK int

	// ExportDir receives summary/ and assocs/. Empty means next to the artifact.
	ExportDir string

	// Export enables the export step.
	Export bool

	// History records the run when set.
	History HistoryRecorder

	// Logger for the steps.
	Logger *slog.Logger
}

// AnalyzePipeline creates the analysis pipeline:
// resolve, load, drop, score, rank, export and (optionally) history.
func AnalyzePipeline(resolver *artifact.Resolver, cfg AnalyzeConfig, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewResolveArtifactStep(resolver, cfg.Logger),
		NewLoadArtifactStep(cfg.Logger),
		NewDropStep(cfg.DropCount, cfg.Logger),
		NewScoreStep(cfg.Method),
		NewRankStep(cfg.TopK),
	)
	if cfg.Export {
		p.AddStep(NewExportStep(cfg.ExportDir, cfg.Logger))
	}
	if cfg.History != nil {
		p.AddFinalStep(NewRecordAnalysisStep(cfg.History))
	}
	return p
}
