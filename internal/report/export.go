package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bluehealth/cooccur/internal/model"
)

// Export directory names under the export root.
const (
	SummaryDir = "summary"
	AssocsDir  = "assocs"

	// AssociationsFile maps every B term to its top A terms.
	AssociationsFile = "associations.json"
)

// ErrNothingToExport is returned when a run has no scores or rankings.
var ErrNothingToExport = errors.New("run has no scores to export")

// topAssocs is the per-anchor JSON record.
type topAssocs struct {
	TopAssocs []string `json:"top_assocs"`
}

// Exporter writes the export files of analyzed runs.
type Exporter struct {
	// root is the directory that receives summary/ and assocs/.
	root string

	// logger for structured logging.
	logger *slog.Logger
}

// NewExporter creates an Exporter writing under root.
func NewExporter(root string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{root: root, logger: logger}
}

// Export writes, for one run:
//
//	summary/<category>/<scores file>      full score table (CSV)
//	summary/<category>/<slug(A term)>.json {"top_assocs": [...]} per A term
//	assocs/<category>/associations.json   B term -> top A terms
//
// and returns the written paths in that order.
func (e *Exporter) Export(run *model.CategoryRun) ([]string, error) {
	if run.Scores == nil || run.Rankings == nil {
		return nil, ErrNothingToExport
	}

	category := Slug(run.Category.DisplayName())
	summaryDir := filepath.Join(e.root, SummaryDir, category)
	assocsDir := filepath.Join(e.root, AssocsDir, category)
	for _, dir := range []string{summaryDir, assocsDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	var written []string

	scoresPath := filepath.Join(summaryDir, run.Category.ScoresFileName())
	var buf bytes.Buffer
	if err := WriteScoresCSV(&buf, run.Scores); err != nil {
		return written, fmt.Errorf("failed to encode scores: %w", err)
	}
	if err := os.WriteFile(scoresPath, buf.Bytes(), 0o600); err != nil {
		return written, fmt.Errorf("failed to write scores: %w", err)
	}
	written = append(written, scoresPath)

	seen := make(map[string]string)
	for _, l := range run.Rankings.AToB {
		name := Slug(l.Anchor) + ".json"
		if prev, dup := seen[name]; dup {
			e.logger.Warn("anchors share an export file name, the later one wins",
				"file", name, "first", prev, "second", l.Anchor)
		}
		seen[name] = l.Anchor

		path := filepath.Join(summaryDir, name)
		if err := writeJSONFile(path, topAssocs{TopAssocs: l.Associated}); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	assocPath := filepath.Join(assocsDir, AssociationsFile)
	if err := writeJSONFile(assocPath, model.AssociationMap(run.Rankings.BToA)); err != nil {
		return written, err
	}
	written = append(written, assocPath)

	e.logger.Info("exports written",
		"category", run.Category.DisplayName(),
		"files", len(written),
		"dir", e.root,
	)
	return written, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
