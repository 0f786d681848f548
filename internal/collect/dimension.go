package collect

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/terms"
)

// DimensionFiles names the files that define one dimension.
// Exclusions and Labels are optional.
type DimensionFiles struct {
	// Terms is the term group file. Required.
	Terms string

	// Exclusions holds one exclusion group per term group.
	Exclusions string

	// Labels holds one display label per term group.
	Labels string
}

// AssembleDimension loads a dimension from files.
//
// A missing or empty term file is returned as an error wrapping
// terms.ErrFileNotFound or terms.ErrNoTermsFound. Auxiliary files that are
// missing, empty or misaligned are logged at Warn and left out.
func AssembleDimension(files DimensionFiles, logger *slog.Logger) (model.Dimension, error) {
	if logger == nil {
		logger = slog.Default()
	}

	groups, err := terms.LoadTermGroups(files.Terms)
	if err != nil {
		return model.Dimension{}, fmt.Errorf("failed to load terms: %w", err)
	}

	dim, err := model.NewDimension(groups)
	if err != nil {
		return model.Dimension{}, fmt.Errorf("invalid terms in %s: %w", files.Terms, err)
	}

	if files.Exclusions != "" {
		exclusions, err := terms.LoadTermGroups(files.Exclusions)
		switch {
		case errors.Is(err, terms.ErrFileNotFound):
			logger.Warn("exclusions file not found, continuing without exclusions",
				"path", files.Exclusions)
		case err != nil:
			logger.Warn("exclusions file unusable, continuing without exclusions",
				"path", files.Exclusions, "error", err)
		default:
			if err := dim.SetExclusions(exclusions); err != nil {
				logger.Warn("exclusions ignored", "path", files.Exclusions, "error", err)
			}
		}
	}

	if files.Labels != "" {
		labels, err := terms.LoadLabels(files.Labels)
		switch {
		case errors.Is(err, terms.ErrFileNotFound):
			logger.Warn("labels file not found, using first synonyms as labels",
				"path", files.Labels)
		case err != nil:
			logger.Warn("labels file unusable, using first synonyms as labels",
				"path", files.Labels, "error", err)
		default:
			if err := dim.SetLabels(labels); err != nil {
				logger.Warn("labels ignored", "path", files.Labels, "error", err)
			}
		}
	}

	logger.Debug("dimension assembled",
		"terms", files.Terms,
		"groups", dim.Len(),
		"exclusions", len(dim.Exclusions) > 0,
		"labels", len(dim.Labels) > 0,
	)
	return dim, nil
}
