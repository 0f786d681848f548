package terms

import "errors"

// Loader errors. Both are configuration errors: the affected category cannot
// proceed without its terms.
var (
	// ErrFileNotFound is returned when a term or label file does not exist.
	ErrFileNotFound = errors.New("term file not found")

	// ErrNoTermsFound is returned when a term file holds no usable lines.
	ErrNoTermsFound = errors.New("no terms found")
)
