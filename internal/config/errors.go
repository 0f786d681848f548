package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoCategory is returned when no category is configured.
	ErrNoCategory = errors.New("no category configured: add categories to the config file or pass them as arguments")

	// ErrInvalidCategory is returned when a category has neither a label
	// nor an artifact name.
	ErrInvalidCategory = errors.New("invalid category: label or artifact is required")

	// ErrInvalidTopK is returned when top-K is not positive.
	ErrInvalidTopK = errors.New("invalid top-k: must be positive")

	// ErrInvalidDropCount is returned when the drop count is negative.
	// Use 0 to skip low-frequency filtering.
	ErrInvalidDropCount = errors.New("invalid drop count: must be non-negative")

	// ErrInvalidScoreMethod is returned for an unsupported score method.
	ErrInvalidScoreMethod = errors.New("invalid score method: use normalize or association")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetMax is returned when retmax is not positive.
	ErrInvalidRetMax = errors.New("invalid retmax: must be positive")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidEnv is returned when an environment override cannot be parsed.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
