// Package log provides secure logging built on top of the standard slog
// package.
//
// The SecureHandler masks sensitive information before it reaches the
// output:
//   - attributes named like credentials (api_key, token, password, ...)
//   - values that look like secrets, such as 36-character NCBI API keys
//   - api_key query parameters inside URLs and error messages
//   - user:password pairs in proxy URLs
//
// Even in verbose mode, sensitive values are masked so that logs can be
// shared when reporting collection problems.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("esearch request",
//	    "url", "https://eutils.ncbi.nlm.nih.gov/...&api_key=abc", // api_key=***REDACTED***
//	)
package log
