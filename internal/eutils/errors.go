package eutils

import "errors"

// E-utilities client errors. All of them are reported to the orchestrator
// wrapped in provider.ErrUnavailable.
var (
	// ErrBadStatus is returned when the service answers with a non-2xx status.
	ErrBadStatus = errors.New("unexpected HTTP status from E-utilities")

	// ErrBadResponse is returned when the reply cannot be parsed.
	ErrBadResponse = errors.New("malformed E-utilities response")

	// ErrQueryRejected is returned when the service reports a query error.
	ErrQueryRejected = errors.New("E-utilities rejected the query")

	// ErrInvalidProxyAddress is returned when the proxy address is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)
