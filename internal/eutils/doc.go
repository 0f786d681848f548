// Package eutils implements a counts provider backed by the NCBI Entrez
// E-utilities esearch endpoint.
//
// For dimensions A and B it issues one hit-count query per A term, one per
// B term and one per (A, B) pair. A term group becomes an OR of its quoted
// synonyms, and an exclusion group is attached with NOT:
//
//	("coastal residence"OR"living by the sea")NOT("sea lion")
//
// Requests are paced with a token bucket (3 requests/s anonymously, 10 with
// an API key, the published E-utilities limits) and may be routed through a
// SOCKS5 proxy.
//
// Any transport error, non-2xx status or malformed reply aborts the whole
// collection and is reported as a failed provider.Result wrapping
// provider.ErrUnavailable. Partial matrices are never returned.
package eutils
