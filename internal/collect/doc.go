// Package collect acquires the co-occurrence matrix of one category.
//
// It assembles the two dimensions from term, exclusion and label files,
// asks a provider.CountsProvider for counts, and guarantees that a
// structurally valid CountsMatrix always results.
//
// # Degradation
//
// Three kinds of problem are handled differently:
//
//   - A missing or empty term file is a configuration error. It is returned
//     to the caller; no terms are ever fabricated.
//   - An exclusion or label file whose line count does not match the term
//     groups is logged and dropped. The term groups are kept.
//   - A provider failure produces an offline placeholder matrix of the
//     correct shape whose metadata records the failure.
package collect
