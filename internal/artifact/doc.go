// Package artifact persists counts matrices and finds them again.
//
// An artifact is the JSON encoding of a model.CountsMatrix stored as
// "<name>.json", where name is usually "counts_<category label>". The
// encoding round-trips shape, values, marginals, term groups, labels,
// exclusions and metadata exactly.
//
// Storage layout changed over time. Resolver looks in the current layout
// first (<root>/counts), then in the legacy ones (<root>/data/counts and
// <root>/data), and finally walks the whole root, so that old artifacts
// stay loadable without migration.
package artifact
