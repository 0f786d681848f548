// Package model defines the core data structures used throughout cooccur.
//
// This package contains the following main types:
//   - TermGroup: One concept expressed as an ordered list of synonyms
//   - Dimension: One side of an association (groups, exclusions, labels)
//   - Category: A named secondary dimension paired with its artifact name
//   - CountsMatrix: Co-occurrence counts with marginals and collection metadata
//   - ScoreMatrix: Normalized association scores derived from a CountsMatrix
//   - AssociationList: Top-K associated terms for one anchor term
//   - CategoryRun: The state carried through the collect/analyze pipelines
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The loader, orchestrator, score engine, ranker and exporters all
// share these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for artifact persistence
// and report output.
package model
