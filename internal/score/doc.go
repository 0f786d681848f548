// Package score turns a counts matrix into comparable association scores.
//
// Scoring runs in two steps. Drop removes the least frequent rows and
// columns, and Normalize rescales every count against the marginals of
// dimension A so that a score reflects how specific an association is
// rather than how popular the terms are.
package score
