package model

import (
	"errors"
	"fmt"
	"time"
)

// Metadata keys written by the collection orchestrator.
const (
	// MetaKeyError holds the provider failure text of an offline placeholder.
	MetaKeyError = "error"

	// MetaKeyNote holds a human-readable note about how the matrix was produced.
	MetaKeyNote = "note"

	// MetaKeyMode holds CollectionMode.String() for placeholder matrices.
	MetaKeyMode = "mode"
)

// PlaceholderCount is the value of every cell of an offline placeholder matrix,
// representing "no discriminative evidence".
const PlaceholderCount int64 = 1

// PlaceholderMarginal is the value of every marginal of an offline placeholder.
// Any positive constant keeps normalization free of division by zero.
const PlaceholderMarginal int64 = 200

// PlaceholderNote is stored under MetaKeyNote on placeholder matrices.
const PlaceholderNote = "Offline placeholder generated due to collection failure."

// Counts matrix validation errors.
var (
	// ErrShapeMismatch is returned when rows, columns and marginals disagree.
	ErrShapeMismatch = errors.New("counts matrix shape mismatch")

	// ErrNegativeCount is returned when a cell or marginal is negative.
	ErrNegativeCount = errors.New("counts matrix contains a negative count")
)

// CollectionMetadata holds free-form annotations describing how a matrix was
// produced. It is empty for normal collections.
type CollectionMetadata map[string]string

// CountsMatrix is a (nA, nB) matrix of co-occurrence counts between the term
// groups of dimension A and dimension B, with the independent occurrence
// count of every term as marginals.
//
// Invariant: len(Counts) == len(MarginalA) == A.Len(), and every row as well as
// MarginalB has length B.Len(). Every transformation that removes rows or
// columns removes the marginal and term entries in lockstep (see Without).
type CountsMatrix struct {
	// Category is the display name of the category the matrix belongs to.
	Category string `json:"category"`

	// Source identifies the evidence source, e.g. "pubmed".
	Source string `json:"source"`

	// CollectedAt is when the collection run finished.
	CollectedAt time.Time `json:"collected_at"`

	// A is the primary dimension (factors).
	A Dimension `json:"a"`

	// B is the secondary dimension (category terms).
	B Dimension `json:"b"`

	// Counts holds the co-occurrence count of A-term i with B-term j at [i][j].
	Counts [][]int64 `json:"counts"`

	// MarginalA holds the independent occurrence count of every A-term.
	MarginalA []int64 `json:"marginal_a"`

	// MarginalB holds the independent occurrence count of every B-term.
	MarginalB []int64 `json:"marginal_b"`

	// Metadata describes how the matrix was produced.
	Metadata CollectionMetadata `json:"metadata"`
}

// NewCountsMatrix creates a zero-filled matrix shaped by the two dimensions.
func NewCountsMatrix(a, b Dimension) *CountsMatrix {
	counts := make([][]int64, a.Len())
	for i := range counts {
		counts[i] = make([]int64, b.Len())
	}
	return &CountsMatrix{
		A:         a,
		B:         b,
		Counts:    counts,
		MarginalA: make([]int64, a.Len()),
		MarginalB: make([]int64, b.Len()),
		Metadata:  CollectionMetadata{},
	}
}

// NewPlaceholder creates the offline placeholder matrix: every cell is
// PlaceholderCount, every marginal is PlaceholderMarginal, and the metadata
// records the failure so the result can never be mistaken for real evidence.
func NewPlaceholder(a, b Dimension, reason error) *CountsMatrix {
	m := NewCountsMatrix(a, b)
	for i := range m.Counts {
		for j := range m.Counts[i] {
			m.Counts[i][j] = PlaceholderCount
		}
		m.MarginalA[i] = PlaceholderMarginal
	}
	for j := range m.MarginalB {
		m.MarginalB[j] = PlaceholderMarginal
	}

	errText := "unknown failure"
	if reason != nil {
		errText = reason.Error()
	}
	m.Metadata[MetaKeyError] = errText
	m.Metadata[MetaKeyNote] = PlaceholderNote
	m.Metadata[MetaKeyMode] = ModeOffline.String()
	return m
}

// Shape returns (nA, nB).
func (m *CountsMatrix) Shape() (int, int) {
	return len(m.MarginalA), len(m.MarginalB)
}

// Mode reports whether the matrix is real evidence or an offline placeholder.
func (m *CountsMatrix) Mode() CollectionMode {
	if _, failed := m.Metadata[MetaKeyError]; failed {
		return ModeOffline
	}
	return ParseCollectionMode(m.Metadata[MetaKeyMode])
}

// IsPlaceholder reports whether the matrix was synthesized offline.
func (m *CountsMatrix) IsPlaceholder() bool {
	return m.Mode() == ModeOffline
}

// Validate checks that the matrix shape, marginals and term dimensions agree,
// that exclusions and labels align with their groups, and that every count is
// non-negative.
func (m *CountsMatrix) Validate() error {
	nA, nB := m.Shape()
	if len(m.Counts) != nA {
		return fmt.Errorf("%w: %d rows but %d A marginals", ErrShapeMismatch, len(m.Counts), nA)
	}
	if m.A.Len() != nA {
		return fmt.Errorf("%w: %d A terms but %d A marginals", ErrShapeMismatch, m.A.Len(), nA)
	}
	if m.B.Len() != nB {
		return fmt.Errorf("%w: %d B terms but %d B marginals", ErrShapeMismatch, m.B.Len(), nB)
	}
	if err := m.A.CheckAlignment(); err != nil {
		return fmt.Errorf("dimension A: %w", err)
	}
	if err := m.B.CheckAlignment(); err != nil {
		return fmt.Errorf("dimension B: %w", err)
	}
	for i, row := range m.Counts {
		if len(row) != nB {
			return fmt.Errorf("%w: row %d has %d columns, want %d", ErrShapeMismatch, i, len(row), nB)
		}
		for _, c := range row {
			if c < 0 {
				return fmt.Errorf("%w: row %d", ErrNegativeCount, i)
			}
		}
		if m.MarginalA[i] < 0 {
			return fmt.Errorf("%w: A marginal %d", ErrNegativeCount, i)
		}
	}
	for j, c := range m.MarginalB {
		if c < 0 {
			return fmt.Errorf("%w: B marginal %d", ErrNegativeCount, j)
		}
	}
	return nil
}

// Without returns a copy of the matrix with the given rows and columns removed.
// Counts, marginals and dimension entries are removed in lockstep.
// Metadata is copied unchanged.
func (m *CountsMatrix) Without(rows, cols map[int]bool) *CountsMatrix {
	out := &CountsMatrix{
		Category:    m.Category,
		Source:      m.Source,
		CollectedAt: m.CollectedAt,
		A:           m.A.Without(rows),
		B:           m.B.Without(cols),
		Metadata:    make(CollectionMetadata, len(m.Metadata)),
	}
	for k, v := range m.Metadata {
		out.Metadata[k] = v
	}

	for j, c := range m.MarginalB {
		if !cols[j] {
			out.MarginalB = append(out.MarginalB, c)
		}
	}
	for i, row := range m.Counts {
		if rows[i] {
			continue
		}
		out.MarginalA = append(out.MarginalA, m.MarginalA[i])
		kept := make([]int64, 0, len(row))
		for j, c := range row {
			if !cols[j] {
				kept = append(kept, c)
			}
		}
		out.Counts = append(out.Counts, kept)
	}
	if out.MarginalA == nil {
		out.MarginalA = []int64{}
		out.Counts = [][]int64{}
	}
	if out.MarginalB == nil {
		out.MarginalB = []int64{}
	}
	return out
}
