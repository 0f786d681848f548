package model

import (
	"errors"
	"testing"
)

func smokeDimensions(t *testing.T) (Dimension, Dimension) {
	t.Helper()

	a, err := NewDimension(NewTermGroups(
		[]string{"Antisocial attitudes"},
		[]string{"Unemployment"},
		[]string{"Impulsivity"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := NewDimension(NewTermGroups(
		[]string{"coastal residence"},
		[]string{"contemplation of water"},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return a, b
}

// TestNewPlaceholder tests the offline placeholder matrix.
func TestNewPlaceholder(t *testing.T) {
	t.Parallel()

	a, b := smokeDimensions(t)
	m := NewPlaceholder(a, b, errors.New("dial tcp: connection refused"))

	nA, nB := m.Shape()
	if nA != 3 || nB != 2 {
		t.Fatalf("expected shape (3,2), got (%d,%d)", nA, nB)
	}
	for i, row := range m.Counts {
		for j, c := range row {
			if c != PlaceholderCount {
				t.Errorf("cell (%d,%d) = %d, want %d", i, j, c, PlaceholderCount)
			}
		}
	}
	for _, v := range append(append([]int64{}, m.MarginalA...), m.MarginalB...) {
		if v != PlaceholderMarginal {
			t.Errorf("marginal = %d, want %d", v, PlaceholderMarginal)
		}
	}
	if m.Metadata[MetaKeyError] != "dial tcp: connection refused" {
		t.Errorf("expected error metadata, got %v", m.Metadata)
	}
	if !m.IsPlaceholder() {
		t.Error("expected placeholder mode")
	}
	if err := m.Validate(); err != nil {
		t.Errorf("placeholder must be valid: %v", err)
	}
}

// TestCountsMatrixValidate tests shape and sign checks.
func TestCountsMatrixValidate(t *testing.T) {
	t.Parallel()

	t.Run("fresh matrix is valid and normal", func(t *testing.T) {
		t.Parallel()
		a, b := smokeDimensions(t)
		m := NewCountsMatrix(a, b)
		if err := m.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if m.IsPlaceholder() {
			t.Error("fresh matrix must not be a placeholder")
		}
		if len(m.Metadata) != 0 {
			t.Errorf("expected empty metadata, got %v", m.Metadata)
		}
	})

	t.Run("short row is rejected", func(t *testing.T) {
		t.Parallel()
		a, b := smokeDimensions(t)
		m := NewCountsMatrix(a, b)
		m.Counts[1] = m.Counts[1][:1]
		if err := m.Validate(); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("expected ErrShapeMismatch, got %v", err)
		}
	})

	t.Run("marginal length mismatch is rejected", func(t *testing.T) {
		t.Parallel()
		a, b := smokeDimensions(t)
		m := NewCountsMatrix(a, b)
		m.MarginalB = append(m.MarginalB, 5)
		if err := m.Validate(); !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("expected ErrShapeMismatch, got %v", err)
		}
	})

	t.Run("negative count is rejected", func(t *testing.T) {
		t.Parallel()
		a, b := smokeDimensions(t)
		m := NewCountsMatrix(a, b)
		m.Counts[0][0] = -1
		if err := m.Validate(); !errors.Is(err, ErrNegativeCount) {
			t.Errorf("expected ErrNegativeCount, got %v", err)
		}
	})

	t.Run("misaligned labels are rejected", func(t *testing.T) {
		t.Parallel()
		a, b := smokeDimensions(t)
		a.Labels = []string{"L1"}
		m := NewCountsMatrix(a, b)
		if err := m.Validate(); !errors.Is(err, ErrAlignment) {
			t.Errorf("expected ErrAlignment, got %v", err)
		}
	})

	t.Run("misaligned exclusions are rejected", func(t *testing.T) {
		t.Parallel()
		a, b := smokeDimensions(t)
		b.Exclusions = NewTermGroups([]string{"x"}, []string{"y"}, []string{"z"})
		m := NewCountsMatrix(a, b)
		if err := m.Validate(); !errors.Is(err, ErrAlignment) {
			t.Errorf("expected ErrAlignment, got %v", err)
		}
	})
}

// TestCountsMatrixWithout tests that removal keeps every axis in lockstep.
func TestCountsMatrixWithout(t *testing.T) {
	t.Parallel()

	a, b := smokeDimensions(t)
	m := NewCountsMatrix(a, b)
	m.Counts = [][]int64{{1, 2}, {3, 4}, {5, 6}}
	m.MarginalA = []int64{10, 20, 30}
	m.MarginalB = []int64{40, 50}
	m.Metadata["k"] = "v"

	out := m.Without(map[int]bool{0: true}, map[int]bool{1: true})

	if err := out.Validate(); err != nil {
		t.Fatalf("result must be valid: %v", err)
	}
	nA, nB := out.Shape()
	if nA != 2 || nB != 1 {
		t.Fatalf("expected shape (2,1), got (%d,%d)", nA, nB)
	}
	if out.Counts[0][0] != 3 || out.Counts[1][0] != 5 {
		t.Errorf("unexpected counts %v", out.Counts)
	}
	if out.MarginalA[0] != 20 || out.MarginalB[0] != 40 {
		t.Errorf("unexpected marginals %v %v", out.MarginalA, out.MarginalB)
	}
	if out.A.Label(0) != "Unemployment" || out.B.Label(0) != "coastal residence" {
		t.Errorf("unexpected labels %v %v", out.A.DisplayLabels(), out.B.DisplayLabels())
	}
	if out.Metadata["k"] != "v" {
		t.Error("metadata must be carried over")
	}
	if len(m.Counts) != 3 {
		t.Error("original matrix must not be modified")
	}
}

// TestCategory tests derived category names.
func TestCategory(t *testing.T) {
	t.Parallel()

	c := Category{Name: "activities", Label: "blue_health_activities"}
	if c.ArtifactName() != "counts_blue_health_activities" {
		t.Errorf("unexpected artifact name %q", c.ArtifactName())
	}
	if c.TermsFile() != "blue_health_activities.txt" {
		t.Errorf("unexpected terms file %q", c.TermsFile())
	}
	if c.ScoresFileName() != "activities_scores.csv" {
		t.Errorf("unexpected scores file %q", c.ScoresFileName())
	}
	if !c.HasSecondary() {
		t.Error("expected secondary dimension")
	}
	if (Category{Label: NoSecondaryLabel}).HasSecondary() {
		t.Error("sentinel category must not have a secondary dimension")
	}
}

// TestCollectionModeString tests the stable text form of modes.
func TestCollectionModeString(t *testing.T) {
	t.Parallel()

	for _, m := range []CollectionMode{ModeNormal, ModeOffline} {
		if ParseCollectionMode(m.String()) != m {
			t.Errorf("mode %v does not survive String/Parse", m)
		}
	}
	if CollectionMode(99).String() != "unknown" {
		t.Error("expected unknown for out-of-range mode")
	}
}
