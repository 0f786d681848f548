package model

import (
	"errors"
	"fmt"
)

// ErrAlignment is the sentinel matched by every *AlignmentError.
// Alignment errors are non-fatal: the auxiliary data is dropped and the
// primary groups are kept.
var ErrAlignment = errors.New("auxiliary data is not aligned with term groups")

// AlignmentError describes an auxiliary sequence (exclusions or labels)
// whose length differs from the number of primary term groups.
type AlignmentError struct {
	// Kind names the rejected auxiliary data, e.g. "exclusions" or "labels".
	Kind string

	// Got is the number of auxiliary entries supplied.
	Got int

	// Want is the number of primary term groups.
	Want int
}

// Error implements the error interface.
func (e *AlignmentError) Error() string {
	return fmt.Sprintf("%s count %d does not match term group count %d", e.Kind, e.Got, e.Want)
}

// Is reports whether target is ErrAlignment.
func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignment
}

// Dimension is one side of an association: an ordered sequence of term
// groups plus optional exclusions and display labels parallel to them.
//
// Invariant: Exclusions and Labels are either empty or exactly len(Groups)
// long. The setters below enforce this and never touch Groups.
type Dimension struct {
	// Groups are the primary term groups.
	Groups []TermGroup `json:"groups"`

	// Exclusions holds, per group, terms whose presence excludes a document.
	Exclusions []TermGroup `json:"exclusions,omitempty"`

	// Labels holds, per group, the display label used in exports.
	Labels []string `json:"labels,omitempty"`
}

// NewDimension creates a Dimension from validated term groups.
func NewDimension(groups []TermGroup) (Dimension, error) {
	for i, g := range groups {
		if err := g.Validate(); err != nil {
			return Dimension{}, fmt.Errorf("group %d: %w", i, err)
		}
	}
	return Dimension{Groups: groups}, nil
}

// Len returns the number of term groups.
func (d Dimension) Len() int {
	return len(d.Groups)
}

// CheckAlignment reports whether an auxiliary sequence of length got may be
// attached to a dimension with want groups.
func CheckAlignment(kind string, got, want int) error {
	if got != want {
		return &AlignmentError{Kind: kind, Got: got, Want: want}
	}
	return nil
}

// CheckAlignment reports whether the exclusions and labels attached to the
// dimension are empty or exactly one per group.
func (d Dimension) CheckAlignment() error {
	if len(d.Exclusions) > 0 {
		if err := CheckAlignment("exclusions", len(d.Exclusions), d.Len()); err != nil {
			return err
		}
	}
	if len(d.Labels) > 0 {
		if err := CheckAlignment("labels", len(d.Labels), d.Len()); err != nil {
			return err
		}
	}
	return nil
}

// SetExclusions attaches exclusions if they align with the groups.
// On mismatch the dimension is left unchanged and an *AlignmentError is returned.
func (d *Dimension) SetExclusions(exclusions []TermGroup) error {
	if err := CheckAlignment("exclusions", len(exclusions), d.Len()); err != nil {
		return err
	}
	d.Exclusions = exclusions
	return nil
}

// SetLabels attaches display labels if they align with the groups.
// On mismatch the dimension is left unchanged and an *AlignmentError is returned.
func (d *Dimension) SetLabels(labels []string) error {
	if err := CheckAlignment("labels", len(labels), d.Len()); err != nil {
		return err
	}
	d.Labels = labels
	return nil
}

// Label returns the display label for group i, falling back to its first synonym.
func (d Dimension) Label(i int) string {
	if i < len(d.Labels) && d.Labels[i] != "" {
		return d.Labels[i]
	}
	if i < len(d.Groups) {
		return d.Groups[i].Primary()
	}
	return ""
}

// DisplayLabels returns the display label of every group in order.
func (d Dimension) DisplayLabels() []string {
	labels := make([]string, d.Len())
	for i := range d.Groups {
		labels[i] = d.Label(i)
	}
	return labels
}

// Without returns a copy of the dimension with the given indices removed from
// groups, exclusions and labels in lockstep. Out-of-range indices are ignored,
// and so are exclusions or labels beyond the end of a misaligned sequence.
func (d Dimension) Without(remove map[int]bool) Dimension {
	out := Dimension{Groups: make([]TermGroup, 0, d.Len())}
	if len(d.Exclusions) > 0 {
		out.Exclusions = make([]TermGroup, 0, d.Len())
	}
	if len(d.Labels) > 0 {
		out.Labels = make([]string, 0, d.Len())
	}

	for i, g := range d.Groups {
		if remove[i] {
			continue
		}
		out.Groups = append(out.Groups, g.Clone())
		if i < len(d.Exclusions) {
			out.Exclusions = append(out.Exclusions, d.Exclusions[i].Clone())
		}
		if i < len(d.Labels) {
			out.Labels = append(out.Labels, d.Labels[i])
		}
	}
	return out
}
