package model

import (
	"errors"
	"strings"
)

// ErrEmptyTermGroup is returned when a term group has no synonyms.
var ErrEmptyTermGroup = errors.New("term group is empty")

// ErrEmptySynonym is returned when a term group contains a blank synonym.
var ErrEmptySynonym = errors.New("term group contains an empty synonym")

// TermGroup is an ordered sequence of synonym strings denoting one concept.
// Uniqueness of synonyms within a group is not enforced.
type TermGroup []string

// Validate checks that the group is non-empty and holds no blank synonyms.
func (g TermGroup) Validate() error {
	if len(g) == 0 {
		return ErrEmptyTermGroup
	}
	for _, s := range g {
		if strings.TrimSpace(s) == "" {
			return ErrEmptySynonym
		}
	}
	return nil
}

// Primary returns the first synonym, which is also the default display label.
func (g TermGroup) Primary() string {
	if len(g) == 0 {
		return ""
	}
	return g[0]
}

// Clone returns a copy that does not share the backing array.
func (g TermGroup) Clone() TermGroup {
	if g == nil {
		return nil
	}
	out := make(TermGroup, len(g))
	copy(out, g)
	return out
}

// NewTermGroups converts raw synonym lists into term groups.
// This is mostly a convenience for literals in tests and the smoke dataset.
func NewTermGroups(raw ...[]string) []TermGroup {
	groups := make([]TermGroup, len(raw))
	for i, r := range raw {
		groups[i] = TermGroup(r)
	}
	return groups
}
