package model

// AssociationList is the ordered top-K list of terms in one dimension that
// are most associated with an anchor term of the other dimension.
// Entries are sorted by descending score; exact ties keep matrix index order.
type AssociationList struct {
	// Anchor is the display label of the anchor term.
	Anchor string `json:"anchor"`

	// Associated holds up to K display labels from the other dimension.
	Associated []string `json:"associated"`

	// Scores holds the score of every entry of Associated.
	Scores []float64 `json:"scores"`
}

// Rankings holds the top-K association lists in both directions.
type Rankings struct {
	// K is the requested list length.
	K int `json:"k"`

	// AToB has one list per dimension A term, in matrix row order.
	AToB []AssociationList `json:"a_to_b"`

	// BToA has one list per dimension B term, in matrix column order.
	BToA []AssociationList `json:"b_to_a"`
}

// AssociationMap flattens lists into an anchor -> associated labels mapping.
// When two anchors share a label the later one wins, matching the export format.
func AssociationMap(lists []AssociationList) map[string][]string {
	out := make(map[string][]string, len(lists))
	for _, l := range lists {
		out[l.Anchor] = l.Associated
	}
	return out
}
