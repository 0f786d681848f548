package model

// CollectionMode records how a CountsMatrix was produced.
//
// Design decision: We use iota-based constants rather than string constants
// for cheap comparisons; String() and ParseCollectionMode provide the stable
// text form stored in metadata and the history database.
type CollectionMode int

const (
	// ModeNormal indicates real evidence returned by the counts provider.
	ModeNormal CollectionMode = iota

	// ModeOffline indicates a placeholder matrix synthesized because the
	// provider was unavailable.
	ModeOffline
)

// String returns the text form of the mode.
func (m CollectionMode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// ParseCollectionMode converts the text form back to a CollectionMode.
// Unknown values map to ModeNormal.
func ParseCollectionMode(s string) CollectionMode {
	if s == ModeOffline.String() {
		return ModeOffline
	}
	return ModeNormal
}
