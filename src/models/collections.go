package models

// -----------------------------------------------------------------------------

// FailurePolicy decides what an aggregation run does when a venue cannot be read.
type FailurePolicy string

const (
	// PolicyAbort stops the run at the first failing venue.
	PolicyAbort FailurePolicy = "abort"
	// PolicySkip records the failing venue and keeps going.
	PolicySkip FailurePolicy = "skip"
)

// -----------------------------------------------------------------------------

// MCollections is the outcome of one aggregation run.
type MCollections struct {
	// symbol -> venues offering it, in order of discovery (always 2 or more)
	Collections map[string][]string `json:"collections"`
	// symbol -> the only venue offering it
	SinglyAvailable map[string]string `json:"singularly_available_markets"`
	Failures        []MVenueFailure   `json:"failures"`
	VenueCount      int               `json:"venue_count"`
	BuiltAt         int64             `json:"built_at"`
}

// MVenueFailure describes a venue skipped under PolicySkip.
type MVenueFailure struct {
	Venue    string `json:"venue"`
	Position int    `json:"position"`
	Error    string `json:"error"`
}

// NewMCollections returns an empty run result.
func NewMCollections() *MCollections {
	return &MCollections{
		Collections:     make(map[string][]string),
		SinglyAvailable: make(map[string]string),
	}
}

// SymbolCount returns the number of distinct symbols seen in the run.
func (c *MCollections) SymbolCount() int {
	return len(c.Collections) + len(c.SinglyAvailable)
}
