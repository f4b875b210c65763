package models

// -----------------------------------------------------------------------------
// Server State Structure
// -----------------------------------------------------------------------------

type MLatestData struct {
	Type        string        `json:"type"` // "INITIAL" or "UPDATE"
	Collections *MCollections `json:"collections"`
	Timestamp   int64         `json:"timestamp"`
	Metrics     MRunMetrics   `json:"metrics"`
}

// -----------------------------------------------------------------------------
// MRunMetrics summarises the last aggregation run
// -----------------------------------------------------------------------------

type MRunMetrics struct {
	BuildTimeSeconds float64 `json:"build_time_seconds"`
	Venues           int     `json:"venues"`
	FailedVenues     int     `json:"failed_venues"`
	Symbols          int     `json:"symbols"`
	SharedSymbols    int     `json:"shared_symbols"`
}

// -----------------------------------------------------------------------------
// SubscribeCommand for client messages
// -----------------------------------------------------------------------------

type MSubscribeCommand struct {
	Command string   `json:"command"`
	Symbols []string `json:"symbols"`
}
