package interfaces

import "venue-collections/src/models"

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing run results with external systems (Server/Push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {
	// -----------------------------------------------------------------------------
	// Broadcast stores the state and pushes it to connected listeners.
	Broadcast(state *models.MLatestData)

	// -----------------------------------------------------------------------------
	// UpdateState updates the internal state without broadcasting
	UpdateState(state *models.MLatestData)

	// -----------------------------------------------------------------------------
	// Start the server
	Start() error

	// -----------------------------------------------------------------------------
	// Stop the server gracefully
	Stop() error
}
