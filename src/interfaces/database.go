package interfaces

import "venue-collections/src/models"

// -----------------------------------------------------------------------------
// IDatabase defines the contract for snapshot storage of aggregation runs.
// -----------------------------------------------------------------------------

type IDatabase interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveCollections replaces the stored snapshot with the given run.
	SaveCollections(result *models.MCollections) error

	// -----------------------------------------------------------------------------

	// LoadCollections returns the stored snapshot (empty if none).
	LoadCollections() (*models.MCollections, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
