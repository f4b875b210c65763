package interfaces

import "venue-collections/src/models"

// -----------------------------------------------------------------------------
// IDocumentWriter persists the two output mappings of a run.
// -----------------------------------------------------------------------------

type IDocumentWriter interface {

	// Write schedules both documents for writing and returns without waiting.
	Write(result *models.MCollections)

	// -----------------------------------------------------------------------------

	// Wait blocks until pending writes finish and returns their errors.
	Wait() error
}
