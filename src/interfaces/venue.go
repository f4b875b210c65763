package interfaces

import (
	"context"
	"venue-collections/src/models"
)

// -----------------------------------------------------------------------------
// IVenue is a trading venue whose tradable symbols can be listed.
// -----------------------------------------------------------------------------

type IVenue interface {

	// Name returns the unique identifier of the venue
	Name() string

	// -----------------------------------------------------------------------------

	// Info returns the static properties used by selection rules.
	Info() models.MVenueInfo

	// -----------------------------------------------------------------------------

	// RefreshListing fetches the venue's current symbol listing.
	// Must not touch the state of any other venue.
	RefreshListing(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Symbols returns the listing in the venue's own order.
	// Only valid after a successful RefreshListing.
	Symbols() []string
}
