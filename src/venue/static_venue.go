package venue

import (
	"context"
	"sync/atomic"

	"venue-collections/src/models"
)

// StaticVenue serves a fixed listing taken from configuration.
type StaticVenue struct {
	Config  models.MVenueConfig
	symbols atomic.Value // Stores []string safely
}

// -----------------------------------------------------------------------------

func NewStaticVenue(cfg models.MVenueConfig) *StaticVenue {
	return &StaticVenue{Config: cfg}
}

// -----------------------------------------------------------------------------

func (v *StaticVenue) Name() string {
	return v.Config.Name
}

// -----------------------------------------------------------------------------

func (v *StaticVenue) Info() models.MVenueInfo {
	return infoFromConfig(v.Config)
}

// -----------------------------------------------------------------------------

// RefreshListing publishes a copy of the configured symbols.
func (v *StaticVenue) RefreshListing(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	v.symbols.Store(append([]string(nil), v.Config.Symbols...))
	return nil
}

// -----------------------------------------------------------------------------

func (v *StaticVenue) Symbols() []string {
	symbols, _ := v.symbols.Load().([]string)
	return symbols
}
