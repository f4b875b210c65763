package venue

import (
	"fmt"

	"venue-collections/src/interfaces"
	"venue-collections/src/logger"
	"venue-collections/src/models"
)

// Deps carries the collaborators venues may need.
type Deps struct {
	Network interfaces.INetworkManager
	Table   SymbolTable // Optional, required by "table" venues
	Logger  *logger.Logger
}

// NewFromConfig builds the venue described by cfg.
func NewFromConfig(cfg models.MVenueConfig, deps Deps) (interfaces.IVenue, error) {
	switch cfg.Type {
	case "static", "":
		return NewStaticVenue(cfg), nil
	case "http":
		return NewHTTPVenue(cfg, deps.Network, deps.Logger.Named("Venue-"+cfg.Name)), nil
	case "table":
		if deps.Table == nil {
			return nil, fmt.Errorf("venue %s: table venues need a sqlite or postgres store", cfg.Name)
		}
		return NewTableVenue(cfg, deps.Table)
	default:
		return nil, fmt.Errorf("unsupported venue type %q for venue %s", cfg.Type, cfg.Name)
	}
}

// -----------------------------------------------------------------------------

func infoFromConfig(cfg models.MVenueConfig) models.MVenueInfo {
	has := make(map[string]bool, len(cfg.Has))
	for k, v := range cfg.Has {
		has[k] = v
	}
	return models.MVenueInfo{
		Name:      cfg.Name,
		Countries: append([]string(nil), cfg.Countries...),
		Has:       has,
	}
}
