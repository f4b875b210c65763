package aggregator

import (
	"slices"

	"venue-collections/src/helpers"
	"venue-collections/src/interfaces"
	"venue-collections/src/models"
)

// SelectVenues returns the venues satisfying rules, keeping their order.
// Only static venue properties are inspected; no listing is fetched.
func SelectVenues(venues []interfaces.IVenue, rules models.MVenueRules) ([]interfaces.IVenue, error) {
	for capability := range rules.Has {
		if !models.IsKnownCapability(capability) {
			return nil, helpers.NewValidationError("%s is not a known venue capability", capability)
		}
	}

	selected := make([]interfaces.IVenue, 0, len(venues))
	for _, v := range venues {
		if slices.Contains(rules.Exclude, v.Name()) {
			continue
		}
		if matchesRules(v.Info(), rules) {
			selected = append(selected, v)
		}
	}
	return selected, nil
}

// -----------------------------------------------------------------------------

func matchesRules(info models.MVenueInfo, rules models.MVenueRules) bool {
	if rules.Blacklist {
		for _, country := range rules.Countries {
			if slices.Contains(info.Countries, country) {
				return false
			}
		}
		for capability, value := range rules.Has {
			if info.Has[capability] == value {
				return false
			}
		}
		return true
	}

	for _, country := range rules.Countries {
		if !slices.Contains(info.Countries, country) {
			return false
		}
	}
	for capability, value := range rules.Has {
		if info.Has[capability] != value {
			return false
		}
	}
	return true
}
