package aggregator

import (
	"venue-collections/src/helpers"
	"venue-collections/src/models"
)

// VenuesForSymbol returns the venues listing symbol in discovery order.
func VenuesForSymbol(result *models.MCollections, symbol string) ([]string, error) {
	if result != nil {
		if venues, ok := result.Collections[symbol]; ok {
			return append([]string(nil), venues...), nil
		}
		if venue, ok := result.SinglyAvailable[symbol]; ok {
			return []string{venue}, nil
		}
	}
	return nil, &helpers.SymbolNotFoundError{Symbol: symbol}
}
