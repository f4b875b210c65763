package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"venue-collections/src/interfaces"
	"venue-collections/src/logger"
	"venue-collections/src/models"
)

// HTTPVenue reads its listing from a JSON endpoint. The listing is an array
// of symbol strings, either the whole document or the value found under the
// dotted SymbolsPath (e.g. "data.symbols").
type HTTPVenue struct {
	Config  models.MVenueConfig
	Network interfaces.INetworkManager
	Logger  *logger.Logger
	symbols atomic.Value // Stores []string safely
}

// -----------------------------------------------------------------------------

func NewHTTPVenue(cfg models.MVenueConfig, netMgr interfaces.INetworkManager, log *logger.Logger) *HTTPVenue {
	return &HTTPVenue{
		Config:  cfg,
		Network: netMgr,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (v *HTTPVenue) Name() string {
	return v.Config.Name
}

// -----------------------------------------------------------------------------

func (v *HTTPVenue) Info() models.MVenueInfo {
	return infoFromConfig(v.Config)
}

// -----------------------------------------------------------------------------

// RefreshListing fetches and parses the listing. On failure the previous
// listing is kept.
func (v *HTTPVenue) RefreshListing(ctx context.Context) error {
	body, err := v.Network.Get(ctx, v.Config.URL, nil)
	if err != nil {
		return fmt.Errorf("fetch listing: %w", err)
	}

	symbols, err := ParseListing(body, v.Config.SymbolsPath)
	if err != nil {
		return fmt.Errorf("parse listing from %s: %w", v.Config.URL, err)
	}

	v.symbols.Store(symbols)
	v.Logger.Debug("%s: fetched %d symbols", v.Config.Name, len(symbols))
	return nil
}

// -----------------------------------------------------------------------------

func (v *HTTPVenue) Symbols() []string {
	symbols, _ := v.symbols.Load().([]string)
	return symbols
}

// -----------------------------------------------------------------------------

// ParseListing extracts the symbol array from a JSON document.
func ParseListing(body []byte, path string) ([]string, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, err
	}

	if path != "" {
		for _, key := range strings.Split(path, ".") {
			obj, ok := doc.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%q: expected an object before key %q", path, key)
			}
			if doc, ok = obj[key]; !ok {
				return nil, fmt.Errorf("%q: key %q not found", path, key)
			}
		}
	}

	items, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("listing is %T, expected an array", doc)
	}

	symbols := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("listing item %d is %T, expected a string", i, item)
		}
		symbols = append(symbols, s)
	}
	return symbols, nil
}
