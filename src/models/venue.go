package models

// MVenueInfo holds the static properties of a venue used by selection rules.
type MVenueInfo struct {
	Name      string          `json:"name"`
	Countries []string        `json:"countries"`
	Has       map[string]bool `json:"has"`
}

// MVenueRules restricts which venues take part in a run.
// With Blacklist set, a venue is dropped when it matches any rule instead of
// being kept only when it matches all of them.
type MVenueRules struct {
	Blacklist bool            `yaml:"blacklist"`
	Exclude   []string        `yaml:"exclude"`
	Countries []string        `yaml:"countries"`
	Has       map[string]bool `yaml:"has"`
}

// knownCapabilities lists the capability flags a rule may refer to.
var knownCapabilities = map[string]struct{}{
	"fetchTickers":   {},
	"fetchOrderBook": {},
	"createOrder":    {},
	"cancelOrder":    {},
	"fetchBalance":   {},
	"fetchOHLCV":     {},
	"fetchTrades":    {},
	"privateAPI":     {},
	"publicAPI":      {},
	"websocket":      {},
}

// IsKnownCapability reports whether a rule may refer to the capability flag.
func IsKnownCapability(name string) bool {
	_, ok := knownCapabilities[name]
	return ok
}
