package aggregator

import (
	"errors"
	"testing"

	"venue-collections/src/helpers"
	"venue-collections/src/interfaces"
	"venue-collections/src/models"
)

func venueWith(name string, countries []string, has map[string]bool) *fakeVenue {
	v := newFake(name)
	v.info = models.MVenueInfo{Name: name, Countries: countries, Has: has}
	return v
}

func names(vs []interfaces.IVenue) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Name()
	}
	return out
}

// -----------------------------------------------------------------------------

func TestSelectVenues(t *testing.T) {
	all := venues(
		venueWith("us-full", []string{"US"}, map[string]bool{"fetchTickers": true, "createOrder": true}),
		venueWith("us-read", []string{"US", "CA"}, map[string]bool{"fetchTickers": true}),
		venueWith("jp", []string{"JP"}, map[string]bool{"fetchTickers": false}),
		venueWith("bare", nil, nil),
	)

	tests := []struct {
		name  string
		rules models.MVenueRules
		want  []string
	}{
		{
			name:  "no rules keeps every venue",
			rules: models.MVenueRules{},
			want:  []string{"us-full", "us-read", "jp", "bare"},
		},
		{
			name:  "whitelist by country",
			rules: models.MVenueRules{Countries: []string{"US"}},
			want:  []string{"us-full", "us-read"},
		},
		{
			name:  "whitelist needs every country",
			rules: models.MVenueRules{Countries: []string{"US", "CA"}},
			want:  []string{"us-read"},
		},
		{
			name:  "whitelist by capability",
			rules: models.MVenueRules{Has: map[string]bool{"createOrder": true}},
			want:  []string{"us-full"},
		},
		{
			name:  "missing capability counts as false",
			rules: models.MVenueRules{Has: map[string]bool{"fetchTickers": false}},
			want:  []string{"jp", "bare"},
		},
		{
			name:  "blacklist drops a venue matching any rule",
			rules: models.MVenueRules{Blacklist: true, Countries: []string{"JP"}, Has: map[string]bool{"createOrder": true}},
			want:  []string{"us-read", "bare"},
		},
		{
			name:  "exclude by name",
			rules: models.MVenueRules{Exclude: []string{"us-read", "bare"}},
			want:  []string{"us-full", "jp"},
		},
		{
			name:  "exclude applies under blacklist",
			rules: models.MVenueRules{Blacklist: true, Exclude: []string{"us-full"}, Countries: []string{"JP"}},
			want:  []string{"us-read", "bare"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectVenues(all, tt.rules)
			if err != nil {
				t.Fatalf("SelectVenues() error = %v", err)
			}
			gotNames := names(got)
			if len(gotNames) != len(tt.want) {
				t.Fatalf("SelectVenues() = %v, want %v", gotNames, tt.want)
			}
			for i := range gotNames {
				if gotNames[i] != tt.want[i] {
					t.Fatalf("SelectVenues() = %v, want %v", gotNames, tt.want)
				}
			}
		})
	}
}

// -----------------------------------------------------------------------------

func TestSelectVenuesRejectsUnknownCapability(t *testing.T) {
	_, err := SelectVenues(venues(newFake("A")), models.MVenueRules{Has: map[string]bool{"teleport": true}})

	var validationErr *helpers.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
}

// -----------------------------------------------------------------------------

func TestVenuesForSymbol(t *testing.T) {
	result := models.NewMCollections()
	result.Collections["BTC/USD"] = []string{"A", "B"}
	result.SinglyAvailable["ETH/BTC"] = "C"

	got, err := VenuesForSymbol(result, "BTC/USD")
	if err != nil || len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Errorf("VenuesForSymbol(BTC/USD) = %v, %v", got, err)
	}

	// The returned slice is a copy.
	got[0] = "Z"
	if result.Collections["BTC/USD"][0] != "A" {
		t.Error("VenuesForSymbol returned the stored slice")
	}

	got, err = VenuesForSymbol(result, "ETH/BTC")
	if err != nil || len(got) != 1 || got[0] != "C" {
		t.Errorf("VenuesForSymbol(ETH/BTC) = %v, %v", got, err)
	}

	var notFound *helpers.SymbolNotFoundError
	if _, err := VenuesForSymbol(result, "DOGE/USD"); !errors.As(err, &notFound) {
		t.Errorf("VenuesForSymbol(DOGE/USD) error = %v, want *SymbolNotFoundError", err)
	}
	if _, err := VenuesForSymbol(nil, "BTC/USD"); !errors.As(err, &notFound) {
		t.Errorf("VenuesForSymbol(nil) error = %v, want *SymbolNotFoundError", err)
	}
}
