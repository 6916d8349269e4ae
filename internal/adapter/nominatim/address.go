package nominatim

import (
	"fmt"
	"strconv"

	"github.com/quailmap/place-enrich/internal/domain"
)

// Nominatim spreads equivalent information across differently named keys
// depending on the OSM tagging of the area. Each list is tried in order and
// the first present key wins.
var (
	streetNumberKeys = []string{"house_number", "house_name"}
	streetKeys       = []string{"road", "street", "city_block", "retail"}
	postalKeys       = []string{"postcode"}
	countryKeys      = []string{"country", "country_code"}
	stateKeys        = []string{"region", "state"}
	cityKeys         = []string{"village", "town", "city", "municipality"}
	countyKeys       = []string{"county", "state_district"}
	neighborhoodKeys = []string{"neighbourhood", "allotments", "quarter"}
	sublocalityKeys  = []string{"city_district", "district", "borough", "suburb", "subdivision"}
)

// mapAddressDetails converts a Nominatim address object into AddressDetails.
// Street fields fall back to empty rather than "unknown" so the composed
// address strings stay readable for unnamed roads.
func mapAddressDetails(address map[string]any) domain.AddressDetails {
	details := domain.DefaultAddressDetails()
	details.StreetNumber = firstOf(address, streetNumberKeys, domain.UnknownEmpty)
	details.Street = firstOf(address, streetKeys, domain.UnknownEmpty)
	details.Address = fmt.Sprintf("%s %s", details.StreetNumber, details.Street)
	details.AddressEU = fmt.Sprintf("%s %s", details.Street, details.StreetNumber)
	details.Postal = firstOf(address, postalKeys, domain.UnknownRegular)
	details.Country = firstOf(address, countryKeys, domain.UnknownRegular)
	details.State = firstOf(address, stateKeys, domain.UnknownRegular)
	details.City = firstOf(address, cityKeys, domain.UnknownRegular)
	details.County = firstOf(address, countyKeys, domain.UnknownRegular)
	details.Neighborhood = firstOf(address, neighborhoodKeys, domain.UnknownRegular)
	details.Sublocality = firstOf(address, sublocalityKeys, domain.UnknownRegular)
	return details
}

func firstOf(m map[string]any, keys []string, fallback string) string {
	for _, key := range keys {
		if s, ok := m[key].(string); ok {
			return s
		}
	}
	return fallback
}

// floatField extracts a coordinate that the backend may encode as either a
// JSON number or a numeric string. Keys are tried in order.
func floatField(body map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := body[key].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
