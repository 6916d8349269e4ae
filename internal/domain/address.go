package domain

// Unknown-value sentinels for fields the geocoding provider omits. The
// category depends on the field's expected shape: regular for most fields,
// small for narrow ones like street numbers, empty for street fields on
// unnamed roads.
const (
	UnknownRegular = "unknown"
	UnknownSmall   = "?"
	UnknownEmpty   = ""
)

// AddressDetails is the structured result of a reverse geocode lookup.
// Address and AddressEU combine street number and street in the two
// regional orderings ("10 Downing Street" vs "Downing Street 10").
type AddressDetails struct {
	StreetNumber string `json:"street_number"`
	Street       string `json:"street"`
	Address      string `json:"address"`
	AddressEU    string `json:"address_eu"`
	Postal       string `json:"postal"`
	Neighborhood string `json:"neighborhood"`
	Sublocality  string `json:"sublocality"`
	City         string `json:"city"`
	County       string `json:"county"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// DefaultAddressDetails returns an AddressDetails with every field at its
// category sentinel. Failed or unresolvable reverse lookups produce this.
func DefaultAddressDetails() AddressDetails {
	return AddressDetails{
		StreetNumber: UnknownSmall,
		Street:       UnknownRegular,
		Address:      UnknownRegular,
		AddressEU:    UnknownRegular,
		Postal:       UnknownRegular,
		Neighborhood: UnknownRegular,
		Sublocality:  UnknownRegular,
		City:         UnknownRegular,
		County:       UnknownRegular,
		State:        UnknownRegular,
		Country:      UnknownRegular,
	}
}

// DistanceMatrix is the stubbed travel-distance result. The backing
// provider has no distance API, so both fields stay at the regular
// sentinel; the type exists for callers that expect the operation.
type DistanceMatrix struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}
