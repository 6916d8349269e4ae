package domain

import "context"

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves place names and coordinates.
//
// Implementations contain their own failures: a lookup that cannot be
// resolved (or whose request failed) returns nil from Geocode and the
// all-sentinel AddressDetails from ReverseGeocode, never an error. Callers
// that need to tell the two apart must rely on the implementation's
// logging and metrics.
type Geocoder interface {
	// Geocode resolves a free-form address to a coordinate, or nil.
	Geocode(ctx context.Context, address, language string) *Coordinate

	// ReverseGeocode resolves a coordinate to structured address fields,
	// falling back to category sentinels for anything the provider omits.
	ReverseGeocode(ctx context.Context, coord Coordinate, language string) AddressDetails

	// DistanceMatrix reports travel distance and duration between two
	// coordinates. Unsupported by the current provider; always returns the
	// unknown-valued default.
	DistanceMatrix(ctx context.Context, mode string, origin, dest Coordinate, language, units string) DistanceMatrix
}
