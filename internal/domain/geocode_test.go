package domain

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock geocoder ---

type mockGeocoder struct {
	coord        *Coordinate
	details      AddressDetails
	forwardCalls int
	reverseCalls int
}

func (m *mockGeocoder) Geocode(_ context.Context, _, _ string) *Coordinate {
	m.forwardCalls++
	return m.coord
}

func (m *mockGeocoder) ReverseGeocode(_ context.Context, _ Coordinate, _ string) AddressDetails {
	m.reverseCalls++
	return m.details
}

func (m *mockGeocoder) DistanceMatrix(_ context.Context, _ string, _, _ Coordinate, _, _ string) DistanceMatrix {
	return DistanceMatrix{Distance: UnknownRegular, Duration: UnknownRegular}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestEnrichWithGeocoding_NilGeocoder(t *testing.T) {
	event := PlaceEvent{ID: "evt-1", Name: "Trafalgar Square"}

	result := EnrichWithGeocoding(context.Background(), event, nil, discardLogger())

	assert.Empty(t, result.GeoSource)
	assert.Nil(t, result.Geo)
	assert.False(t, result.ProcessedAt.IsZero())
}

func TestEnrichWithGeocoding_ForwardThenReverse(t *testing.T) {
	details := DefaultAddressDetails()
	details.City = "London"
	geo := &mockGeocoder{
		coord:   &Coordinate{Lat: 51.50809, Lon: -0.12806},
		details: details,
	}

	event := PlaceEvent{ID: "evt-2", Name: "Trafalgar Square"}

	result := EnrichWithGeocoding(context.Background(), event, geo, discardLogger())

	require.NotNil(t, result.Geo)
	assert.Equal(t, 51.50809, result.Geo.Lat)
	assert.Equal(t, -0.12806, result.Geo.Lon)
	assert.Equal(t, "forward", result.GeoSource)
	require.NotNil(t, result.Address)
	assert.Equal(t, "London", result.Address.City)
	assert.Equal(t, 1, geo.forwardCalls)
	assert.Equal(t, 1, geo.reverseCalls)
}

func TestEnrichWithGeocoding_ReverseOnly(t *testing.T) {
	details := DefaultAddressDetails()
	details.Street = "Whitehall"
	geo := &mockGeocoder{details: details}

	event := PlaceEvent{ID: "evt-3", Geo: &Coordinate{Lat: 51.50335, Lon: -0.12765}}

	result := EnrichWithGeocoding(context.Background(), event, geo, discardLogger())

	assert.Equal(t, "reverse", result.GeoSource)
	require.NotNil(t, result.Address)
	assert.Equal(t, "Whitehall", result.Address.Street)
	assert.Equal(t, 0, geo.forwardCalls)
	assert.Equal(t, 1, geo.reverseCalls)
}

func TestEnrichWithGeocoding_CoordsPreferredOverForward(t *testing.T) {
	geo := &mockGeocoder{details: DefaultAddressDetails()}

	// Has both coordinates and a name: reverse geocode wins.
	event := PlaceEvent{
		ID:   "evt-4",
		Name: "Trafalgar Square",
		Geo:  &Coordinate{Lat: 51.50809, Lon: -0.12806},
	}

	result := EnrichWithGeocoding(context.Background(), event, geo, discardLogger())

	assert.Equal(t, "reverse", result.GeoSource)
	assert.Equal(t, 0, geo.forwardCalls)
	assert.Equal(t, 1, geo.reverseCalls)
}

func TestEnrichWithGeocoding_UnresolvedForward(t *testing.T) {
	geo := &mockGeocoder{} // nil coord: name could not be resolved

	event := PlaceEvent{ID: "evt-5", Name: "XYZNONEXISTENT99"}

	result := EnrichWithGeocoding(context.Background(), event, geo, discardLogger())

	assert.Equal(t, "original", result.GeoSource)
	assert.Nil(t, result.Geo)
	assert.Nil(t, result.Address)
	assert.Equal(t, 1, geo.forwardCalls)
	assert.Equal(t, 0, geo.reverseCalls)
}

func TestEnrichWithGeocoding_NoLocationData(t *testing.T) {
	geo := &mockGeocoder{}

	event := PlaceEvent{ID: "evt-6"} // no coordinates, no name

	result := EnrichWithGeocoding(context.Background(), event, geo, discardLogger())

	assert.Equal(t, "original", result.GeoSource)
	assert.Equal(t, 0, geo.forwardCalls)
	assert.Equal(t, 0, geo.reverseCalls)
}
