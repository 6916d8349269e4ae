package domain

import (
	"context"
	"time"
)

// RawPlaceReport is the flat JSON structure produced by the collectors.
// Coordinates travel as strings; blank means "not captured".
type RawPlaceReport struct {
	ID       string `json:"id"`
	Name     string `json:"name"` // free-form place name or postal address
	Lat      string `json:"lat"`
	Lon      string `json:"lon"`
	Language string `json:"language"` // BCP-47-ish tag for geocoding, e.g. "en"
	Source   string `json:"source"`   // collector identifier
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// PlaceEvent is the domain-rich representation after parsing and enrichment.
// Geo is nil when no coordinate could be captured or resolved; Address is
// nil until reverse geocoding fills it in.
type PlaceEvent struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Language string          `json:"language,omitempty"`
	Source   string          `json:"source,omitempty"`
	Geo      *Coordinate     `json:"geo,omitempty"`
	Address  *AddressDetails `json:"address,omitempty"`

	// GeoSource records how the coordinate/address data was obtained:
	// "forward", "reverse", or "original" (report used as-is).
	GeoSource string `json:"geo_source,omitempty"`

	RawPayload  []byte    `json:"-"`
	ProcessedAt time.Time `json:"processed_at"`
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
