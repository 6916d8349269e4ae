package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseRawEvent deserializes a RawEvent's value into a PlaceEvent.
// It expects the flat JSON produced by the collector services.
func ParseRawEvent(raw RawEvent) (PlaceEvent, error) {
	var rec RawPlaceReport
	if err := json.Unmarshal(raw.Value, &rec); err != nil {
		return PlaceEvent{}, fmt.Errorf("parse raw event: %w", err)
	}

	event := PlaceEvent{
		ID:         rec.ID,
		Name:       strings.TrimSpace(rec.Name),
		Language:   rec.Language,
		Source:     rec.Source,
		RawPayload: raw.Value,
	}

	lat, okLat := parseCoordinate(rec.Lat)
	lon, okLon := parseCoordinate(rec.Lon)
	if okLat && okLon {
		event.Geo = &Coordinate{Lat: lat, Lon: lon}
	}

	if event.ID == "" {
		event.ID = generateID(event.Name, lat, lon, raw.Timestamp)
	}

	return event, nil
}

// parseCoordinate parses a wire-format coordinate string. Blank strings and
// garbage both report false rather than becoming a (0,0) coordinate in the
// Gulf of Guinea.
func parseCoordinate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// generateID produces a deterministic ID from the report's key fields.
// Deterministic IDs enable idempotent upserts downstream and replay safety:
// reprocessing the same raw report produces the same ID.
func generateID(name string, lat, lon float64, ts time.Time) string {
	input := fmt.Sprintf("%s|%.5f|%.5f|%d", strings.ToLower(name), lat, lon, ts.Unix())
	hash := sha256.Sum256([]byte(input))
	return "place-" + hex.EncodeToString(hash[:8])
}

// SerializePlaceEvent marshals an enriched event into its sink-topic form.
func SerializePlaceEvent(event PlaceEvent) (OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize place event: %w", err)
	}

	headers := map[string]string{
		"processed_at": event.ProcessedAt.Format(time.RFC3339),
	}
	if event.GeoSource != "" {
		headers["geo_source"] = event.GeoSource
	}

	return OutputEvent{
		Key:     []byte(event.ID),
		Value:   data,
		Headers: headers,
	}, nil
}
