package domain

import (
	"context"
	"log/slog"
)

// EnrichWithGeocoding fills a place event's missing location data through
// the geocoder and stamps ProcessedAt. A report with a name but no
// coordinates is forward geocoded first; any event that ends up with
// coordinates gets structured address details via reverse geocoding. If
// geocoder is nil or a lookup stays unresolved, the event passes through
// with GeoSource "original" (graceful degradation).
func EnrichWithGeocoding(ctx context.Context, event PlaceEvent, geocoder Geocoder, logger *slog.Logger) PlaceEvent {
	event.ProcessedAt = clock.Now().UTC()

	if geocoder == nil {
		return event
	}

	if event.Geo == nil && event.Name != "" {
		coord := geocoder.Geocode(ctx, event.Name, event.Language)
		if coord == nil {
			logger.Warn("forward geocoding unresolved",
				"event_id", event.ID,
				"name", event.Name,
			)
			event.GeoSource = "original"
			return event
		}
		event.Geo = coord
		event.GeoSource = "forward"
		details := geocoder.ReverseGeocode(ctx, *coord, event.Language)
		event.Address = &details
		return event
	}

	if event.Geo != nil {
		details := geocoder.ReverseGeocode(ctx, *event.Geo, event.Language)
		event.Address = &details
		event.GeoSource = "reverse"
		return event
	}

	event.GeoSource = "original"
	return event
}
