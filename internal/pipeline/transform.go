package pipeline

import (
	"context"
	"log/slog"

	"github.com/quailmap/place-enrich/internal/domain"
)

// PlaceTransformer implements Transformer using the domain transform
// functions with optional geocoding enrichment.
type PlaceTransformer struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a PlaceTransformer. Pass a nil geocoder to disable
// geocoding enrichment.
func NewTransformer(geocoder domain.Geocoder, logger *slog.Logger) *PlaceTransformer {
	return &PlaceTransformer{
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *PlaceTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	event, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.OutputEvent{}, err
	}

	event = domain.EnrichWithGeocoding(ctx, event, t.geocoder, t.logger)

	return domain.SerializePlaceEvent(event)
}
