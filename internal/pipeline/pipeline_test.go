package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quailmap/place-enrich/internal/domain"
	"github.com/quailmap/place-enrich/internal/observability"
	"github.com/quailmap/place-enrich/internal/pipeline"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	index   atomic.Int64
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := int(m.index.Add(1) - 1)
	if i >= len(m.batches) {
		// block until context cancelled to simulate waiting for messages
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockTransformer struct {
	failKeys map[string]bool
}

func (m *mockTransformer) Transform(_ context.Context, raw domain.RawEvent) (domain.OutputEvent, error) {
	if m.failKeys[string(raw.Key)] {
		return domain.OutputEvent{}, errors.New("bad data")
	}
	return domain.OutputEvent{Key: raw.Key, Value: raw.Value}, nil
}

type mockLoader struct {
	loaded []domain.OutputEvent
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, events...)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMetrics() *observability.Metrics {
	// Use a fresh set of collectors to avoid "already registered" panics.
	return observability.NewMetricsForTesting()
}

// --- tests ---

func TestPipeline_Run_HappyPath(t *testing.T) {
	batch := []domain.RawEvent{
		makeRawEvent(t, "place-1", "Trafalgar Square"),
		makeRawEvent(t, "place-2", "Hyde Park"),
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	tfm := &mockTransformer{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, []byte("place-1"), ldr.loaded[0].Key)
	assert.NoError(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{} // no batches, will block
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_TransformErrorSkipsAndCommits(t *testing.T) {
	committed := false
	bad := makeRawEvent(t, "place-bad", "Nowhere")
	bad.Commit = func(_ context.Context) error {
		committed = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{bad}}}
	tfm := &mockTransformer{failKeys: map[string]bool{"place-bad": true}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.Empty(t, ldr.loaded)
	// Malformed messages are committed so they are not redelivered forever.
	assert.True(t, committed)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPipeline_Run_PartialTransformFailure(t *testing.T) {
	batch := []domain.RawEvent{
		makeRawEvent(t, "place-bad", "Nowhere"),
		makeRawEvent(t, "place-ok", "Hyde Park"),
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{batch}}
	tfm := &mockTransformer{failKeys: map[string]bool{"place-bad": true}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, tfm, ldr, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, []byte("place-ok"), ldr.loaded[0].Key)
}

func TestPipeline_Run_CommitsAfterLoad(t *testing.T) {
	committed := false
	raw := makeRawEvent(t, "place-3", "Greenwich Park")
	raw.Topic = "place-reports"
	raw.Commit = func(_ context.Context) error {
		committed = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	p := pipeline.New(ext, &mockTransformer{}, &mockLoader{}, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	assert.True(t, committed)
}

func TestPipeline_Run_LoadErrorDoesNotCommit(t *testing.T) {
	committed := false
	raw := makeRawEvent(t, "place-4", "Regent's Park")
	raw.Commit = func(_ context.Context) error {
		committed = true
		return nil
	}

	ext := &mockExtractor{batches: [][]domain.RawEvent{{raw}}}
	ldr := &mockLoader{err: errors.New("broker unavailable")}

	p := pipeline.New(ext, &mockTransformer{}, ldr, testLogger(), newTestMetrics(), 50)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err := p.Run(ctx)
	require.NoError(t, err)
	// The uncommitted offset leaves the batch for redelivery.
	assert.False(t, committed)
	assert.Error(t, p.CheckReadiness(context.Background()))
}

func TestPlaceTransformer_Transform(t *testing.T) {
	raw := makeRawEvent(t, "place-5", "Trafalgar Square")

	tfm := pipeline.NewTransformer(nil, testLogger())
	out, err := tfm.Transform(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []byte("place-5"), out.Key)

	var roundtrip domain.PlaceEvent
	require.NoError(t, json.Unmarshal(out.Value, &roundtrip))

	type eventSummary struct {
		ID   string
		Name string
		Lat  float64
		Lon  float64
	}

	expected := eventSummary{ID: "place-5", Name: "Trafalgar Square", Lat: 51.50809, Lon: -0.12806}
	actual := eventSummary{ID: roundtrip.ID, Name: roundtrip.Name, Lat: roundtrip.Geo.Lat, Lon: roundtrip.Geo.Lon}
	if diff := cmp.Diff(expected, actual); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
	// Enrichment is disabled, so no geocoding provenance is recorded.
	assert.Empty(t, roundtrip.GeoSource)
	assert.False(t, roundtrip.ProcessedAt.IsZero())
}

func TestPlaceTransformer_Transform_Invalid(t *testing.T) {
	raw := domain.RawEvent{Value: []byte("not json")}

	tfm := pipeline.NewTransformer(nil, testLogger())
	_, err := tfm.Transform(context.Background(), raw)
	assert.Error(t, err)
}

// --- helpers ---

func makeRawEvent(t *testing.T, id, name string) domain.RawEvent {
	t.Helper()
	data, err := json.Marshal(domain.RawPlaceReport{
		ID:       id,
		Name:     name,
		Lat:      "51.50809",
		Lon:      "-0.12806",
		Language: "en",
		Source:   "field-survey",
	})
	require.NoError(t, err)
	return domain.RawEvent{
		Key:   []byte(id),
		Value: data,
	}
}
