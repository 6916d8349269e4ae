// Package nominatim implements a rate-limited, memoizing geocoding client
// for a self-hosted Nominatim instance. Forward and reverse lookups share a
// sliding-window limiter and an in-process cache; distance matrix queries
// are not supported by the backend and always return unknown values.
package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/quailmap/place-enrich/internal/domain"
	"github.com/quailmap/place-enrich/internal/observability"
)

// The backend reports an unresolvable location as a 200 with this error
// string. It is a valid empty result, not a failure.
const unableToGeocode = "Unable to geocode"

const rateLimitWindow = time.Second

// Options tunes request governance. Zero values take the defaults.
type Options struct {
	Timeout          time.Duration // per-request deadline (default 3s)
	QueriesPerSecond int           // sliding-window send cap (default 50)
	RetryCount       int           // total attempts per request (default 3)
	PoolSize         int           // connections per host (default 3)
	Backoff          time.Duration // initial retry backoff (default 250ms)
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = 3 * time.Second
	}
	if o.QueriesPerSecond <= 0 {
		o.QueriesPerSecond = 50
	}
	if o.RetryCount <= 0 {
		o.RetryCount = 3
	}
	if o.PoolSize <= 0 {
		o.PoolSize = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = 250 * time.Millisecond
	}
	return o
}

// Client talks to a Nominatim instance. It satisfies domain.Geocoder:
// lookups never return errors, only absent results, so a backend outage
// degrades enrichment instead of failing the pipeline.
type Client struct {
	baseURL  string
	username string
	password string

	httpClient *http.Client
	limiter    *slidingWindow
	logger     *slog.Logger
	metrics    *observability.Metrics

	// mu serializes cache lookup, dispatch, and cache write so concurrent
	// callers never duplicate an in-flight request for the same key.
	mu          sync.Mutex
	geocodeHist map[string]*domain.Coordinate
	reverseHist map[string]domain.AddressDetails
}

// NewClient builds a Client for the given endpoint. The endpoint may embed
// basic-auth credentials as "user:password@https://host"; plain HTTP is
// rejected because credentials would travel unencrypted.
func NewClient(endpoint string, opts Options, logger *slog.Logger, metrics *observability.Metrics) (*Client, error) {
	baseURL, username, password, err := parseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	return &Client{
		baseURL:     baseURL,
		username:    username,
		password:    password,
		httpClient:  newHTTPClient(opts, clock, logger, metrics),
		limiter:     newSlidingWindow(clock, opts.QueriesPerSecond, rateLimitWindow),
		logger:      logger,
		metrics:     metrics,
		geocodeHist: make(map[string]*domain.Coordinate),
		reverseHist: make(map[string]domain.AddressDetails),
	}, nil
}

// parseEndpoint splits optional "user:password@" credentials from the base
// URL. The split happens on the first "@" and the first ":" so passwords may
// contain either character only after the first occurrence.
func parseEndpoint(endpoint string) (baseURL, username, password string, err error) {
	baseURL = endpoint
	if creds, rest, found := strings.Cut(endpoint, "@"); found {
		username, password, _ = strings.Cut(creds, ":")
		baseURL = rest
	}
	if !strings.HasPrefix(baseURL, "https://") {
		return "", "", "", fmt.Errorf("nominatim: endpoint must use https: %q", endpoint)
	}
	return strings.TrimRight(baseURL, "/"), username, password, nil
}

// Geocode resolves a free-form address to a coordinate, or nil when the
// backend cannot place it. Results, including nil ones, are memoized under
// the lowercased address; failed dispatches are not.
func (c *Client) Geocode(ctx context.Context, address, language string) *domain.Coordinate {
	if language == "" {
		language = "en"
	}
	key := strings.ToLower(address)

	c.mu.Lock()
	defer c.mu.Unlock()

	if coord, ok := c.geocodeHist[key]; ok {
		c.metrics.GeocodeCache.WithLabelValues("search", "hit").Inc()
		return coord
	}
	c.metrics.GeocodeCache.WithLabelValues("search", "miss").Inc()

	params := url.Values{}
	params.Set("q", address)
	params.Set("accept-language", language)
	params.Set("format", "json")

	start := clock.Now()
	body, err := c.request(ctx, "search", params)
	c.metrics.GeocodeAPIDuration.WithLabelValues("search").Observe(clock.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("search", "error").Inc()
		c.logger.Error("geocode request failed", "error", err, "address", address)
		return nil
	}

	var coord *domain.Coordinate
	lat, okLat := floatField(body, "lat")
	lon, okLon := floatField(body, "lon", "lng")
	if okLat && okLon {
		coord = &domain.Coordinate{Lat: lat, Lon: lon}
		c.metrics.GeocodeRequests.WithLabelValues("search", "success").Inc()
	} else {
		c.metrics.GeocodeRequests.WithLabelValues("search", "empty").Inc()
		c.logger.Debug("geocode returned no match", "address", address)
	}

	c.geocodeHist[key] = coord
	return coord
}

// ReverseGeocode resolves a coordinate to address details. Every field is
// populated; lookups that fail or return no address object yield the unknown
// defaults. Keys are coordinates rounded to five decimal places, and only
// responses carrying an address object are memoized.
func (c *Client) ReverseGeocode(ctx context.Context, coord domain.Coordinate, language string) domain.AddressDetails {
	if language == "" {
		language = "en"
	}
	key := fmt.Sprintf("%.5f,%.5f", coord.Lat, coord.Lon)

	c.mu.Lock()
	defer c.mu.Unlock()

	if details, ok := c.reverseHist[key]; ok {
		c.metrics.GeocodeCache.WithLabelValues("reverse", "hit").Inc()
		return details
	}
	c.metrics.GeocodeCache.WithLabelValues("reverse", "miss").Inc()

	details := domain.DefaultAddressDetails()

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coord.Lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(coord.Lon, 'f', -1, 64))
	params.Set("accept-language", language)
	params.Set("format", "json")

	start := clock.Now()
	body, err := c.request(ctx, "reverse", params)
	c.metrics.GeocodeAPIDuration.WithLabelValues("reverse").Observe(clock.Since(start).Seconds())
	if err != nil {
		c.metrics.GeocodeRequests.WithLabelValues("reverse", "error").Inc()
		c.logger.Error("reverse geocode request failed", "error", err, "key", key)
		return details
	}

	address, ok := body["address"].(map[string]any)
	if !ok {
		c.metrics.GeocodeRequests.WithLabelValues("reverse", "empty").Inc()
		c.logger.Debug("reverse geocode returned no address", "key", key)
		return details
	}

	details = mapAddressDetails(address)
	c.metrics.GeocodeRequests.WithLabelValues("reverse", "success").Inc()
	c.reverseHist[key] = details
	return details
}

// DistanceMatrix is not supported by the Nominatim backend. It logs once per
// call and returns unknown values without dispatching anything.
func (c *Client) DistanceMatrix(_ context.Context, mode string, _, _ domain.Coordinate, _, _ string) domain.DistanceMatrix {
	c.logger.Warn("distance matrix queries are not supported by this backend", "mode", mode)
	return domain.DistanceMatrix{Distance: domain.UnknownRegular, Duration: domain.UnknownRegular}
}

// request dispatches one rate-limited call to the given service path and
// decodes the JSON body. A 200 carrying an "Unable to geocode" error is a
// valid empty result and comes back as an empty map.
func (c *Client) request(ctx context.Context, service string, params url.Values) (map[string]any, error) {
	waited, err := c.limiter.acquire(ctx)
	if err != nil {
		return nil, err
	}
	c.metrics.RateLimitWait.Observe(waited.Seconds())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+service+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("nominatim: building request: %w", err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim: %s request: %w", service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	body, err := decodeBody(resp.Body)
	if err != nil {
		return nil, err
	}

	if reason, ok := body["error"].(string); ok {
		if reason == unableToGeocode {
			return map[string]any{}, nil
		}
		return nil, &ProviderError{Reason: reason}
	}
	return body, nil
}

// decodeBody parses a JSON object, or an array whose first element is used.
// The search service returns arrays, reverse returns a bare object.
func decodeBody(r io.Reader) (map[string]any, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("nominatim: reading response: %w", err)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("nominatim: decoding response: %w", err)
	}

	switch v := payload.(type) {
	case map[string]any:
		return v, nil
	case []any:
		if len(v) == 0 {
			return map[string]any{}, nil
		}
		if m, ok := v[0].(map[string]any); ok {
			return m, nil
		}
		return nil, errors.New("nominatim: unexpected array element in response")
	default:
		return nil, fmt.Errorf("nominatim: unexpected response type %T", payload)
	}
}
