package nominatim

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/quailmap/place-enrich/internal/observability"
)

var retryableStatus = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// retryTransport reissues requests that fail with a retryable 5xx, doubling
// the backoff between attempts. Network errors and every other status pass
// through untouched. retries is the total attempt budget, so a backend that
// keeps returning 503 exhausts it and the final response is returned as-is.
type retryTransport struct {
	base    http.RoundTripper
	retries int
	backoff time.Duration
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	backoff := t.backoff
	for attempt := 1; ; attempt++ {
		resp, err := t.base.RoundTrip(req)
		if err != nil {
			return nil, err
		}
		if !retryableStatus[resp.StatusCode] || attempt >= t.retries {
			return resp, nil
		}

		// Drain so the connection can be reused by the next attempt.
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		t.metrics.HTTPRetries.Inc()
		t.logger.Warn("retrying request after server error",
			"status", resp.StatusCode,
			"attempt", attempt,
			"backoff", backoff)

		timer := t.clock.NewTimer(backoff)
		select {
		case <-req.Context().Done():
			timer.Stop()
			return nil, req.Context().Err()
		case <-timer.Chan():
		}
		backoff *= 2
	}
}

// newHTTPClient builds the pooled, retrying HTTP client used for all
// dispatches. PoolSize bounds both open and idle connections per host.
func newHTTPClient(opts Options, clk clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *http.Client {
	base := &http.Transport{
		MaxConnsPerHost:     opts.PoolSize,
		MaxIdleConnsPerHost: opts.PoolSize,
	}
	return &http.Client{
		Timeout: opts.Timeout,
		Transport: &retryTransport{
			base:    base,
			retries: opts.RetryCount,
			backoff: opts.Backoff,
			clock:   clk,
			logger:  logger,
			metrics: metrics,
		},
	}
}
