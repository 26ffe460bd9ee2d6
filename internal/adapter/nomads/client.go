// Package nomads fetches GFS wave bulletins from the NOMADS HTTP server.
package nomads

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/couchcryptid/wave-bulletin-service/internal/domain"
	"github.com/couchcryptid/wave-bulletin-service/internal/observability"
)

const userAgent = "wave-bulletin-service/1.0"

const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 4 * time.Second
)

// pathTemplates are the known bulletin locations under the GFS production
// tree, newest layout first. Older layouts are kept because NOMADS has
// moved the bulls directory before. Arguments: YYYYMMDD, HH, station id.
var pathTemplates = []string{
	"gfs.%[1]s/%[2]s/wave/gridded/bulls.t%[2]sz/%[3]s.bull",
	"gfs.%[1]s/%[2]s/wave/bulls.t%[2]sz/%[3]s.bull",
	"gfs.%[1]s/%[2]s/wave/bulls.t%[2]sz/bulls.%[3]s.bull",
}

// Client downloads station bulletins over plain HTTP GET.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a NOMADS client. baseURL points at the GFS production
// directory, without a trailing slash.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger:  logger,
		metrics: metrics,
	}
}

func (c *Client) candidateURLs(station string, cycle domain.ModelCycle) []string {
	urls := make([]string, 0, len(pathTemplates))
	for _, templ := range pathTemplates {
		rel := fmt.Sprintf(templ, cycle.YMD(), cycle.HH(), station)
		urls = append(urls, c.baseURL+"/"+rel)
	}
	return urls
}

// ProbeExists reports whether a bulletin is published for the station at the
// given cycle. Probing uses GET rather than HEAD because NOMADS is known to
// block HEAD requests; the body is discarded without reading.
func (c *Client) ProbeExists(ctx context.Context, station string, cycle domain.ModelCycle) (bool, error) {
	for _, u := range c.candidateURLs(station, cycle) {
		status, err := c.probeOne(ctx, u)
		if err != nil {
			c.metrics.ProbeRequests.WithLabelValues("error").Inc()
			return false, fmt.Errorf("%w: probe %s: %v", domain.ErrFetchFailed, u, err)
		}
		if status == http.StatusOK {
			c.metrics.ProbeRequests.WithLabelValues("found").Inc()
			c.logger.Debug("bulletin found", "url", u, "cycle", cycle.String())
			return true, nil
		}
	}
	c.metrics.ProbeRequests.WithLabelValues("absent").Inc()
	return false, nil
}

func (c *Client) probeOne(ctx context.Context, url string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Fetch downloads the bulletin text for the station at the given cycle.
// A cycle whose bulletin is absent at every known path yields
// domain.ErrBulletinNotFound without retrying; transport failures and
// server errors are retried with exponential backoff and end in
// domain.ErrFetchFailed.
func (c *Client) Fetch(ctx context.Context, station string, cycle domain.ModelCycle) (string, error) {
	start := time.Now()
	defer func() {
		c.metrics.FetchDuration.Observe(time.Since(start).Seconds())
	}()

	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.metrics.FetchRetries.Inc()
			if !sleepWithContext(ctx, backoff) {
				break
			}
			backoff = nextBackoff(backoff, maxBackoff)
		}

		text, err := c.fetchOnce(ctx, station, cycle)
		if err == nil {
			c.metrics.FetchRequests.WithLabelValues("success").Inc()
			return text, nil
		}
		if err == errNotFound {
			c.metrics.FetchRequests.WithLabelValues("not_found").Inc()
			return "", fmt.Errorf("%w: station %s cycle %s", domain.ErrBulletinNotFound, station, cycle.String())
		}

		lastErr = err
		c.logger.Warn("bulletin download failed",
			"station", station, "cycle", cycle.String(), "attempt", attempt, "error", err)
	}

	c.metrics.FetchRequests.WithLabelValues("error").Inc()
	return "", fmt.Errorf("%w: station %s cycle %s: %v", domain.ErrFetchFailed, station, cycle.String(), lastErr)
}

// errNotFound distinguishes "bulletin does not exist" from transient failure
// inside a single fetch pass.
var errNotFound = fmt.Errorf("bulletin not published")

func (c *Client) fetchOnce(ctx context.Context, station string, cycle domain.ModelCycle) (string, error) {
	var lastErr error
	notFound := 0

	for _, u := range c.candidateURLs(station, cycle) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			body, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = fmt.Errorf("read body: %w", err)
				continue
			}
			return string(body), nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			notFound++
		default:
			resp.Body.Close()
			lastErr = fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
		}
	}

	if notFound == len(pathTemplates) {
		return "", errNotFound
	}
	if lastErr == nil {
		lastErr = errNotFound
	}
	return "", lastErr
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
