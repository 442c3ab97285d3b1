package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/coconutick512/bot-for-crypt/internal/metrics"
	"github.com/coconutick512/bot-for-crypt/pkg/utils"
)

const maxResponseBytes = 4 << 20

// providerClient wraps one long-lived http.Client with the retry policy all
// adapters share: bounded attempts with linear backoff on transport errors
// and 5xx responses, and rate-limit responses honored via Retry-After
// instead of being retried in a tight loop.
type providerClient struct {
	provider string
	client   *http.Client
	attempts int
	delay    time.Duration
	headers  map[string]string
	logger   *logrus.Entry
	metrics  *metrics.Manager
}

// providerClientConfig holds the shared provider call policy
type providerClientConfig struct {
	Provider       string
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	Headers        map[string]string
}

func newProviderClient(cfg providerClientConfig, m *metrics.Manager) *providerClient {
	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &providerClient{
		provider: cfg.Provider,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		attempts: attempts,
		delay:    cfg.RetryDelay,
		headers:  cfg.Headers,
		logger:   utils.ComponentLogger("adapter").WithField("provider", cfg.Provider),
		metrics:  m,
	}
}

// getJSON performs a GET and decodes the JSON body into out
func (c *providerClient) getJSON(ctx context.Context, operation, url string, out interface{}) error {
	return c.doJSON(ctx, operation, http.MethodGet, url, nil, out)
}

// postJSON performs a POST with a JSON body and decodes the response into out
func (c *providerClient) postJSON(ctx context.Context, operation, url string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return utils.NewAppError(utils.ErrCodeInternal, "failed to encode request body", err.Error())
	}
	return c.doJSON(ctx, operation, http.MethodPost, url, payload, out)
}

func (c *providerClient) doJSON(ctx context.Context, operation, method, url string, payload []byte, out interface{}) error {
	var lastErr error

	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return utils.NewAppError(utils.ErrCodeExternalSource, "provider call canceled", ctx.Err().Error())
			case <-time.After(c.delay):
			}
		}

		body, retryable, err := c.doOnce(ctx, operation, method, url, payload)
		if err == nil {
			if decErr := json.Unmarshal(body, out); decErr != nil {
				return utils.NewAppError(utils.ErrCodeMalformedResponse,
					fmt.Sprintf("%s returned unparseable body", c.provider), decErr.Error())
			}
			return nil
		}

		lastErr = err
		if !retryable {
			break
		}
		c.logger.WithFields(logrus.Fields{
			"operation": operation,
			"attempt":   attempt,
			"error":     err.Error(),
		}).Warn("Provider call failed, retrying")
	}

	c.recordError(operation, "transport")
	return utils.NewAppError(utils.ErrCodeExternalSource,
		fmt.Sprintf("%s unreachable after %d attempts", c.provider, c.attempts), lastErr.Error())
}

// doOnce performs a single HTTP exchange. It reports whether a failure is
// worth another attempt.
func (c *providerClient) doOnce(ctx context.Context, operation, method, url string, payload []byte) ([]byte, bool, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, false, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.recordRequest(operation, "error", duration)
		return nil, ctx.Err() == nil, err
	}
	defer resp.Body.Close()

	c.recordRequest(operation, strconv.Itoa(resp.StatusCode), duration)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, false, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		c.waitForRateLimit(ctx, resp)
		return nil, true, fmt.Errorf("rate limited (429)")
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("provider http %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("provider http %d", resp.StatusCode)
	}
}

// waitForRateLimit sleeps until the provider's indicated reset window, with
// a cap so a hostile header cannot stall a sync run indefinitely.
func (c *providerClient) waitForRateLimit(ctx context.Context, resp *http.Response) {
	wait := c.delay
	if header := resp.Header.Get("Retry-After"); header != "" {
		if secs, err := strconv.Atoi(header); err == nil && secs > 0 {
			wait = time.Duration(secs) * time.Second
		}
	}
	if wait > 30*time.Second {
		wait = 30 * time.Second
	}

	c.logger.WithField("wait", wait.String()).Warn("Provider rate limit hit, backing off")

	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}
}

func (c *providerClient) recordRequest(operation, status string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.GetPrometheusMetrics().RecordProviderRequest(c.provider, operation, status, duration)
	}
}

func (c *providerClient) recordError(operation, kind string) {
	if c.metrics != nil {
		c.metrics.GetPrometheusMetrics().RecordProviderError(c.provider, kind)
	}
}
