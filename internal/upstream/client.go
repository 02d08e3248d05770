package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/singleflight"

	apperrors "github.com/korattejas/beautyden-nextjs-sub001/pkg/errors"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/logger"
	"github.com/korattejas/beautyden-nextjs-sub001/pkg/metrics"
)

const maxBodyBytes = 10 << 20

// Config configures one backend client.
type Config struct {
	Name            string
	BaseURL         string
	Timeout         time.Duration
	MaxRetries      int
	RequireAuth     bool
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client talks to one backend base URL. Every response goes through the
// decoder, so callers always receive decrypted, typed data.
type Client struct {
	name        string
	baseURL     string
	requireAuth bool
	maxRetries  int
	timeout     time.Duration
	http        *http.Client
	decoder     *Decoder
	breaker     *gobreaker.CircuitBreaker
	group       singleflight.Group
	logger      *logger.Logger
	metrics     *metrics.Metrics
}

func NewClient(cfg Config, decoder *Decoder, log *logger.Logger, m *metrics.Metrics) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	c := &Client{
		name:        cfg.Name,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		requireAuth: cfg.RequireAuth,
		maxRetries:  cfg.MaxRetries,
		timeout:     cfg.Timeout,
		http:        &http.Client{Timeout: cfg.Timeout},
		decoder:     decoder,
		logger:      log,
		metrics:     m,
	}

	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    cfg.Name,
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isServerSide(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("upstream circuit breaker state changed", "client", name, "from", from.String(), "to", to.String())
			m.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return c
}

// Name returns the client name used in logs and metrics.
func (c *Client) Name() string {
	return c.name
}

// Get fetches path with query and decodes the result into out. Identical
// concurrent anonymous GETs share one backend round trip.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	build := func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	}

	if c.requireAuth {
		body, err := c.execute(ctx, path, build, true)
		if err != nil {
			return err
		}
		return c.decode(body, out)
	}

	// The shared call must outlive any single caller; each caller still stops
	// waiting when its own ctx ends.
	ch := c.group.DoChan(u, func() (interface{}, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.sharedTimeout())
		defer cancel()
		return c.execute(shared, path, build, true)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return c.decode(res.Val.([]byte), out)
	}
}

// sharedTimeout bounds a coalesced GET across all of its attempts.
func (c *Client) sharedTimeout() time.Duration {
	attempts := c.maxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	return time.Duration(attempts+1) * c.timeout
}

// PostJSON sends body as JSON.
func (c *Client) PostJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apperrors.NewBadRequest("invalid request body", err)
	}

	respBody, err := c.execute(ctx, path, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}, false)
	if err != nil {
		return err
	}
	return c.decode(respBody, out)
}

// PostForm sends fields as a multipart form, which the backend's auth
// endpoints expect.
func (c *Client) PostForm(ctx context.Context, path string, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return apperrors.NewBadRequest("invalid form field", err)
		}
	}
	if err := w.Close(); err != nil {
		return apperrors.NewInternal(err)
	}
	payload := buf.Bytes()
	contentType := w.FormDataContentType()

	respBody, err := c.execute(ctx, path, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", contentType)
		return req, nil
	}, false)
	if err != nil {
		return err
	}
	return c.decode(respBody, out)
}

func (c *Client) decode(body []byte, out interface{}) error {
	if err := c.decoder.Decode(body, out); err != nil {
		if apperrors.HasCode(err, apperrors.ErrDecryption) {
			c.metrics.DecryptFailures.WithLabelValues(c.name).Inc()
		}
		c.logger.Error(err, "failed to decode upstream response", "client", c.name)
		return err
	}
	return nil
}

type requestBuilder func(ctx context.Context) (*http.Request, error)

// execute runs one logical request through the breaker, retrying idempotent
// requests on server-side failures.
func (c *Client) execute(ctx context.Context, endpoint string, build requestBuilder, idempotent bool) ([]byte, error) {
	attempt := 0
	var body []byte

	op := func() error {
		attempt++
		if attempt > 1 {
			c.metrics.UpstreamRetries.WithLabelValues(c.name, endpoint).Inc()
		}

		res, err := c.breaker.Execute(func() (interface{}, error) {
			return c.roundTrip(ctx, endpoint, build)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(apperrors.NewUpstream("service temporarily unavailable", err))
			}
			if !idempotent || !isRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		body = res.([]byte)
		return nil
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 200 * time.Millisecond
	eb.MaxElapsedTime = 0

	retries := c.maxRetries
	if !idempotent || retries < 0 {
		retries = 0
	}
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)

	if err := backoff.Retry(op, b); err != nil {
		c.logger.WithContext(ctx).Error(err, "upstream request failed", "client", c.name, "endpoint", endpoint, "attempts", attempt)
		return nil, err
	}
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, endpoint string, build requestBuilder) ([]byte, error) {
	req, err := build(ctx)
	if err != nil {
		return nil, apperrors.NewInternal(err)
	}
	req.Header.Set("Accept", "application/json")

	creds := credentialsFrom(ctx)
	if c.requireAuth && creds != nil {
		token, err := creds.Token(ctx)
		if err != nil {
			return nil, apperrors.NewInternal(fmt.Errorf("failed to read auth token: %w", err))
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.UpstreamLatency.WithLabelValues(c.name, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(c.name, endpoint, "error").Inc()
		if isTimeout(err) {
			return nil, apperrors.NewUpstreamTimeout(err)
		}
		return nil, apperrors.NewUpstream("backend unreachable", err)
	}
	defer resp.Body.Close()

	c.metrics.UpstreamRequests.WithLabelValues(c.name, endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.NewUpstreamTimeout(err)
		}
		return nil, apperrors.NewUpstream("failed to read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if c.requireAuth {
			if creds != nil {
				if err := creds.Purge(ctx); err != nil {
					c.logger.Error(err, "failed to purge credentials after 401", "client", c.name)
				}
			}
			return nil, apperrors.ErrSessionExpired
		}
		return nil, apperrors.Unauthorized(nil)
	case resp.StatusCode == http.StatusForbidden:
		return nil, &apperrors.AppError{Code: apperrors.ErrForbidden, Message: errorMessage(body, "forbidden")}
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NewNotFound(endpoint, nil)
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		return nil, apperrors.NewBadRequest(errorMessage(body, "request rejected by backend"), nil)
	case resp.StatusCode >= 500:
		return nil, apperrors.NewUpstream(fmt.Sprintf("backend returned %d", resp.StatusCode), nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, apperrors.NewUpstream(errorMessage(body, fmt.Sprintf("backend returned %d", resp.StatusCode)), nil)
	}

	return body, nil
}

func errorMessage(body []byte, fallback string) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	return fallback
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// isServerSide reports failures that should count against the breaker.
func isServerSide(err error) bool {
	appErr, ok := apperrors.As(err)
	if !ok {
		return true
	}
	switch appErr.Code {
	case apperrors.ErrUpstream, apperrors.ErrUpstreamTimeout, apperrors.ErrInternal:
		return true
	}
	return false
}

func isRetryable(err error) bool {
	return apperrors.HasCode(err, apperrors.ErrUpstream)
}
