package httpclient

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"

	"github.com/printcraft/customizer-engine/internal/platform/logging"
)

// jitterFraction spreads each backoff delay by up to ±25% so a burst of
// gallery downloads retrying against the same origin does not re-sync.
const jitterFraction = 0.25

// doWithRetry runs the request up to maxAttempts times with exponential
// backoff between attempts. The body is buffered once up front so every
// attempt replays the same bytes. The response lands in resp instead of a
// return value to keep the bodyclose linter honest; closing it is the
// caller's job.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request, resp **http.Response) error {
	maxAttempts := c.retryCfg.maxAttempts
	if maxAttempts <= 0 {
		return fmt.Errorf("httpclient: maxAttempts must be >= 1, got %d", maxAttempts)
	}

	payload, err := captureRequestBody(req)
	if err != nil {
		return err
	}

	var lastErr error

	for attempt := range maxAttempts {
		if attempt > 0 {
			if err := c.pauseBeforeRetry(ctx, req, attempt, lastErr); err != nil {
				return err
			}
		}

		rewindRequestBody(req, payload)

		res, err := c.httpClient.Do(req)
		switch {
		case err != nil:
			lastErr = err
			if !isRetryable(err) {
				return err
			}

		case !isRetryableStatus(res.StatusCode):
			*resp = res
			return nil

		case attempt == maxAttempts-1:
			// Out of attempts: hand the response back unread so the
			// caller can inspect the body.
			*resp = res
			return fmt.Errorf("HTTP %d from %s", res.StatusCode, c.serviceName)

		default:
			lastErr = fmt.Errorf("HTTP %d from %s", res.StatusCode, c.serviceName)
			discardBody(res)
		}
	}

	return lastErr
}

// captureRequestBody slurps and closes the body so it can be replayed across
// attempts. A nil body stays nil.
func captureRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}

	payload, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	_ = req.Body.Close()

	return payload, nil
}

func rewindRequestBody(req *http.Request, payload []byte) {
	if payload == nil {
		return
	}
	req.Body = io.NopCloser(bytes.NewReader(payload))
	req.ContentLength = int64(len(payload))
}

// discardBody empties the response so the underlying connection can be
// reused for the next attempt.
func discardBody(res *http.Response) {
	_, _ = io.Copy(io.Discard, res.Body)
	_ = res.Body.Close()
}

// pauseBeforeRetry logs the upcoming attempt and sleeps out the backoff,
// bailing early if the request context is done.
func (c *Client) pauseBeforeRetry(ctx context.Context, req *http.Request, attempt int, lastErr error) error {
	delay := backoff(attempt, c.retryCfg)

	logging.FromContext(ctx).WarnContext(ctx, "retrying HTTP request",
		slog.String("operation", "httpclient.Do"),
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.String("peer_service", c.serviceName),
		slog.Int("attempt", attempt+1),
		slog.Int("max_attempts", c.retryCfg.maxAttempts),
		slog.Duration("backoff", delay),
		slog.Any("error", lastErr),
	)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

// backoff returns the delay before retry number attempt (1-indexed). The
// base grows by multiplier each attempt, is capped at maxInterval, then
// jitter is applied on top of the capped value.
func backoff(attempt int, cfg retryConfig) time.Duration {
	base := float64(cfg.initialInterval) * math.Pow(cfg.multiplier, float64(attempt-1))
	base = math.Min(base, float64(cfg.maxInterval))

	jittered := base + base*jitterFraction*(2*secureRandFloat64()-1)

	return time.Duration(math.Max(jittered, 0))
}

// float64 carries 53 significand bits; the top 53 bits of a random uint64
// divided by 2^53 give a uniform value in [0, 1).
const significandBits = 53

func secureRandFloat64() float64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0
	}
	return float64(binary.BigEndian.Uint64(b[:])>>(64-significandBits)) / float64(uint64(1)<<significandBits)
}

// isRetryable reports whether a transport-level error is worth another
// attempt. Context cancellation and deadline expiry are terminal; network
// errors and anything unrecognized get retried.
func isRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return true
}

// isRetryableStatus reports whether the origin's status can heal on retry.
// 429 and 5xx can; everything else, including other 4xx, cannot.
func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError
}
