package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"video-narrator/internal/config"
)

// RetryConfig configures retry behavior for HTTP requests.
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	BackoffFactor   float64
	RetryableStatus []int // HTTP status codes that should trigger a retry
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   config.DefaultMaxRetries,
		InitialDelay:  config.DefaultRetryDelayBase,
		BackoffFactor: 2.0,
		RetryableStatus: []int{
			http.StatusTooManyRequests,     // 429
			http.StatusInternalServerError, // 500
			http.StatusBadGateway,          // 502
			http.StatusServiceUnavailable,  // 503
			http.StatusGatewayTimeout,      // 504
		},
	}
}

// IsRetryableStatus reports whether a status code should trigger a retry.
func IsRetryableStatus(status int, retryable []int) bool {
	for _, s := range retryable {
		if s == status {
			return true
		}
	}
	return false
}

// DoWithRetryContext executes an HTTP request with retry and context support.
// The request body must be resettable (use bytes.NewReader or similar).
func DoWithRetryContext(ctx context.Context, client *http.Client, req *http.Request, cfg RetryConfig) (*http.Response, error) {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		reqClone := req.Clone(ctx)
		if req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("reset request body: %w", err)
			}
			reqClone.Body = body
		} else if seeker, ok := req.Body.(io.Seeker); ok {
			seeker.Seek(0, io.SeekStart)
		}

		resp, err := client.Do(reqClone)
		if err != nil {
			lastErr = err
		} else if IsRetryableStatus(resp.StatusCode, cfg.RetryableStatus) && attempt < cfg.MaxAttempts {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
		} else {
			return resp, nil
		}

		if attempt < cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", cfg.MaxAttempts, lastErr)
}

// RetryingDoer retries requests on transport errors and retryable status codes.
// It satisfies the Do(*http.Request) contract expected by API SDK clients.
type RetryingDoer struct {
	Client *http.Client
	Config RetryConfig
}

// NewRetryingDoer wraps client with the default retry configuration.
func NewRetryingDoer(client *http.Client) *RetryingDoer {
	return &RetryingDoer{Client: client, Config: DefaultRetryConfig()}
}

// Do executes req using the request's own context for cancellation.
func (d *RetryingDoer) Do(req *http.Request) (*http.Response, error) {
	return DoWithRetryContext(req.Context(), d.Client, req, d.Config)
}
