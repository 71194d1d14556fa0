package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"video-narrator/internal/config"
	internalhttp "video-narrator/internal/http"
	"video-narrator/internal/logger"
)

// ErrInvalidAPIKey is returned when the API rejects the key.
var ErrInvalidAPIKey = errors.New("Invalid api key.")

// ErrMissingAPIKey is returned when no key was entered.
var ErrMissingAPIKey = errors.New("Please enter OpenAI API key to continue.")

// NewOpenAIClient creates an API client that shares the pooled HTTP client and retries
// rate limits and server errors. An empty baseURL uses the public endpoint.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	cfg.HTTPClient = internalhttp.NewRetryingDoer(internalhttp.OpenAIClient)
	return openai.NewClientWithConfig(cfg)
}

// CheckAPIKey verifies the key by listing models.
// Returns ErrInvalidAPIKey on an authentication failure and the wrapped error otherwise.
func CheckAPIKey(ctx context.Context, client *openai.Client) error {
	ctx, cancel := context.WithTimeout(ctx, config.APIKeyCheckTimeout)
	defer cancel()

	if _, err := client.ListModels(ctx); err != nil {
		if IsAuthError(err) {
			logger.Warn("OpenAI: API key rejected")
			return ErrInvalidAPIKey
		}
		return fmt.Errorf("failed to verify API key: %w", err)
	}

	logger.Debug("OpenAI: API key verified")
	return nil
}

// IsAuthError reports whether err is an HTTP 401 from the API.
func IsAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusUnauthorized
	}
	return false
}

// describeAPIError turns SDK errors into messages suitable for the UI.
func describeAPIError(operation string, err error) error {
	if IsAuthError(err) {
		return ErrInvalidAPIKey
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Errorf("OpenAI %s API error: %s: %w", operation, apiErr.Message, err)
	}
	return fmt.Errorf("OpenAI %s request failed: %w", operation, err)
}
