// Package notify sends transactional email through the Resend API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.resend.com"

// ErrNotConfigured is returned when no API key was supplied.
var ErrNotConfigured = errors.New("email sender not configured")

type Email struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// permanentError is a rejection that retrying cannot fix.
type permanentError struct {
	err error
}

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	backoffs   []time.Duration
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		backoffs: []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// WithBackoffs replaces the retry delays. Mostly useful in tests.
func (c *Client) WithBackoffs(backoffs ...time.Duration) *Client {
	c.backoffs = backoffs
	return c
}

// Send delivers email and returns the provider's message id. Server errors
// and network failures are retried; 4xx responses are not.
func (c *Client) Send(ctx context.Context, email Email) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	jsonData, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email: %w", err)
	}

	var id string
	err = c.RetryWithBackoff(ctx, func() error {
		var sendErr error
		id, sendErr = c.send(ctx, jsonData)
		return sendErr
	}, len(c.backoffs)+1)
	return id, err
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return "", permanentError{fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("failed to send email: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", permanentError{fmt.Errorf("email rejected: status %d, body: %s", resp.StatusCode, string(respBody))}
	}

	var result sendResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", permanentError{fmt.Errorf("failed to decode response: %w, body: %s", err, string(respBody))}
	}
	return result.ID, nil
}

// RetryWithBackoff runs fn up to maxAttempts times, sleeping between attempts.
// It stops early on a permanent error or when ctx is done.
func (c *Client) RetryWithBackoff(ctx context.Context, fn func() error, maxAttempts int) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		lastErr = err
		if i < len(c.backoffs) && i < maxAttempts-1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			case <-time.After(c.backoffs[i]):
			}
		}
	}

	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}
