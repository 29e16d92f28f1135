package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/NIKHIL-505/swiftchat-bot/internal/observability/metrics"
	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// ErrDeliveryFailed indicates the send exhausted its retries or received a
// non-retryable error status. Callers log it; it is never echoed back to the
// end user.
var ErrDeliveryFailed = errors.New("delivery: send failed")

// Config controls how the Kluster client behaves.
type Config struct {
	APIURL          string
	BotID           string
	APIToken        string
	Timeout         time.Duration
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	HTTPClient      *http.Client
	Logger          *logging.Logger
	Metrics         *metrics.BotMetrics
}

// Client sends transformed messages to the Kluster delivery API over a pooled
// keep-alive connection set.
type Client struct {
	apiURL      string
	botID       string
	apiToken    string
	httpClient  *http.Client
	maxAttempts int
	baseDelay   time.Duration
	logger      *logging.Logger
	metrics     *metrics.BotMetrics
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, errors.New("delivery: API token is required")
	}
	if strings.TrimSpace(cfg.BotID) == "" {
		return nil, errors.New("delivery: bot id is required")
	}
	apiURL := strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if apiURL == "" {
		return nil, errors.New("delivery: API url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 300 * time.Second
		}
		maxIdle := cfg.MaxIdleConns
		if maxIdle <= 0 {
			maxIdle = 50
		}
		idleTimeout := cfg.IdleConnTimeout
		if idleTimeout <= 0 {
			idleTimeout = 90 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        maxIdle,
				MaxIdleConnsPerHost: maxIdle,
				IdleConnTimeout:     idleTimeout,
			},
		}
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiURL:      apiURL,
		botID:       cfg.BotID,
		apiToken:    cfg.APIToken,
		httpClient:  httpClient,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
		metrics:     cfg.Metrics,
	}, nil
}

// Send delivers one message to userID, retrying transient failures with
// exponential backoff. Success is HTTP 200 or 201.
func (c *Client) Send(ctx context.Context, userID string, msg Message) error {
	payload := map[string]any{"to": userID}
	for k, v := range Transform(msg) {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("delivery: marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bots/%s/messages", c.apiURL, c.botID)
	var lastErr error
	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, attempt-1); err != nil {
				return err
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("delivery: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !shouldRetry(0, err) {
				return fmt.Errorf("delivery: http error: %w", err)
			}
			lastErr = err
			c.logRetry(userID, attempt, 0, err)
			continue
		}
		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("delivery: read response: %w", readErr)
		}
		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			c.metrics.ObserveOutbound("delivered")
			return nil
		}
		statusErr := fmt.Errorf("%w: status %d: %s", ErrDeliveryFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
		if !shouldRetry(resp.StatusCode, nil) {
			c.metrics.ObserveOutbound("failed")
			c.logFailure(userID, resp.StatusCode, body)
			return statusErr
		}
		lastErr = statusErr
		c.logRetry(userID, attempt, resp.StatusCode, statusErr)
	}
	c.metrics.ObserveOutbound("failed")
	c.logFailure(userID, 0, body)
	if lastErr != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, lastErr)
	}
	return ErrDeliveryFailed
}

// SendAsync delivers messages in the background. Failures are logged and
// counted but never block the conversation flow.
func (c *Client) SendAsync(userID string, msgs ...Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.httpClient.Timeout+time.Duration(c.maxAttempts)*c.baseDelay*8)
		defer cancel()
		for _, msg := range msgs {
			if err := c.Send(ctx, userID, msg); err != nil {
				c.logger.Error("send message failure",
					"user_mobile", userID,
					"kind", string(msg.Kind),
					"error", err,
				)
			}
		}
	}()
}

func (c *Client) sleep(ctx context.Context, retry int) error {
	delay := c.baseDelay * time.Duration(1<<retry)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(userID string, attempt, status int, err error) {
	c.logger.Warn("kluster send retry",
		"user_mobile", userID,
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func (c *Client) logFailure(userID string, status int, payload []byte) {
	c.logger.Error("error - kluster send message api",
		"user_mobile", userID,
		"response_code", status,
		"request_body", string(payload),
	)
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	return status >= 500 && status <= 599
}
