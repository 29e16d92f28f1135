package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NIKHIL-505/swiftchat-bot/pkg/logging"
)

// Client reports registration events to the stats API. With no API URL
// configured every call is a no-op, which keeps local development quiet.
type Client struct {
	apiURL     string
	httpClient *http.Client
	logger     *logging.Logger
}

func NewClient(apiURL string, httpClient *http.Client, logger *logging.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// ReportNewUser records a first-seen user. Fire-and-forget: failures are
// logged, never surfaced to the conversation flow.
func (c *Client) ReportNewUser(ctx context.Context, userID string) {
	if c.apiURL == "" {
		return
	}
	if err := c.post(ctx, "/registered-users", map[string]string{"mobile": userID}); err != nil {
		c.logger.Error("failed to report registered user", "user_mobile", userID, "error", err)
	}
}

// SaveProfile persists the registered profile.
func (c *Client) SaveProfile(ctx context.Context, userID, name, medium string) error {
	if c.apiURL == "" {
		return nil
	}
	return c.post(ctx, "/profiles", map[string]string{
		"mobile": userID,
		"name":   name,
		"medium": medium,
	})
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("stats: marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("stats: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("stats: http error: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("stats: unexpected status %d", resp.StatusCode)
	}
	return nil
}
