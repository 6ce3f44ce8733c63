// Package telegram is the outbound message channel: a thin client for
// the Telegram Bot API sendMessage call.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const defaultAPIBase = "https://api.telegram.org"

// Client sends messages to users via the Telegram Bot API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	stubMode   bool
}

// NewClient creates a Telegram client. In stub mode Send logs the
// message instead of calling the API, for local development without a
// bot token.
func NewClient(token string, stubMode bool) *Client {
	return &Client{
		baseURL:    defaultAPIBase,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		stubMode:   stubMode,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a fake server.
func NewClientWithBaseURL(baseURL, token string) *Client {
	c := NewClient(token, false)
	c.baseURL = baseURL
	return c
}

// apiResponse is the Telegram Bot API envelope.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send delivers one message to a chat. A single attempt is made; the
// caller decides what a failure means.
func (c *Client) Send(ctx context.Context, chatID int64, text string) error {
	if c.stubMode {
		slog.Info("Telegram stub mode: message not sent", "chat_id", chatID, "length", len(text))
		return nil
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram returned status %d: %s", resp.StatusCode, string(body))
	}

	var result apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram API error: %s", result.Description)
	}

	return nil
}
