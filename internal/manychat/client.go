// Package manychat sends replies back to Instagram subscribers through the
// ManyChat sendContent API, one call per chunk in order.
package manychat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beforest/forest-guide/internal/common/config"
	"github.com/beforest/forest-guide/internal/common/logger"
)

const sendContentPath = "/fb/sending/sendContent"

// Client is the outbound ManyChat API client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     logger.Logger
}

func NewClient(cfg config.ManyChatConfig, log logger.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Millisecond
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		logger:     log.WithFields(map[string]interface{}{"component": "manychat"}),
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendContentRequest struct {
	SubscriberID int64 `json:"subscriber_id"`
	Data         struct {
		Version string `json:"version"`
		Content struct {
			Type     string        `json:"type"`
			Messages []textMessage `json:"messages"`
		} `json:"content"`
	} `json:"data"`
}

type sendContentResponse struct {
	Status string `json:"status"`
}

// SendChunks delivers the reply chunks in order. The first failed chunk stops
// delivery and the error is returned; a missing API key fails loudly before
// any call is made.
func (c *Client) SendChunks(ctx context.Context, subscriberID int64, chunks []string) error {
	if c.apiKey == "" {
		return fmt.Errorf("manychat api key not configured")
	}

	for i, chunk := range chunks {
		if err := c.sendText(ctx, subscriberID, chunk); err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	c.logger.Info("reply delivered", map[string]interface{}{
		"subscriber_id": subscriberID,
		"chunks":        len(chunks),
	})
	return nil
}

func (c *Client) sendText(ctx context.Context, subscriberID int64, text string) error {
	var payload sendContentRequest
	payload.SubscriberID = subscriberID
	payload.Data.Version = "v2"
	payload.Data.Content.Type = "instagram"
	payload.Data.Content.Messages = []textMessage{{Type: "text", Text: text}}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendContentPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sendContent returned %d: %s", resp.StatusCode, raw)
	}

	var parsed sendContentResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Status != "" && parsed.Status != "success" {
		return fmt.Errorf("sendContent status %q: %s", parsed.Status, raw)
	}
	return nil
}
