// Package push delivers device notifications through an Expo-compatible
// push API.
package push

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

	"travel_crm_backend/platform/config"
)

// ErrDisabled is returned when PUSH_API_URL is not set.
var ErrDisabled = errors.New("push delivery is not configured")

// Message is one device notification.
type Message struct {
	Token  string
	Title  string
	Body   string
	Type   string
	LeadID string
}

type Client struct {
	url   string
	token string
	http  *http.Client
}

type requestData struct {
	Type   string `json:"type"`
	LeadID string `json:"leadId,omitempty"`
}

type request struct {
	To    string      `json:"to"`
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Sound string      `json:"sound,omitempty"`
	Data  requestData `json:"data"`
}

type ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

type response struct {
	Data ticket `json:"data"`
}

func NewClient(cfg config.PushConfig) *Client {
	return &Client{
		url:   strings.TrimSpace(cfg.GetPushAPIURL()),
		token: cfg.GetPushAccessToken(),
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts a single message. A ticket with status "error" is reported as
// an error even when the HTTP status is 200.
func (c *Client) Send(ctx context.Context, msg Message) error {
	if c == nil || c.url == "" {
		return ErrDisabled
	}
	if strings.TrimSpace(msg.Token) == "" {
		return errors.New("push: empty device token")
	}

	body, err := json.Marshal(request{
		To:    msg.Token,
		Title: msg.Title,
		Body:  msg.Body,
		Sound: "default",
		Data:  requestData{Type: msg.Type, LeadID: msg.LeadID},
	})
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("push api returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out response
	if len(raw) > 0 && json.Unmarshal(raw, &out) == nil && out.Data.Status == "error" {
		return fmt.Errorf("push rejected: %s", out.Data.Message)
	}
	return nil
}
