// Package calendar creates reminder events in the external calendar service.
package calendar

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
	"travel_crm_backend/platform/logger"

	"github.com/google/uuid"
)

// ErrDisabled is returned when no calendar service is configured.
var ErrDisabled = errors.New("calendar integration is not configured")

const eventDuration = 30 * time.Minute

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logger.Logger
}

type eventRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Metadata    map[string]string `json:"metadata"`
}

type eventResponse struct {
	ID string `json:"id"`
}

func NewClient(cfg config.CalendarConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.GetCalendarAPIURL(), "/"),
		apiKey:  cfg.GetCalendarAPIKey(),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

// CreateReminder creates a calendar event starting at start and returns the
// event id assigned by the calendar service.
func (c *Client) CreateReminder(ctx context.Context, title, description string, start time.Time, leadID uuid.UUID, leadName string) (string, error) {
	if c == nil || c.baseURL == "" {
		return "", ErrDisabled
	}

	body, err := json.Marshal(eventRequest{
		Title:       title,
		Description: description,
		Start:       start,
		End:         start.Add(eventDuration),
		Metadata: map[string]string{
			"leadId":   leadID.String(),
			"leadName": leadName,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal calendar event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("calendar request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= http.StatusBadRequest {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("calendar service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out eventResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode calendar response: %w", err)
	}
	if out.ID == "" {
		return "", errors.New("calendar service returned no event id")
	}

	c.log.Info("calendar reminder created", "eventId", out.ID, "leadId", leadID)
	return out.ID, nil
}
