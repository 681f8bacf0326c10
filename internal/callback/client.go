// Package callback submits call-back requests to the external
// call-management service.
package callback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is the payload accepted by the scheduling endpoint.
type Request struct {
	Sender        string `json:"sender"`
	FullName      string `json:"full_name"`
	Phone         string `json:"phone"`
	PreferredTime string `json:"preferred_time"`
}

// Scheduler schedules a call-back with a human representative.
type Scheduler interface {
	Schedule(ctx context.Context, req Request) error
}

// Client is an HTTP Scheduler. Any transport error or non-2xx status is
// a scheduling failure.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a scheduler client for the given endpoint URL.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Schedule submits the call-back request.
func (c *Client) Schedule(ctx context.Context, req Request) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal callback request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build callback request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send callback request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("callback scheduler returned %s", resp.Status)
	}
	return nil
}
