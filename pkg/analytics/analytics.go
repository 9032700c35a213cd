// Package analytics is a thin client for the product-analytics
// identify endpoint. Identification is opt-in: it only fires when the
// user has provided contact info.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether the client is configured at all.
func (c *Client) Enabled() bool {
	return c.endpoint != "" && c.apiKey != ""
}

type identifyRequest struct {
	APIKey     string            `json:"api_key"`
	DistinctID string            `json:"distinct_id"`
	Properties map[string]string `json:"properties"`
}

// Identify ties the user id to their contact info. A user without
// contact info is never identified.
func (c *Client) Identify(ctx context.Context, userID, email, name string) error {
	if !c.Enabled() {
		return nil
	}
	if email == "" && name == "" {
		return nil
	}

	props := map[string]string{}
	if email != "" {
		props["email"] = email
	}
	if name != "" {
		props["name"] = name
	}

	body, err := json.Marshal(identifyRequest{
		APIKey:     c.apiKey,
		DistinctID: userID,
		Properties: props,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/identify", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("analytics identify failed (%d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
