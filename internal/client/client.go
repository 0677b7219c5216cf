// internal/client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/MereWhiplash/neurocat/internal/api"
	"github.com/MereWhiplash/neurocat/internal/intensity"
	"github.com/MereWhiplash/neurocat/internal/service"
	"github.com/MereWhiplash/neurocat/internal/types"
)

// Client is an HTTP client for a neurocat API server. It offers the same
// read operations as service.Service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(api.RequestIDHeader, uuid.NewString())

	return c.http.Do(req)
}

// decode reads a JSON body into out when the status is 200. A 404 is
// reported as types.ErrNotFound.
func decode(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		var errResp api.ErrorResponse
		json.NewDecoder(resp.Body).Decode(&errResp)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("API error: %s: %w", errResp.Error, types.ErrNotFound)
		}
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, errResp.Error)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Health checks the server's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.doRequest(ctx, "GET", "/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result api.HealthResponse
	if err := decode(resp, &result); err != nil {
		return err
	}
	return nil
}

// Colorize colors text on the server.
func (c *Client) Colorize(ctx context.Context, text string, multicolor bool) (string, error) {
	req := api.ColorizeRequest{
		Text:       text,
		Multicolor: &multicolor,
	}

	resp, err := c.doRequest(ctx, "POST", "/v1/colorize", req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var result api.ColorizeResponse
	if err := decode(resp, &result); err != nil {
		return "", err
	}
	return result.Output, nil
}

// Scores ranks palette colors for word.
func (c *Client) Scores(ctx context.Context, word string, limit int) (*service.WordScores, error) {
	path := fmt.Sprintf("/v1/words/%s?limit=%d", url.PathEscape(word), limit)

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result api.ScoresResponse
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Spectrum renders the spectrum of word on the server.
func (c *Client) Spectrum(ctx context.Context, word string, mapping intensity.Strategy) (*service.SpectrumResult, error) {
	path := fmt.Sprintf("/v1/words/%s/spectrum", url.PathEscape(word))
	if mapping != "" {
		path += "?mapping=" + url.QueryEscape(string(mapping))
	}

	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result api.SpectrumResponse
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Stats returns the server's store statistics.
func (c *Client) Stats(ctx context.Context) (*types.StoreStats, error) {
	resp, err := c.doRequest(ctx, "GET", "/v1/stats", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result api.StatsResponse
	if err := decode(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
