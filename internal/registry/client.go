// Package registry is a thin facade over the upstream device registry API,
// the canonical source of device records (ownership, config, backend status).
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/HerbHall/fleetpulse/pkg/models"
)

// MaxPageLimit caps the page size accepted by the registry API.
const MaxPageLimit = 100

// ListResult is one page of device records for an owner.
type ListResult struct {
	Devices []models.DeviceRecord `json:"devices"`
	Total   int                   `json:"total"`
	Offset  int                   `json:"offset"`
	Limit   int                   `json:"limit"`
}

// Client wraps the device registry REST API.
//
// Errors returned by Client are never fatal to the status engine: callers
// treat a failed call as "no data available this cycle" and keep the last
// cached view.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a registry API client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// ListByOwner fetches one page of device records owned by ownerID.
// offset must be >= 0; limit must be in (0, MaxPageLimit].
func (c *Client) ListByOwner(ctx context.Context, ownerID string, offset, limit int) (*ListResult, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("owner id must not be empty")
	}
	if offset < 0 {
		return nil, fmt.Errorf("offset must be >= 0, got %d", offset)
	}
	if limit <= 0 || limit > MaxPageLimit {
		return nil, fmt.Errorf("limit must be in 1..%d, got %d", MaxPageLimit, limit)
	}

	u := fmt.Sprintf("%s/api/v1/owners/%s/devices?offset=%s&limit=%s",
		c.baseURL,
		url.PathEscape(ownerID),
		strconv.Itoa(offset),
		strconv.Itoa(limit),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("registry API returned %d: %s", resp.StatusCode, string(body))
	}

	var result ListResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}
