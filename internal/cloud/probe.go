// Package cloud is a facade over the IoT cloud's device-status API, the
// source of live connectivity data. Every call is an independent network
// round trip against an externally rate-limited service.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/HerbHall/fleetpulse/pkg/models"
	"golang.org/x/time/rate"
)

// ErrEmptyDeviceName is returned when a probe is attempted without a device
// name. Callers are expected to skip the probe instead of hitting this.
var ErrEmptyDeviceName = fmt.Errorf("device name must not be empty")

// Client wraps the IoT cloud device-status API. A token-bucket limiter bounds
// outbound call volume across all callers sharing the client.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
}

// NewClient creates an IoT cloud client. rps/burst bound outbound probes;
// zero values fall back to 10 rps / 20 burst.
func NewClient(baseURL, token string, timeout time.Duration, rps float64, burst int) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = 20
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// deviceStatusPayload mirrors the cloud response. Pointer fields distinguish
// "absent" from zero values so malformed payloads are rejected at this
// boundary instead of silently defaulting downstream.
type deviceStatusPayload struct {
	DeviceStatus *struct {
		Online         *bool  `json:"online"`
		MQTTConnected  *bool  `json:"mqtt_connected"`
		LastOnlineTime *int64 `json:"last_online_time"`
		ClientIP       string `json:"client_ip"`
	} `json:"device_status"`
}

// DeviceStatus queries live connectivity for one device. deviceName must be
// non-empty; an empty name is a caller-side skip condition, not a probe.
func (c *Client) DeviceStatus(ctx context.Context, productID, deviceName string) (*models.LiveStatus, error) {
	if deviceName == "" {
		return nil, ErrEmptyDeviceName
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("probe rate limiter: %w", err)
	}

	u := fmt.Sprintf("%s/api/v1/products/%s/devices/%s/status",
		c.baseURL,
		url.PathEscape(productID),
		url.PathEscape(deviceName),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloud API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("cloud API returned %d: %s", resp.StatusCode, string(body))
	}

	var payload deviceStatusPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return decodeLiveStatus(&payload)
}

// decodeLiveStatus validates required fields and maps the payload to a
// LiveStatus. Only device_status and its online flag are mandatory; the
// cloud omits the rest for devices that have never connected.
func decodeLiveStatus(p *deviceStatusPayload) (*models.LiveStatus, error) {
	ds := p.DeviceStatus
	if ds == nil {
		return nil, fmt.Errorf("malformed payload: missing device_status")
	}
	if ds.Online == nil {
		return nil, fmt.Errorf("malformed payload: missing device_status.online")
	}

	live := &models.LiveStatus{
		Online:   *ds.Online,
		ClientIP: ds.ClientIP,
	}
	if ds.MQTTConnected != nil {
		live.BrokerConnected = *ds.MQTTConnected
	}
	if ds.LastOnlineTime != nil {
		live.LastOnlineTime = *ds.LastOnlineTime
	}
	return live, nil
}
