// Package httpapi is the player's typed client for the device endpoints.
// Every call has a hard timeout so a stalled request cannot starve the
// next scheduled tick, and each response decodes into a tagged result
// rather than being probed field by field.
package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	devicepackets "github.com/Glowcast-Media/glowcast/internal/http/api/device/packets"
	webpackets "github.com/Glowcast-Media/glowcast/internal/http/api/web/packets"
)

const requestTimeout = 15 * time.Second

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// Register announces a device (possibly with no identity yet) and returns
// its confirmed ID plus the pairing code to show on screen.
func (c *Client) Register(ctx context.Context, deviceID string) (*devicepackets.RegisterDeviceResponse, error) {
	var response devicepackets.RegisterDeviceResponse
	err := c.post(ctx, "/api/device/register",
		devicepackets.RegisterDeviceRequest{DeviceID: deviceID}, &response)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &response, nil
}

// PairingStatus polls whether an operator has claimed this device yet.
func (c *Client) PairingStatus(ctx context.Context, deviceID string) (*devicepackets.PairingStatusResponse, error) {
	endpoint := fmt.Sprintf("%s/api/device/pairing/status?device_id=%s", c.baseURL, url.QueryEscape(deviceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pairing status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pairing status: unexpected status %d", resp.StatusCode)
	}

	var response devicepackets.PairingStatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("pairing status: decode: %w", err)
	}
	return &response, nil
}

// ReportLogs delivers one batch of proof-of-play entries.
func (c *Client) ReportLogs(ctx context.Context, deviceID, token string, logs []devicepackets.PlayLogEntry) error {
	if err := c.post(ctx, "/api/device/logs", devicepackets.ReportLogsRequest{
		DeviceID: deviceID,
		Token:    token,
		Logs:     logs,
	}, nil); err != nil {
		return fmt.Errorf("report logs: %w", err)
	}
	return nil
}

// FetchPlaylist is the web-mode schedule refresh, keyed by screen instead
// of device identity.
func (c *Client) FetchPlaylist(ctx context.Context, screenID int) (*webpackets.PlaylistResponse, error) {
	endpoint := fmt.Sprintf("%s/api/web/playlist?screen_id=%d", c.baseURL, screenID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch playlist: unexpected status %d", resp.StatusCode)
	}

	var response webpackets.PlaylistResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("fetch playlist: decode: %w", err)
	}
	return &response, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
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
		return &StatusError{Code: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
