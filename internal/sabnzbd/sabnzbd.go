// Package sabnzbd wraps the SABnzbd download queue manager API. Every
// network operation returns a plain result value: failures are logged and
// collapse into conservative defaults, never into errors the caller must
// handle.
package sabnzbd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/telearr/telearr/internal/config"
)

// QueueStatus is the derived view of the SABnzbd download queue.
type QueueStatus struct {
	Active int
	Queued int
	Speed  string
	Size   string
}

func defaultQueueStatus() QueueStatus {
	return QueueStatus{Active: 0, Queued: 0, Speed: "0 KB/s", Size: "0 MB"}
}

// Client talks to one SABnzbd instance using its api-key query protocol.
type Client struct {
	apiURL     string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// New validates the SABnzbd configuration and returns a client. This is the
// only place a SABnzbd error propagates; all later calls degrade to default
// results.
func New(cfg config.SABnzbdConfig, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("sabnzbd is not enabled")
	}
	if cfg.Server.Addr == "" || cfg.Server.Port == 0 {
		return nil, fmt.Errorf("sabnzbd server address or port not configured")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("sabnzbd API key not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		apiURL:     strings.TrimSuffix(cfg.Server.URL(), "/") + "/api",
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger.With("component", "sabnzbd"),
	}, nil
}

// call performs one API request. params must include "mode"; output=json and
// the api key are always appended.
func (c *Client) call(ctx context.Context, params url.Values, out any) error {
	params.Set("output", "json")
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sabnzbd returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

type queueResponse struct {
	Queue struct {
		Slots []struct {
			Status string `json:"status"`
		} `json:"slots"`
		NoOfSlots int    `json:"noofslots"`
		Speed     string `json:"speed"`
		Size      string `json:"size"`
		Paused    bool   `json:"paused"`
	} `json:"queue"`
}

// Queue returns the derived queue status. On any failure the zero-activity
// default is returned and the cause is logged.
func (c *Client) Queue(ctx context.Context) QueueStatus {
	var resp queueResponse
	if err := c.call(ctx, url.Values{"mode": {"queue"}}, &resp); err != nil {
		c.logger.Error("Failed to get queue status", "error", err)
		return defaultQueueStatus()
	}

	active := 0
	for _, slot := range resp.Queue.Slots {
		if slot.Status == "Downloading" {
			active++
		}
	}

	status := QueueStatus{
		Active: active,
		Queued: resp.Queue.NoOfSlots,
		Speed:  resp.Queue.Speed,
		Size:   resp.Queue.Size,
	}
	if status.Speed == "" {
		status.Speed = "0 KB/s"
	}
	if status.Size == "" {
		status.Size = "0 MB"
	}
	return status
}

// boolStatusResponse covers the command endpoints that answer {"status": true}.
type boolStatusResponse struct {
	Status bool `json:"status"`
}

// command runs a toggle/command mode and reports success from the remote
// status field, defaulting to failure.
func (c *Client) command(ctx context.Context, params url.Values) bool {
	var resp boolStatusResponse
	if err := c.call(ctx, params, &resp); err != nil {
		c.logger.Error("SABnzbd command failed", "mode", params.Get("mode"), "error", err)
		return false
	}
	return resp.Status
}

// AddNZB submits an NZB by URL with an optional name and category.
func (c *Client) AddNZB(ctx context.Context, nzbURL, name, category string) bool {
	params := url.Values{"mode": {"addurl"}, "name": {nzbURL}}
	if name != "" {
		params.Set("nzbname", name)
	}
	if category != "" {
		params.Set("cat", category)
	}
	return c.command(ctx, params)
}

// PauseQueue pauses all downloads.
func (c *Client) PauseQueue(ctx context.Context) bool {
	return c.command(ctx, url.Values{"mode": {"pause"}})
}

// ResumeQueue resumes all downloads.
func (c *Client) ResumeQueue(ctx context.Context) bool {
	return c.command(ctx, url.Values{"mode": {"resume"}})
}

// SetSpeedLimit sets the download speed limit as a percentage of the
// configured line speed.
func (c *Client) SetSpeedLimit(ctx context.Context, percent int) bool {
	return c.command(ctx, url.Values{
		"mode":  {"config"},
		"name":  {"speedlimit"},
		"value": {strconv.Itoa(percent)},
	})
}

// Version probes SABnzbd and returns its reported version. Unlike the other
// operations this returns an error, for use by the health monitor.
func (c *Client) Version(ctx context.Context) (string, error) {
	var resp struct {
		Version string `json:"version"`
	}
	if err := c.call(ctx, url.Values{"mode": {"version"}}, &resp); err != nil {
		return "", err
	}
	return resp.Version, nil
}
