// Package arr implements REST clients for the *arr media managers (Radarr,
// Sonarr, Lidarr). All three share one HTTP client with API-key auth, request
// retry with exponential backoff, and error-message normalization.
package arr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/telearr/telearr/internal/config"
)

const (
	defaultTimeout = 30 * time.Second
	maxRetries     = 2
	backoffBase    = time.Second
)

// Client is the shared HTTP layer under the per-service clients. Construction
// fails fast on missing configuration; that is the only error these clients
// surface outside of per-call results.
type Client struct {
	name       string
	baseURL    string
	apiBase    string
	apiKey     string
	excluded   []string
	httpClient *http.Client
	logger     *slog.Logger
}

func newClient(name string, cfg config.ArrConfig, apiBase string, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("%s is not enabled", name)
	}
	if cfg.Server.Addr == "" || cfg.Server.Port == 0 {
		return nil, fmt.Errorf("%s server address or port not configured", name)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s API key not configured", name)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		name:       name,
		baseURL:    strings.TrimSuffix(cfg.Server.URL(), "/"),
		apiBase:    apiBase,
		apiKey:     cfg.APIKey,
		excluded:   cfg.ExcludedRootFolders,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger.With("component", name),
	}, nil
}

// Name returns the service name this client talks to.
func (c *Client) Name() string { return c.name }

func retryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// request performs one API call with retry and exponential backoff on
// connection failures and retryable status codes. A non-2xx final response
// is returned as an error carrying the normalized remote message.
func (c *Client) request(ctx context.Context, method, endpoint string, body, out any) error {
	url := c.baseURL + c.apiBase + "/" + endpoint

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := backoffBase * time.Duration(1<<(attempt-1))
			c.logger.Warn("Retrying request", "url", url, "attempt", attempt, "delay", delay, "error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("connection error: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response: %w", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			if out != nil && len(respBody) > 0 {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("failed to decode response: %w", err)
				}
			}
			return nil
		}

		message := parseErrorBody(respBody)
		if retryableStatus(resp.StatusCode) {
			lastErr = fmt.Errorf("%s returned HTTP %d: %s", c.name, resp.StatusCode, message)
			continue
		}
		return fmt.Errorf("%s returned HTTP %d: %s", c.name, resp.StatusCode, message)
	}

	return lastErr
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	return c.request(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	return c.request(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) delete(ctx context.Context, endpoint string) error {
	return c.request(ctx, http.MethodDelete, endpoint, nil, nil)
}

// parseErrorBody extracts a user-presentable message from an *arr error
// response, which is usually a JSON array of {errorMessage} objects.
func parseErrorBody(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var errs []struct {
			ErrorMessage string `json:"errorMessage"`
		}
		if err := json.Unmarshal(body, &errs); err == nil && len(errs) > 0 && errs[0].ErrorMessage != "" {
			return errs[0].ErrorMessage
		}
	}
	if trimmed == "" {
		return "no response body"
	}
	return trimmed
}

// AlreadyExists reports whether an error from an add operation indicates the
// item is already in the library.
func AlreadyExists(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already")
}

// filterRootFolders drops paths the operator excluded in config.
func (c *Client) filterRootFolders(folders []rootFolderResource) []rootFolderResource {
	if len(c.excluded) == 0 {
		return folders
	}
	kept := folders[:0]
	for _, folder := range folders {
		excluded := false
		for _, path := range c.excluded {
			if folder.Path == path {
				excluded = true
				break
			}
		}
		if !excluded {
			kept = append(kept, folder)
		}
	}
	return kept
}

// systemStatusResource is the shared shape of the system/status endpoint.
type systemStatusResource struct {
	Version string `json:"version"`
	AppName string `json:"appName"`
}

// SystemStatus probes the service and returns its reported version.
func (c *Client) SystemStatus(ctx context.Context) (string, error) {
	var status systemStatusResource
	if err := c.get(ctx, "system/status", &status); err != nil {
		return "", err
	}
	return status.Version, nil
}

// Shared API resource shapes.

type imageResource struct {
	CoverType string `json:"coverType"`
	RemoteURL string `json:"remoteUrl"`
	URL       string `json:"url"`
}

func posterURL(images []imageResource) string {
	for _, img := range images {
		if img.CoverType == "poster" {
			if img.RemoteURL != "" {
				return img.RemoteURL
			}
			return img.URL
		}
	}
	return ""
}

type qualityProfileResource struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	UpgradeAllowed bool   `json:"upgradeAllowed"`
}

type rootFolderResource struct {
	Path      string `json:"path"`
	FreeSpace int64  `json:"freeSpace"`
}

type tagResource struct {
	ID    int64  `json:"id"`
	Label string `json:"label"`
}
