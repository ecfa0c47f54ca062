// Package transmission implements the Transmission RPC protocol subset used
// by the bot: session inspection and the alternative ("turtle") speed
// toggle. Command operations return booleans, status reads return a snapshot
// with connected=false and an error string on failure.
package transmission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/telearr/telearr/internal/config"
)

const sessionIDHeader = "X-Transmission-Session-Id"

// Status is a point-in-time view of the Transmission connection.
type Status struct {
	Enabled         bool
	Connected       bool
	AltSpeedEnabled bool
	Version         string
	Error           string
}

// Client is a Transmission RPC client with CSRF session-id negotiation.
type Client struct {
	rpcURL     string
	username   string
	password   string
	httpClient *http.Client
	logger     *slog.Logger

	mu        sync.Mutex
	sessionID string
}

// New validates the Transmission configuration and returns a client.
func New(cfg config.TransmissionConfig, logger *slog.Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("transmission is not enabled")
	}
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, fmt.Errorf("transmission host or port not configured")
	}
	if logger == nil {
		logger = slog.Default()
	}

	scheme := "http"
	if cfg.SSL {
		scheme = "https"
	}

	return &Client{
		rpcURL:     fmt.Sprintf("%s://%s:%d/transmission/rpc", scheme, cfg.Host, cfg.Port),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With("component", "transmission"),
	}, nil
}

type rpcRequest struct {
	Method    string         `json:"method"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type rpcResponse struct {
	Result    string          `json:"result"`
	Arguments json.RawMessage `json:"arguments"`
}

// call performs one RPC method, renegotiating the session id once on a 409
// response per the Transmission CSRF protocol.
func (c *Client) call(ctx context.Context, method string, arguments map[string]any) (*rpcResponse, error) {
	payload, err := json.Marshal(rpcRequest{Method: method, Arguments: arguments})
	if err != nil {
		return nil, fmt.Errorf("failed to encode RPC request: %w", err)
	}

	for attempt := 0; attempt < 2; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.username != "" {
			req.SetBasicAuth(c.username, c.password)
		}

		c.mu.Lock()
		if c.sessionID != "" {
			req.Header.Set(sessionIDHeader, c.sessionID)
		}
		c.mu.Unlock()

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("connection error: %w", err)
		}

		if resp.StatusCode == http.StatusConflict {
			c.mu.Lock()
			c.sessionID = resp.Header.Get(sessionIDHeader)
			c.mu.Unlock()
			resp.Body.Close()
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("transmission returned HTTP %d", resp.StatusCode)
		}

		var rpcResp rpcResponse
		if err := json.Unmarshal(body, &rpcResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		if rpcResp.Result != "success" {
			return nil, fmt.Errorf("transmission RPC failed: %s", rpcResp.Result)
		}
		return &rpcResp, nil
	}

	return nil, fmt.Errorf("session ID negotiation failed after retry")
}

type sessionArguments struct {
	Version         string `json:"version"`
	AltSpeedEnabled bool   `json:"alt-speed-enabled"`
}

func (c *Client) session(ctx context.Context) (*sessionArguments, error) {
	resp, err := c.call(ctx, "session-get", nil)
	if err != nil {
		return nil, err
	}

	var args sessionArguments
	if err := json.Unmarshal(resp.Arguments, &args); err != nil {
		return nil, fmt.Errorf("failed to decode session arguments: %w", err)
	}
	return &args, nil
}

// Version probes the daemon and returns its version, for the health monitor.
func (c *Client) Version(ctx context.Context) (string, error) {
	args, err := c.session(ctx)
	if err != nil {
		return "", err
	}
	return args.Version, nil
}

// SetAltSpeed enables or disables the alternative speed limits. Failures are
// logged and reported as false, never returned as errors.
func (c *Client) SetAltSpeed(ctx context.Context, enabled bool) bool {
	_, err := c.call(ctx, "session-set", map[string]any{"alt-speed-enabled": enabled})
	if err != nil {
		c.logger.Error("Failed to set alt speed", "enabled", enabled, "error", err)
		return false
	}
	c.logger.Info("Alternative speed limits updated", "enabled", enabled)
	return true
}

// Status returns the current connection snapshot; it never fails.
func (c *Client) Status(ctx context.Context) Status {
	args, err := c.session(ctx)
	if err != nil {
		c.logger.Error("Failed to get transmission status", "error", err)
		return Status{Enabled: true, Connected: false, Error: err.Error()}
	}

	return Status{
		Enabled:         true,
		Connected:       true,
		AltSpeedEnabled: args.AltSpeedEnabled,
		Version:         args.Version,
	}
}
