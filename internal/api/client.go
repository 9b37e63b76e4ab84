package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/user/oneclick-vpn/internal/config"
)

// StatusError is returned by Client for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Code, e.Message)
}

// Client talks to a running Server.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the server at addr: host:port, a named
// pipe or a unix: socket path.
func NewClient(addr string) *Client {
	c := &Client{
		BaseURL: "http://" + addr + "/" + APIVersion,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
	if config.IsSocketAddress(addr) {
		// The host part is never resolved; every request goes through the socket.
		c.BaseURL = "http://" + socketHost + "/" + APIVersion
		c.HTTP.Transport = &http.Transport{
			DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
				return dialSocket(ctx, addr)
			},
		}
	}
	return c
}

// Healthz checks that the server answers.
func (c *Client) Healthz(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Status returns the current tunnel status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, "/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Profiles lists the bundled profiles and the selection.
func (c *Client) Profiles(ctx context.Context) (*ProfilesResponse, error) {
	var resp ProfilesResponse
	if err := c.do(ctx, http.MethodGet, "/profiles", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Select persists id as the selected profile and returns its canonical id.
func (c *Client) Select(ctx context.Context, id string) (string, error) {
	var resp ProfileRequest
	if err := c.do(ctx, http.MethodPut, "/profile", ProfileRequest{Profile: id}, &resp); err != nil {
		return "", err
	}
	return resp.Profile, nil
}

// Connect asks the service to connect profile (empty = current selection).
func (c *Client) Connect(ctx context.Context, profile string) error {
	return c.do(ctx, http.MethodPost, "/connect", ProfileRequest{Profile: profile}, nil)
}

// Disconnect asks the service to disconnect.
func (c *Client) Disconnect(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/disconnect", nil, nil)
}

// Toggle asks the service to toggle the tunnel.
func (c *Client) Toggle(ctx context.Context, profile string) error {
	return c.do(ctx, http.MethodPost, "/toggle", ProfileRequest{Profile: profile}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return err
	}
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Error == "" {
			apiErr.Error = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Code: resp.StatusCode, Message: apiErr.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}
