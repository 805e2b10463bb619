// Package client calls a running `payoff serve` instance.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/theirongolddev/payoff/internal/amortize"
	"github.com/theirongolddev/payoff/internal/server"
)

const (
	requestTimeout = 30 * time.Second
	maxBodySize    = 8 << 20 // 8 MB, enough for long schedules
	userAgent      = "github.com/theirongolddev/payoff/1.0"
)

// ErrUnavailable indicates the server is shutting down or overloaded.
var ErrUnavailable = errors.New("payoff server unavailable")

// Client talks to the payoff HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for addr, which may be "host:port" or a full URL.
func New(addr string) *Client {
	addr = strings.TrimRight(strings.TrimSpace(addr), "/")
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	return &Client{
		baseURL: addr,
		http:    &http.Client{},
	}
}

// Health returns nil when /healthz answers 200.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/healthz", nil)
	return err
}

// Status fetches /v1/status.
func (c *Client) Status(ctx context.Context) (server.Status, error) {
	var st server.Status
	err := c.call(ctx, http.MethodGet, "/v1/status", nil, &st)
	return st, err
}

// Single simulates one loan.
func (c *Client) Single(ctx context.Context, req server.SingleRequest) (server.SimulationResponse, error) {
	var resp server.SimulationResponse
	err := c.call(ctx, http.MethodPost, "/v1/single", req, &resp)
	return resp, err
}

// Joint simulates two loans under an explicit plan.
func (c *Client) Joint(ctx context.Context, req server.JointRequest) (server.SimulationResponse, error) {
	var resp server.SimulationResponse
	err := c.call(ctx, http.MethodPost, "/v1/joint", req, &resp)
	return resp, err
}

// Split runs the split search. A nil Best in the response means no
// candidate was feasible.
func (c *Client) Split(ctx context.Context, req server.SplitRequest) (server.SplitResponse, error) {
	var resp server.SplitResponse
	err := c.call(ctx, http.MethodPost, "/v1/split", req, &resp)
	return resp, err
}

func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	data, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("client: parsing %s response: %w", path, err)
	}
	return nil
}

// do performs the request and returns the body of a 2xx answer. Error
// answers are mapped back to the simulator's sentinel errors.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("client: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("client: reading response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return data, nil
	}

	msg := serverMessage(data)
	switch resp.StatusCode {
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: %s", amortize.ErrInvalidInput, msg)
	case http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", amortize.ErrInfeasiblePayment, msg)
	case http.StatusServiceUnavailable:
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, msg)
	default:
		return nil, fmt.Errorf("client: unexpected status %d: %s", resp.StatusCode, msg)
	}
}

// serverMessage extracts the error field of an ErrorResponse, falling back
// to the raw body.
func serverMessage(data []byte) string {
	var e server.ErrorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(data))
}
