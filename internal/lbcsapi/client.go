package lbcsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/littlebull/lbcs/internal/grid"
	"github.com/littlebull/lbcs/internal/logging"
)

const (
	// DefaultTimeout bounds every HTTP request to the wall server
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response is kept in the message
	maxErrorBody = 512
)

// Client talks to one wall-control server. A Client is bound to a single
// base URL; switching servers means building a new Client.
type Client struct {
	// BaseURL is the server root, e.g. "http://localhost:8888/"
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

func (c *Client) endpoint(op string, elem ...string) (string, error) {
	u, err := url.JoinPath(c.BaseURL, elem...)
	if err != nil {
		return "", newRequestError(op, "invalid server URL", err)
	}
	return u, nil
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method string, body []byte, elem ...string) (respBody []byte, err error) {
	start := time.Now()
	defer func() {
		logging.LogGatewayCall(op, c.BaseURL, time.Since(start), err)
	}()

	endpoint, err := c.endpoint(op, elem...)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, newRequestError(op, "failed to create request", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, newHTTPError(op, resp.StatusCode, string(bytes.TrimSpace(data)))
	}

	return data, nil
}

// State fetches the wall's dimensions and every LED colour.
func (c *Client) State(ctx context.Context) (*grid.Snapshot, error) {
	data, err := c.do(ctx, "state", http.MethodGet, nil, "state")
	if err != nil {
		return nil, err
	}

	var snap grid.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, newParseError("state", err)
	}
	if snap.Rows < 0 || snap.Columns < 0 {
		return nil, newParseError("state", fmt.Errorf("negative dimensions %dx%d", snap.Rows, snap.Columns))
	}
	return &snap, nil
}

// SetLED sets one LED. Off is {0,0,0}.
func (c *Client) SetLED(ctx context.Context, index int, color grid.RGB) error {
	if index < 0 {
		return newRequestError("setLed", fmt.Sprintf("invalid led index %d", index), nil)
	}
	body, err := json.Marshal(color)
	if err != nil {
		return newRequestError("setLed", "failed to encode colour", err)
	}
	_, err = c.do(ctx, "setLed", http.MethodPost, body, "led", strconv.Itoa(index))
	return err
}

// ResetState replaces the whole grid on the server.
func (c *Client) ResetState(ctx context.Context, state grid.State) error {
	body, err := grid.MarshalGrid(state)
	if err != nil {
		return newRequestError("resetState", "failed to encode grid", err)
	}
	_, err = c.do(ctx, "resetState", http.MethodPost, body, "state")
	return err
}

// Clear turns every LED off.
func (c *Client) Clear(ctx context.Context) error {
	_, err := c.do(ctx, "clear", http.MethodPost, nil, "clear")
	return err
}

// Ping checks that the server answers a state request.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.State(ctx)
	return err
}
