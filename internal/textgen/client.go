package textgen

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

	"github.com/verte-zerg/typer/internal/pool"
)

// DefaultClientTimeout bounds one endpoint call.
const DefaultClientTimeout = 30 * time.Second

// Client talks to a generation endpoint.
type Client struct {
	url  string
	http *http.Client
}

// NewClient returns a client for the endpoint at url. A nil httpClient uses
// one with DefaultClientTimeout.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultClientTimeout}
	}
	return &Client{url: strings.TrimRight(url, "/"), http: httpClient}
}

// Available probes the endpoint; any failure counts as unavailable.
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer drain(resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Generate requests one passage. It returns the text and the server's
// remaining pool size.
func (c *Client) Generate(ctx context.Context, r pool.Request) (string, int, error) {
	body, err := json.Marshal(r)
	if err != nil {
		return "", 0, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer drain(resp.Body)

	if resp.StatusCode == http.StatusServiceUnavailable {
		return "", 0, ErrUnavailable
	}
	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("generation endpoint returned %d", resp.StatusCode)
	}
	var out struct {
		Text          string `json:"text"`
		PoolRemaining int    `json:"poolRemaining"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", 0, errors.New("no text returned from server")
	}
	return out.Text, out.PoolRemaining, nil
}

func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	_ = body.Close()
}
