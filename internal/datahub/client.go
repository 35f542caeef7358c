package datahub

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/metastore-labs/metasync/pkg/errors"
)

// DefaultTimeout bounds every request to the DataHub instance. Bulk
// operations issue sequential calls, so a hung request would otherwise
// stall the whole run.
const DefaultTimeout = 30 * time.Second

// Config configures a DataHub client.
type Config struct {
	// BaseURL is the GMS endpoint, e.g. http://localhost:8080.
	BaseURL string

	// Token is a personal access token. Empty disables authentication.
	Token string

	// Timeout overrides DefaultTimeout when non-zero.
	Timeout time.Duration

	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

// Client talks to a single DataHub instance.
type Client struct {
	baseURL string
	http    *http.Client
	auth    Authenticator
}

// New creates a client for the configured DataHub instance.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, &errors.ConfigError{Component: "datahub", Message: "base URL is required"}
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var auth Authenticator = &NoAuth{}
	if cfg.Token != "" {
		auth = &BearerAuth{Token: cfg.Token}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		auth:    auth,
	}, nil
}

// Ping checks connectivity by hitting the GMS config endpoint.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/config", nil)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// do performs a request against the instance, applying authentication and
// mapping transport and HTTP-level failures to typed API errors. Callers
// own the returned body.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.WrapParse("json", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &errors.APIError{Endpoint: path, Message: "failed to build request", Err: err}
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth.Apply(req)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.ErrCanceled
		}
		return nil, &errors.APIError{Endpoint: path, Message: "request failed", Err: err}
	}

	if resp.StatusCode >= 400 {
		message := readErrorBody(resp)
		drain(resp)
		return nil, errors.NewAPIError(path, resp.StatusCode, message)
	}

	return resp, nil
}

// decode reads the response body into target and closes it.
func decode(resp *http.Response, target any) error {
	defer drain(resp)
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.WrapIO("read", resp.Request.URL.Path, err)
	}
	if len(data) == 0 || target == nil {
		return nil
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.WrapParse("json", resp.Request.URL.Path, err)
	}
	return nil
}

// drain discards any remaining body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func readErrorBody(resp *http.Response) string {
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(data) == 0 {
		return resp.Status
	}
	return strings.TrimSpace(string(data))
}
