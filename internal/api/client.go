package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/strataai/strata/internal/configuration"
	"github.com/strataai/strata/internal/debug"
)

const (
	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 8 * time.Second

	// maxResponseSize caps response bodies so a misbehaving server
	// cannot exhaust memory.
	maxResponseSize = 32 * 1024 * 1024
)

// Client talks to the workspace server's REST API.
type Client struct {
	baseURL string
	token   string

	httpClient *http.Client
	// streamClient has no timeout; streaming requests are bounded by
	// their context instead.
	streamClient *http.Client
}

// NewClient creates a client from configuration.
func NewClient(config *configuration.Config) *Client {
	transport := &http.Transport{
		MaxIdleConns:        16,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		baseURL: strings.TrimSuffix(config.ServerURL, "/"),
		token:   config.Token,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(config.RequestTimeout) * time.Second,
		},
		streamClient: &http.Client{
			Transport: transport,
		},
	}
}

// SetToken replaces the bearer token, e.g. after login.
func (c *Client) SetToken(token string) { c.token = token }

// BaseURL returns the configured server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// get performs a GET and decodes the JSON response into out.
// Idempotent, so transient failures are retried with backoff.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<uint(attempt-1))
			if delay > retryMaxDelay {
				delay = retryMaxDelay
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		retry, err := c.doJSON(ctx, http.MethodGet, path, query, nil, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
		debug.GetLogger().Debug("retrying request", "path", path, "error", fmt.Sprint(err))
	}
	return errors.Wrap(lastErr, "retries exhausted")
}

// post performs a POST with a JSON body. Not retried.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	_, err := c.doJSON(ctx, http.MethodPost, path, nil, body, out)
	return err
}

// put performs a PUT with a JSON body. Not retried.
func (c *Client) put(ctx context.Context, path string, body, out any) error {
	_, err := c.doJSON(ctx, http.MethodPut, path, nil, body, out)
	return err
}

// delete performs a DELETE. Not retried.
func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

// doJSON performs one request. The bool reports whether the failure
// is worth retrying.
func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return false, errors.Wrap(err, "marshaling request")
		}
		reader = bytes.NewReader(bodyBytes)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return false, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return false, err
		}
		return true, errors.Wrap(err, "sending request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return true, errors.Wrap(err, "reading response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return retryable(resp.StatusCode), parseError(resp.StatusCode, respBody)
	}

	if out == nil || len(respBody) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return false, errors.Wrap(err, "unmarshaling response")
	}
	return false, nil
}

// newRequest builds a request against the server with auth headers set.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "strata")
	return req, nil
}

// pageQuery builds pagination query values.
func pageQuery(page, perPage int) url.Values {
	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		query.Set("per_page", strconv.Itoa(perPage))
	}
	return query
}
