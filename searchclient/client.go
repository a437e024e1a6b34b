package searchclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/amirhf/imageSearch/services/search-web/models"
)

// Client submits queries to the product search endpoint.
type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a Client for the given search URL. An empty endpoint
// falls back to DefaultEndpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid search endpoint %q: scheme must be http or https", endpoint)
	}

	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: cfg.timeout,
		}
	}

	return &Client{
		endpoint:   endpoint,
		userAgent:  cfg.userAgent,
		httpClient: httpClient,
	}, nil
}

// Endpoint returns the search URL the client posts to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Search posts q to the search endpoint and returns the matches in server
// order. A 404 response yields a *NotFoundError.
func (c *Client) Search(ctx context.Context, q models.Query) ([]models.SearchResult, error) {
	body, contentType, err := EncodeQuery(q)
	if err != nil {
		return nil, &NetworkError{
			Message: fmt.Sprintf("failed to encode request body: %v", err),
			Cause:   err,
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{
			Message: fmt.Sprintf("failed to create request: %v", err),
			Cause:   err,
		}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, &NetworkError{
				Message: fmt.Sprintf("request cancelled: %v", ctx.Err()),
				Cause:   ctx.Err(),
			}
		}
		return nil, &NetworkError{
			Message: fmt.Sprintf("request failed: %v", err),
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Cause:   err,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, mapStatusToError(resp.StatusCode, respBody)
	}

	var results []models.SearchResult
	if err := json.Unmarshal(respBody, &results); err != nil {
		return nil, &NetworkError{
			Message: fmt.Sprintf("failed to decode response: %v", err),
			Cause:   err,
		}
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return results, nil
}
