// Package multimodal talks to the embedding similarity service that ranks
// catalog products against a text and/or image query.
package multimodal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/amirhf/imageSearch/services/search-web/models"
	"github.com/amirhf/imageSearch/services/search-web/searchclient"
)

// StatusError is returned when the service answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("multimodal service returned %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, httpClient: httpClient}
}

// Match sends q to the service and returns its hits, closest first.
func (c *Client) Match(ctx context.Context, q models.Query) ([]models.Match, error) {
	body, contentType, err := searchclient.EncodeQuery(q)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("multimodal request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read multimodal response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var matches []models.Match
	if err := json.Unmarshal(respBody, &matches); err != nil {
		return nil, fmt.Errorf("decode multimodal response: %w", err)
	}
	return matches, nil
}
