package searchclient

import (
	"net/http"
	"time"
)

// DefaultEndpoint is the search URL used when none is configured.
const DefaultEndpoint = "http://localhost:8080/api/v1/search"

// clientConfig holds configuration for the Client.
type clientConfig struct {
	timeout    time.Duration
	userAgent  string
	httpClient *http.Client
}

func defaultClientConfig() clientConfig {
	return clientConfig{
		timeout:   0,
		userAgent: "search-web-go/" + Version,
	}
}

// ClientOption configures the client.
type ClientOption func(*clientConfig)

// WithTimeout sets the request timeout. Zero waits for the transport to
// resolve or fail on its own.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

// WithHTTPClient sets a custom HTTP client. WithTimeout is ignored when set.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}
