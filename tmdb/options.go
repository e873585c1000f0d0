package tmdb

import (
	"net/http"
	"strings"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	baseURL             string
	imageBaseURL        string
	httpClient          *http.Client
	requestTimeout      time.Duration
	resourceTimeout     time.Duration
	waitForConnectivity bool
}

func defaultOptions() clientOptions {
	return clientOptions{
		baseURL:             DefaultBaseURL,
		imageBaseURL:        DefaultImageBaseURL,
		requestTimeout:      30 * time.Second,
		resourceTimeout:     60 * time.Second,
		waitForConnectivity: true,
	}
}

// WithBaseURL points the client at a different API root.
func WithBaseURL(baseURL string) Option {
	return func(o *clientOptions) {
		if baseURL != "" {
			o.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithImageBaseURL sets the prefix used to resolve poster and backdrop paths.
func WithImageBaseURL(imageBaseURL string) Option {
	return func(o *clientOptions) {
		if imageBaseURL != "" {
			o.imageBaseURL = imageBaseURL
		}
	}
}

// WithHTTPClient replaces the HTTP client entirely.
// Timeouts and the connectivity wait are then up to the caller.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithRequestTimeout bounds connecting and waiting for response headers.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.requestTimeout = timeout
		}
	}
}

// WithResourceTimeout bounds the whole exchange, body included.
func WithResourceTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.resourceTimeout = timeout
		}
	}
}

// WithWaitForConnectivity toggles waiting for the network instead of failing
// immediately while the host is offline.
func WithWaitForConnectivity(wait bool) Option {
	return func(o *clientOptions) {
		o.waitForConnectivity = wait
	}
}
