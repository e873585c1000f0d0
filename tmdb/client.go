package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the TMDb v3 API root
const DefaultBaseURL = "https://api.themoviedb.org/3"

// connectivityRetryDelay is the pause between dial attempts while offline
const connectivityRetryDelay = time.Second

// Client represents a TMDb API client
type Client struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	logger       zerolog.Logger

	waitForConnectivity bool
	inflight            singleflight.Group
}

// NewClient creates a new TMDb client
func NewClient(apiKey string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", ErrInvalidConfig)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if _, err := url.Parse(o.baseURL); err != nil {
		return nil, fmt.Errorf("%w: invalid base URL: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		baseURL:             o.baseURL,
		imageBaseURL:        o.imageBaseURL,
		apiKey:              apiKey,
		logger:              logger,
		waitForConnectivity: o.waitForConnectivity,
	}

	c.httpClient = o.httpClient
	if c.httpClient == nil {
		c.httpClient = c.newHTTPClient(o.requestTimeout, o.resourceTimeout)
	}

	return c, nil
}

// newHTTPClient builds a client whose transport enforces the per-request timeout
// and whose overall timeout bounds the resource.
func (c *Client) newHTTPClient(requestTimeout, resourceTimeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   requestTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = c.dialContext(dialer)
	transport.ResponseHeaderTimeout = requestTimeout
	transport.TLSHandshakeTimeout = requestTimeout

	return &http.Client{
		Transport: transport,
		Timeout:   resourceTimeout,
	}
}

// dialContext retries dials that fail because the host is offline until the
// request context gives up, when waiting for connectivity is enabled.
func (c *Client) dialContext(dialer *net.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		for {
			conn, err := dialer.DialContext(ctx, network, addr)
			if err == nil || !c.waitForConnectivity || !isOffline(err) {
				return conn, err
			}

			c.logger.Debug().Err(err).Str("addr", addr).Msg("Host offline, waiting for connectivity")

			select {
			case <-ctx.Done():
				return nil, err
			case <-time.After(connectivityRetryDelay):
			}
		}
	}
}

// isOffline reports whether a dial error means there is no usable network
func isOffline(err error) bool {
	if errors.Is(err, syscall.ENETUNREACH) || errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETDOWN) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}
	return false
}

// ImageURL resolves an image path fragment against the configured image base
func (c *Client) ImageURL(path *string) string {
	return imageURL(c.imageBaseURL, path)
}

// TestConnection verifies the API key by fetching the first popular page
func (c *Client) TestConnection(ctx context.Context) error {
	_, err := c.PopularMovies(ctx, 1)
	return err
}

// PopularMovies fetches one page of the popular movies list
func (c *Client) PopularMovies(ctx context.Context, page int) (*PageResponse, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be positive, got %d", ErrInvalidInput, page)
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var resp PageResponse
	if err := c.get(ctx, "/movie/popular", params, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("page", resp.Page).
		Int("total_pages", resp.TotalPages).
		Int("count", len(resp.Results)).
		Msg("Retrieved popular movies")

	return &resp, nil
}

// SearchMovies fetches one page of search results for query
func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*PageResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is empty", ErrInvalidInput)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be positive, got %d", ErrInvalidInput, page)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(page))

	var resp PageResponse
	if err := c.get(ctx, "/search/movie", params, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("query", query).
		Int("page", resp.Page).
		Int("total_pages", resp.TotalPages).
		Int("count", len(resp.Results)).
		Msg("Retrieved search results")

	return &resp, nil
}

// MovieDetail fetches the full record of a single movie
func (c *Client) MovieDetail(ctx context.Context, id int) (*MovieDetail, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: movie id must be positive, got %d", ErrInvalidInput, id)
	}

	var detail MovieDetail
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), nil, &detail); err != nil {
		return nil, err
	}

	return &detail, nil
}

// get performs a GET request and decodes the body into out. Identical
// concurrent requests share one round trip; every caller decodes its own copy.
// The shared round trip is detached from any single caller's cancellation and
// is bounded by the http.Client timeout instead.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	key := endpoint + "?" + params.Encode()

	shared := context.WithoutCancel(ctx)
	ch := c.inflight.DoChan(key, func() (any, error) {
		return c.doRequest(shared, endpoint, params)
	})

	var body []byte
	select {
	case <-ctx.Done():
		return &TransportError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		body = res.Val.([]byte)
		if res.Shared {
			c.logger.Debug().Str("endpoint", endpoint).Msg("Shared in-flight request")
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.Debug().Err(err).Str("endpoint", endpoint).Msg("Failed to decode response")
		return &DecodeError{Err: err}
	}

	return nil
}

// doRequest performs an HTTP GET with the API key attached and maps the status
// code onto the error taxonomy.
func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	query := make(url.Values, len(params)+1)
	maps.Copy(query, params)
	query.Set("api_key", c.apiKey)

	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInvalidInput, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("method", http.MethodGet).
		Str("endpoint", endpoint).
		Msg("Making TMDb API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return body, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
}
