package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Fetcher is implemented by *Client and can be replaced in tests.
type Fetcher interface {
	FetchList(ctx context.Context, limit, offset int) (ListPage, error)
	FetchDetail(ctx context.Context, idOrName string) (Detail, error)
	FetchDetailURL(ctx context.Context, rawURL string) (Detail, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL   = "https://pokeapi.co/api/v2"
	defaultUserAgent = "dexter"
	defaultTimeout   = 30 * time.Second
)

// Client talks to the Pokémon REST API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l.With().Str("component", "pokeapi").Logger() }
}

// NewClient builds a Client for baseURL, e.g. "https://pokeapi.co/api/v2".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: defaultTimeout},
		userAgent: defaultUserAgent,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API root without a trailing slash.
func (c *Client) BaseURL() string {
	return strings.TrimSuffix(c.baseURL.String(), "/")
}

// FetchList retrieves one page of summaries.
func (c *Client) FetchList(ctx context.Context, limit, offset int) (ListPage, error) {
	if c == nil {
		return ListPage{}, errors.New("client is nil")
	}
	values := url.Values{}
	values.Set("limit", strconv.Itoa(limit))
	values.Set("offset", strconv.Itoa(offset))
	rel := &url.URL{Path: "pokemon", RawQuery: values.Encode()}

	var payload ListPage
	if err := c.doURL(ctx, c.baseURL.ResolveReference(rel), &payload); err != nil {
		return ListPage{}, err
	}
	return payload, nil
}

// FetchDetail retrieves one Pokémon by id or name. The term is trimmed and
// lowercased and escaped as one path segment. An empty or dot-only term is
// reported as ErrNotFound without a request.
func (c *Client) FetchDetail(ctx context.Context, idOrName string) (Detail, error) {
	if c == nil {
		return Detail{}, errors.New("client is nil")
	}
	term := NormalizeTerm(idOrName)
	if term == "" || term == "." || term == ".." {
		return Detail{}, ErrNotFound
	}
	rel := &url.URL{Path: "pokemon/" + term, RawPath: "pokemon/" + url.PathEscape(term)}
	return c.fetchDetail(ctx, c.baseURL.ResolveReference(rel))
}

// FetchDetailURL follows the url of a list Summary.
func (c *Client) FetchDetailURL(ctx context.Context, rawURL string) (Detail, error) {
	if c == nil {
		return Detail{}, errors.New("client is nil")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return Detail{}, fmt.Errorf("parse detail url %q: %w", rawURL, err)
	}
	return c.fetchDetail(ctx, c.baseURL.ResolveReference(u))
}

func (c *Client) fetchDetail(ctx context.Context, u *url.URL) (Detail, error) {
	var payload Detail
	if err := c.doURL(ctx, u, &payload); err != nil {
		return Detail{}, err
	}
	return payload, nil
}

// DetailsURL is the public link for a Pokémon id, as used in exports.
func (c *Client) DetailsURL(id int) string {
	return fmt.Sprintf("%s/pokemon/%d/", c.BaseURL(), id)
}

func (c *Client) doURL(ctx context.Context, reqURL *url.URL, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &NetworkError{URL: reqURL.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("operation", "get").
		Str("url", reqURL.String()).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &HTTPError{Status: resp.StatusCode, URL: reqURL.String()}
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseBaseURL normalises the API root so relative paths resolve beneath it.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api base url %q: missing host", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
