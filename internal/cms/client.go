// Package cms queries a Sanity-compatible headless CMS with GROQ over HTTP.
package cms

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mbs-hub/internal/common"
	"mbs-hub/internal/config"
	"mbs-hub/internal/logger"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ResponseCache stores raw query responses.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Client sends GROQ queries to the CMS query endpoint.
type Client struct {
	http      *http.Client
	projectID string
	dataset   string
	apiURL    string // live API, used for drafts and authenticated reads
	cdnURL    string // CDN API when enabled, otherwise equal to apiURL
	token     string
	cache     ResponseCache
	log       logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithCache caches published query responses.
func WithCache(rc ResponseCache) Option {
	return func(c *Client) { c.cache = rc }
}

// WithLogger sets the client's logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a Client from cfg. A missing project id is logged; queries
// then fail with common.ErrUnconfigured unless an API host override is set.
func NewClient(cfg config.CMSConfig, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 15 * time.Second},
		projectID: cfg.ProjectID,
		dataset:   cfg.Dataset,
		token:     cfg.Token,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	version := strings.TrimPrefix(cfg.APIVersion, "v")
	if version == "" {
		version = "2021-06-07"
	}
	if c.dataset == "" {
		c.dataset = "production"
	}

	switch {
	case cfg.APIHost != "":
		base := strings.TrimRight(cfg.APIHost, "/")
		c.apiURL = fmt.Sprintf("%s/v%s", base, version)
		c.cdnURL = c.apiURL
	case cfg.ProjectID != "":
		c.apiURL = fmt.Sprintf("https://%s.api.sanity.io/v%s", cfg.ProjectID, version)
		c.cdnURL = c.apiURL
		// Authenticated requests bypass the CDN.
		if cfg.UseCDN && cfg.Token == "" {
			c.cdnURL = fmt.Sprintf("https://%s.apicdn.sanity.io/v%s", cfg.ProjectID, version)
		}
	default:
		c.log.Warn("CMS project id is not set; CMS queries will report the store as unconfigured")
	}
	return c
}

// HasToken reports whether a read token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// ProjectID returns the configured project id.
func (c *Client) ProjectID() string { return c.projectID }

// Dataset returns the configured dataset.
func (c *Client) Dataset() string { return c.dataset }

type queryResponse struct {
	Result json.RawMessage `json:"result"`
}

type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
	Message string `json:"message"`
}

// Fetch runs query with params and decodes the result into out. A JSON null
// result leaves out untouched.
func (c *Client) Fetch(ctx context.Context, query string, params map[string]interface{}, out interface{}) error {
	return c.fetch(ctx, false, query, params, out)
}

// FetchDrafts runs query against the live API with the draft perspective so
// unpublished documents are included. Responses are never cached.
func (c *Client) FetchDrafts(ctx context.Context, query string, params map[string]interface{}, out interface{}) error {
	return c.fetch(ctx, true, query, params, out)
}

func (c *Client) fetch(ctx context.Context, drafts bool, query string, params map[string]interface{}, out interface{}) error {
	if c.apiURL == "" {
		return common.ErrUnconfigured
	}

	endpoint, err := c.queryURL(drafts, query, params)
	if err != nil {
		return err
	}

	cacheable := !drafts && c.cache != nil
	key := cacheKey(endpoint)
	if cacheable {
		if raw, err := c.cache.Get(ctx, key); err != nil {
			c.log.Error(err, "Failed to read CMS cache")
		} else if raw != nil {
			return decodeResult(raw, out)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build CMS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("CMS request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read CMS response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return responseError(resp.StatusCode, body)
	}

	var qr queryResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return fmt.Errorf("failed to decode CMS response: %w", err)
	}
	if cacheable {
		if err := c.cache.Put(ctx, key, qr.Result); err != nil {
			c.log.Error(err, "Failed to write CMS cache")
		}
	}
	return decodeResult(qr.Result, out)
}

func (c *Client) queryURL(drafts bool, query string, params map[string]interface{}) (string, error) {
	base := c.cdnURL
	if drafts {
		base = c.apiURL
	}

	values := url.Values{}
	values.Set("query", query)
	// Sorted so identical queries share a cache key.
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		encoded, err := json.Marshal(params[name])
		if err != nil {
			return "", fmt.Errorf("failed to encode query param %q: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}
	if drafts {
		values.Set("perspective", "previewDrafts")
	}
	return fmt.Sprintf("%s/data/query/%s?%s", base, url.PathEscape(c.dataset), values.Encode()), nil
}

func decodeResult(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode CMS result: %w", err)
	}
	return nil
}

func responseError(status int, body []byte) error {
	var er errorResponse
	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &er); err == nil {
		switch {
		case er.Error.Description != "":
			msg = er.Error.Description
		case er.Message != "":
			msg = er.Message
		}
	}
	return &APIError{StatusCode: status, Message: msg}
}

func cacheKey(endpoint string) string {
	sum := sha256.Sum256([]byte(endpoint))
	return "cms:" + hex.EncodeToString(sum[:])
}

// APIError is a non-2xx response from the CMS.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("CMS responded %d: %s", e.StatusCode, e.Message)
}

