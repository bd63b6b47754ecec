// Package serpapi is a small client for the SerpApi search endpoint.
package serpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://serpapi.com"
	searchPath     = "/search.json"

	EngineGoogleMaps        = "google_maps"
	EngineGoogleMapsReviews = "google_maps_reviews"
)

// Params are the query parameters of a single search, minus the api key.
type Params map[string]string

type Client struct {
	http   *resty.Client
	apiKey string
	log    *zap.Logger
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(u)
	}
}

// WithHTTPClient swaps the underlying transport, keeping the base url.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		base := c.http.BaseURL
		c.http = resty.NewWithClient(hc)
		c.http.SetBaseURL(base)
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

func New(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingKey
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(DefaultBaseURL)
	httpClient.SetHeader("Accept", "application/json")

	c := &Client{
		http:   httpClient,
		apiKey: apiKey,
		log:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Search performs one GET against the search endpoint. Only transport
// failures and non-2xx statuses are errors; the body is otherwise returned
// as is.
func (c *Client) Search(ctx context.Context, params Params) (Document, error) {
	query := make(map[string]string, len(params)+2)
	for k, v := range params {
		query[k] = v
	}

	query["api_key"] = c.apiKey
	query["output"] = "json"

	c.log.Debug("serpapi search", zap.String("engine", params["engine"]))

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(searchPath)
	if err != nil {
		return nil, fmt.Errorf("serpapi %s request: %w", params["engine"], err)
	}

	if resp.IsError() || resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode()}

		if doc, derr := DecodeDocument(resp.Body()); derr == nil {
			apiErr.Message = doc.ErrorMessage()
		}

		return nil, apiErr
	}

	doc, err := DecodeDocument(resp.Body())
	if err != nil {
		return nil, err
	}

	if msg := doc.ErrorMessage(); msg != "" {
		c.log.Warn("serpapi returned an error message",
			zap.String("engine", params["engine"]),
			zap.String("error", msg),
		)
	}

	return doc, nil
}
