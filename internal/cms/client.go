package cms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/peoplemap/internal/fetch"
	"github.com/jonathan/peoplemap/internal/logger"
	"github.com/jonathan/peoplemap/internal/types"
)

// DefaultAPIVersion is the dated API version sent when none is configured.
const DefaultAPIVersion = "2024-01-01"

// ClientConfig holds connection settings for the content store's query API.
type ClientConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	// BaseURL overrides the hosted API endpoint derived from ProjectID.
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client queries the hosted content store over HTTPS.
type Client struct {
	cfg ClientConfig
}

// NewClient validates the configuration and returns a query client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.Dataset == "" {
		return nil, fmt.Errorf("cms: dataset is required")
	}
	if cfg.BaseURL == "" {
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("cms: project ID or base URL is required")
		}
		cfg.BaseURL = fmt.Sprintf("https://%s.api.sanity.io", cfg.ProjectID)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = fetch.DefaultTimeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg}, nil
}

// QueryURL returns the request URL for a query.
func (c *Client) QueryURL(q Query) string {
	return fmt.Sprintf("%s/v%s/data/query/%s?query=%s",
		c.cfg.BaseURL,
		strings.TrimPrefix(c.cfg.APIVersion, "v"),
		url.PathEscape(c.cfg.Dataset),
		url.QueryEscape(q.GROQ()),
	)
}

// FetchPeople runs the query against the content store.
func (c *Client) FetchPeople(ctx context.Context, q Query) ([]types.PersonRecord, error) {
	opts := fetch.DefaultOptions()
	opts.Timeout = c.cfg.Timeout
	opts.Client = c.cfg.HTTPClient
	opts.Headers = map[string]string{"Accept": "application/json"}
	if c.cfg.Token != "" {
		opts.Headers["Authorization"] = "Bearer " + c.cfg.Token
	}

	start := time.Now()
	result, err := fetch.URL(ctx, c.QueryURL(q), opts)
	if err != nil {
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) && result != nil {
			return nil, &SourceUnavailableError{
				Message: fmt.Sprintf("query returned HTTP %d", result.StatusCode),
				Cause:   err,
			}
		}
		return nil, &SourceUnavailableError{Message: "query request failed", Cause: err}
	}

	records, err := DecodeQueryResponse(result.Body)
	if err != nil {
		return nil, err
	}

	logger.Debug("content query complete",
		"dataset", c.cfg.Dataset,
		"records", len(records),
		"elapsed", time.Since(start))
	return records, nil
}
