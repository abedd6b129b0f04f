// Package advantech implements the client for the partner batch-search API:
// one asynchronous job per submitted subject list, observed by polling.
package advantech

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gateway/internal/domain"
	"gateway/internal/infra"
)

// ErrMissingKey indicates that the client was configured without the partner
// API key.
var ErrMissingKey = errors.New("advantech: api key is required")

// Subjects are always submitted as this item type.
const itemType = "cedulas"

// Options configures the partner search client.
type Options struct {
	BaseURL        string
	Key            string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the partner search API. It implements
// domain.SearchProvider.
type Client struct {
	baseURL    string
	key        string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a partner client. The partner environment serves a
// certificate this service cannot verify, so the default transport skips
// chain validation; tests inject their own HTTPClient.
func NewClient(opts Options) (*Client, error) {
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		return nil, ErrMissingKey
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		}
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		key:        key,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

type createRequest struct {
	List     []string `json:"list"`
	ItemType string   `json:"item_type"`
	Source   string   `json:"source"`
	Key      string   `json:"key"`
}

type createResponse struct {
	QueryID string `json:"query_id"`
}

type statusRequest struct {
	QueryID string `json:"query_id"`
	Key     string `json:"key"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type fullDataRequest struct {
	QueryID   string         `json:"query_id"`
	Selection map[string]any `json:"selection"`
	Key       string         `json:"key"`
}

type fullDataResponse struct {
	Data json.RawMessage `json:"data"`
}

// CreateSearch submits one batch search and returns the partner-assigned
// query id.
func (c *Client) CreateSearch(ctx context.Context, subjects []string, source string) (string, error) {
	payload := createRequest{
		List:     subjects,
		ItemType: itemType,
		Source:   source,
		Key:      c.key,
	}
	var decoded createResponse
	if err := c.post(ctx, "/data/create_search", payload, &decoded); err != nil {
		return "", err
	}
	if decoded.QueryID == "" {
		return "", fmt.Errorf("advantech: create_search returned no query_id: %w", domain.ErrUpstream)
	}
	c.logger.Debug().Str("query_id", decoded.QueryID).Str("source", source).Int("subjects", len(subjects)).Msg("advantech: search created")
	return decoded.QueryID, nil
}

// Status polls the partner for the current job state. One round trip per
// call; the caller decides whether to poll again.
func (c *Client) Status(ctx context.Context, queryID string) (domain.SearchStatus, error) {
	var decoded statusResponse
	if err := c.post(ctx, "/data/status", statusRequest{QueryID: queryID, Key: c.key}, &decoded); err != nil {
		return "", err
	}
	return domain.SearchStatus(decoded.Status), nil
}

// FullData fetches a ready job's result with an empty selection, returning
// the payload verbatim.
func (c *Client) FullData(ctx context.Context, queryID string) (json.RawMessage, error) {
	payload := fullDataRequest{
		QueryID:   queryID,
		Selection: map[string]any{},
		Key:       c.key,
	}
	var decoded fullDataResponse
	if err := c.post(ctx, "/data/get_full_data", payload, &decoded); err != nil {
		return nil, err
	}
	return decoded.Data, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("advantech: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("advantech: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("advantech: %s: %w: %w", path, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("advantech: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("advantech: %s: status %d: %w", path, resp.StatusCode, domain.ErrUpstream)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("advantech: decode response: %w", err)
	}
	return nil
}
