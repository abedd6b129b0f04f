// Package strapi implements the account, tariff, and history stores on top of
// the Strapi content API that owns all persistent records for this service.
package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"gateway/internal/domain"
	"gateway/internal/infra"
)

// ErrMissingToken indicates that the client was configured without the store
// API token.
var ErrMissingToken = errors.New("strapi: api token is required")

// Options configures the Strapi store client.
type Options struct {
	BaseURL        string
	Token          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls against the Strapi REST API. It implements
// domain.AccountStore, domain.TariffStore, and domain.HistoryStore.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewClient constructs a store client with sane defaults.
func NewClient(opts Options) (*Client, error) {
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, ErrMissingToken
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
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
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Strapi wraps every collection response in {data: [{id, attributes}]}.
type accountList struct {
	Data []accountRecord `json:"data"`
}

type accountRecord struct {
	ID         int           `json:"id"`
	Attributes accountFields `json:"attributes"`
}

type accountFields struct {
	Email      string       `json:"email"`
	UserName   string       `json:"username"`
	APIKey     string       `json:"apikey"`
	Credits    int          `json:"creditos"`
	Expiry     time.Time    `json:"vencimiento"`
	Plan       *relation    `json:"plan"`
	Historials *historyList `json:"historials"`
}

type relation struct {
	Data *struct {
		ID int `json:"id"`
	} `json:"data"`
}

type historyList struct {
	Data []historyRecord `json:"data"`
}

type historyRecord struct {
	ID         int           `json:"id"`
	Attributes historyFields `json:"attributes"`
}

type historyFields struct {
	Date    time.Time `json:"fecha"`
	Credits int       `json:"creditos"`
	Query   string    `json:"consulta"`
	QueryID string    `json:"query_id"`
}

type tariffList struct {
	Data []tariffRecord `json:"data"`
}

type tariffRecord struct {
	ID         int          `json:"id"`
	Attributes tariffFields `json:"attributes"`
}

type tariffFields struct {
	Source string `json:"fuente"`
	Credit int    `json:"credito"`
}

// FindByAPIKey looks up accounts with an exact filter on the stored api key.
// At most one record is expected in well-formed data; callers decide what to
// do with extras.
func (c *Client) FindByAPIKey(ctx context.Context, key string) ([]domain.Account, error) {
	query := url.Values{}
	query.Set("populate", "*")
	query.Set("filters[apikey][$eq]", key)
	var list accountList
	if err := c.get(ctx, "/auth0users?"+query.Encode(), &list); err != nil {
		return nil, err
	}
	accounts := make([]domain.Account, 0, len(list.Data))
	for _, rec := range list.Data {
		accounts = append(accounts, rec.toAccount())
	}
	return accounts, nil
}

// UpdateCredits writes the new balance back with a targeted update. No other
// account field is touched.
func (c *Client) UpdateCredits(ctx context.Context, accountID, remaining int) error {
	payload := map[string]any{
		"data": map[string]any{"creditos": remaining},
	}
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/auth0users/%d", accountID), payload, nil); err != nil {
		return err
	}
	c.logger.Debug().Int("account_id", accountID).Int("creditos", remaining).Msg("strapi: credits updated")
	return nil
}

// Tariffs fetches the per-source credit costs. No caching: the tariff set is
// read fresh on every request.
func (c *Client) Tariffs(ctx context.Context) ([]domain.SourceTariff, error) {
	var list tariffList
	if err := c.get(ctx, "/creditos-fuentes", &list); err != nil {
		return nil, err
	}
	tariffs := make([]domain.SourceTariff, 0, len(list.Data))
	for _, rec := range list.Data {
		tariffs = append(tariffs, domain.SourceTariff{
			Source: rec.Attributes.Source,
			Credit: rec.Attributes.Credit,
		})
	}
	return tariffs, nil
}

// Append creates one audit-trail row for a credit-consuming action.
func (c *Client) Append(ctx context.Context, rec domain.HistoryRecord) error {
	descriptor, err := json.Marshal(map[string]string{
		"consulta": "Búsqueda por lote",
		"fuente":   rec.Source,
	})
	if err != nil {
		return fmt.Errorf("strapi: encode history descriptor: %w", err)
	}
	payload := map[string]any{
		"data": map[string]any{
			"auth_0_user": rec.AccountID,
			"creditos":    rec.Credits,
			"fecha":       rec.Date,
			"precio":      0,
			"consulta":    rec.Query,
			"plane":       rec.PlanID,
			"puntero":     map[string]any{},
			"status":      string(rec.Status),
			"query_id":    rec.QueryID,
			"busqueda":    string(descriptor),
		},
	}
	if err := c.send(ctx, http.MethodPost, "/historials", payload, nil); err != nil {
		return err
	}
	c.logger.Debug().Int("account_id", rec.AccountID).Str("query_id", rec.QueryID).Msg("strapi: history appended")
	return nil
}

// ByEmail fetches an account's full history through the populated relation
// and returns it in store order.
func (c *Client) ByEmail(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	query := url.Values{}
	query.Set("filters[email][$eq]", email)
	query.Set("populate", "historials.*")
	var list accountList
	if err := c.get(ctx, "/auth0users?"+query.Encode(), &list); err != nil {
		return nil, err
	}
	if len(list.Data) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	historials := list.Data[0].Attributes.Historials
	if historials == nil {
		return nil, nil
	}
	entries := make([]domain.HistoryEntry, 0, len(historials.Data))
	for _, rec := range historials.Data {
		entries = append(entries, domain.HistoryEntry{
			Date:    rec.Attributes.Date,
			Credits: rec.Attributes.Credits,
			Query:   rec.Attributes.Query,
			QueryID: rec.Attributes.QueryID,
		})
	}
	return entries, nil
}

func (rec accountRecord) toAccount() domain.Account {
	acc := domain.Account{
		ID:       rec.ID,
		Email:    rec.Attributes.Email,
		UserName: rec.Attributes.UserName,
		APIKey:   rec.Attributes.APIKey,
		Credits:  rec.Attributes.Credits,
		Expiry:   rec.Attributes.Expiry,
	}
	if rec.Attributes.Plan != nil && rec.Attributes.Plan.Data != nil {
		acc.PlanID = rec.Attributes.Plan.Data.ID
	}
	return acc
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("strapi: encode request: %w", err)
		}
		body = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("strapi: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("strapi: %s %s: %w: %w", method, path, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("strapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("strapi: %s %s: status %d: %w", method, path, resp.StatusCode, domain.ErrUpstream)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("strapi: decode response: %w", err)
		}
	}
	return nil
}
