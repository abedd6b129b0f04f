package strapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"gateway/internal/domain"
)

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient(Options{BaseURL: "https://cms.example.com/api"}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}
}

func TestFindByAPIKey(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/auth0users", map[string]any{
		"data": []any{
			map[string]any{
				"id": 7,
				"attributes": map[string]any{
					"email":       "ana@example.com",
					"username":    "ana",
					"apikey":      "deadbeef",
					"creditos":    100,
					"vencimiento": "2030-12-31T23:59:59.000Z",
					"plan":        map[string]any{"data": map[string]any{"id": 3}},
				},
			},
		},
	})

	accounts, err := client.FindByAPIKey(context.Background(), "deadbeef")
	if err != nil {
		t.Fatalf("FindByAPIKey error: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("len(accounts) = %d, want 1", len(accounts))
	}
	acc := accounts[0]
	if acc.ID != 7 || acc.Credits != 100 || acc.PlanID != 3 || acc.APIKey != "deadbeef" {
		t.Fatalf("unexpected account: %+v", acc)
	}
	req := transport.lastRequest
	if got := req.URL.Query().Get("filters[apikey][$eq]"); got != "deadbeef" {
		t.Fatalf("apikey filter = %q", got)
	}
	if got := req.URL.Query().Get("populate"); got != "*" {
		t.Fatalf("populate = %q, want *", got)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer store-token" {
		t.Fatalf("authorization = %q", got)
	}
}

func TestUpdateCreditsSendsTargetedPut(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/auth0users/7", map[string]any{"data": map[string]any{"id": 7}})

	if err := client.UpdateCredits(context.Background(), 7, 80); err != nil {
		t.Fatalf("UpdateCredits error: %v", err)
	}
	if transport.lastRequest.Method != http.MethodPut {
		t.Fatalf("method = %s, want PUT", transport.lastRequest.Method)
	}
	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got := payload.Data["creditos"]; got != float64(80) {
		t.Fatalf("creditos = %v, want 80", got)
	}
	if len(payload.Data) != 1 {
		t.Fatalf("update must touch only creditos, got %v", payload.Data)
	}
}

func TestTariffs(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/creditos-fuentes", map[string]any{
		"data": []any{
			map[string]any{"id": 1, "attributes": map[string]any{"fuente": "noticias", "credito": 10}},
			map[string]any{"id": 2, "attributes": map[string]any{"fuente": "judicial", "credito": 25}},
		},
	})

	tariffs, err := client.Tariffs(context.Background())
	if err != nil {
		t.Fatalf("Tariffs error: %v", err)
	}
	if len(tariffs) != 2 || tariffs[0].Source != "noticias" || tariffs[0].Credit != 10 {
		t.Fatalf("unexpected tariffs: %+v", tariffs)
	}
}

func TestAppendHistoryPayload(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/historials", map[string]any{"data": map[string]any{"id": 55}})

	when := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	err := client.Append(context.Background(), domain.HistoryRecord{
		AccountID: 7,
		PlanID:    3,
		Credits:   -20,
		Date:      when,
		Query:     "Búsqueda por lote noticias",
		Status:    domain.StatusInProgress,
		QueryID:   "q-123",
		Source:    "noticias",
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	var payload struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(transport.lastBody, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if got := payload.Data["creditos"]; got != float64(-20) {
		t.Fatalf("creditos = %v, want -20", got)
	}
	if got := payload.Data["status"]; got != "IN PROGRESS" {
		t.Fatalf("status = %v", got)
	}
	if got := payload.Data["query_id"]; got != "q-123" {
		t.Fatalf("query_id = %v", got)
	}
	if got := payload.Data["auth_0_user"]; got != float64(7) {
		t.Fatalf("auth_0_user = %v", got)
	}
	descriptor, _ := payload.Data["busqueda"].(string)
	if !strings.Contains(descriptor, `"fuente":"noticias"`) {
		t.Fatalf("busqueda descriptor = %q", descriptor)
	}
}

func TestByEmailParsesPopulatedHistory(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/auth0users", map[string]any{
		"data": []any{
			map[string]any{
				"id": 7,
				"attributes": map[string]any{
					"email": "ana@example.com",
					"historials": map[string]any{
						"data": []any{
							map[string]any{"id": 1, "attributes": map[string]any{
								"fecha":    "2024-05-02T10:30:00.000Z",
								"creditos": -20,
								"consulta": "Búsqueda por lote noticias",
								"query_id": "q-123",
							}},
							map[string]any{"id": 2, "attributes": map[string]any{
								"fecha":    "2024-05-03T09:00:00.000Z",
								"creditos": 100,
								"consulta": "Recarga",
								"query_id": "",
							}},
						},
					},
				},
			},
		},
	})

	entries, err := client.ByEmail(context.Background(), "ana@example.com")
	if err != nil {
		t.Fatalf("ByEmail error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].QueryID != "q-123" || entries[0].Credits != -20 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	query := transport.lastRequest.URL.Query()
	if got := query.Get("filters[email][$eq]"); got != "ana@example.com" {
		t.Fatalf("email filter = %q", got)
	}
	if got := query.Get("populate"); got != "historials.*" {
		t.Fatalf("populate = %q", got)
	}
}

func TestByEmailNoAccount(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	client := newTestClient(t, transport)
	transport.setJSONResponse("/auth0users", map[string]any{"data": []any{}})

	if _, err := client.ByEmail(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestNonSuccessStatusIsUpstreamError(t *testing.T) {
	transport := &captureTransport{responses: map[string]responseStub{}}
	transport.responses["/auth0users"] = responseStub{status: http.StatusBadGateway, body: []byte("boom")}
	client := newTestClient(t, transport)

	if _, err := client.FindByAPIKey(context.Background(), "k"); !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func newTestClient(t *testing.T, transport http.RoundTripper) *Client {
	t.Helper()
	// The fake transport matches on URL path, so the base URL carries none.
	client, err := NewClient(Options{
		BaseURL:    "https://cms.example.com",
		Token:      "store-token",
		HTTPClient: &http.Client{Transport: transport},
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

type captureTransport struct {
	responses   map[string]responseStub
	lastRequest *http.Request
	lastBody    []byte
}

type responseStub struct {
	status int
	body   []byte
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastRequest = req
	c.lastBody = nil
	if req.Body != nil {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		req.Body.Close()
		c.lastBody = body
	}
	if stub, ok := c.responses[req.URL.Path]; ok {
		status := stub.status
		if status == 0 {
			status = http.StatusOK
		}
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(stub.body)),
		}, nil
	}
	return &http.Response{
		StatusCode: http.StatusNotFound,
		Body:       io.NopCloser(strings.NewReader("not found")),
	}, nil
}

func (c *captureTransport) setJSONResponse(path string, payload any) {
	body, _ := json.Marshal(payload)
	c.responses[path] = responseStub{status: http.StatusOK, body: body}
}
