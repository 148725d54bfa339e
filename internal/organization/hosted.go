package organization

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"casedesk/internal/model"
)

// HostedClient talks to the hosted backend's REST interface (PostgREST
// dialect) for the organizations table.
type HostedClient struct {
	BaseURL    string
	APIKey     string
	Table      string
	HTTPClient *http.Client
}

// ErrorResponse is the error body returned by the hosted backend
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// hostedRow is the table layout on the hosted side
type hostedRow struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name"`
	Slug         string    `json:"slug"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at,omitzero"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

func toRow(o model.Organization) hostedRow {
	return hostedRow{
		ID:           o.ID,
		Name:         o.Name,
		Slug:         o.Slug,
		ContactEmail: o.ContactEmail,
		Status:       o.Status,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

func (r hostedRow) organization() model.Organization {
	return model.Organization{
		Record:       model.Record{ID: r.ID, TenantID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt},
		Name:         r.Name,
		Slug:         r.Slug,
		ContactEmail: r.ContactEmail,
		Status:       r.Status,
	}
}

// NewHostedClient creates a client for the organizations table
func NewHostedClient(baseURL, apiKey, table string, timeout time.Duration) *HostedClient {
	if table == "" {
		table = "organizations"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HostedClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		Table:      table,
		HTTPClient: &http.Client{Timeout: timeout},
	}
}

// List returns every organization ordered by name
func (c *HostedClient) List(ctx context.Context) ([]model.Organization, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "name.asc")
	var rows []hostedRow
	if err := c.do(ctx, http.MethodGet, q, nil, &rows); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return organizations(rows), nil
}

// Insert creates an organization and returns the stored row
func (c *HostedClient) Insert(ctx context.Context, org model.Organization) (model.Organization, error) {
	var rows []hostedRow
	if err := c.do(ctx, http.MethodPost, nil, toRow(org), &rows); err != nil {
		return model.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	if len(rows) == 0 {
		return org, nil
	}
	return rows[0].organization(), nil
}

// Update overwrites the organization with org.ID
func (c *HostedClient) Update(ctx context.Context, org model.Organization) (model.Organization, error) {
	q := url.Values{}
	q.Set("id", "eq."+org.ID)
	var rows []hostedRow
	if err := c.do(ctx, http.MethodPatch, q, toRow(org), &rows); err != nil {
		return model.Organization{}, fmt.Errorf("update organization: %w", err)
	}
	if len(rows) == 0 {
		return model.Organization{}, ErrNotFound
	}
	return rows[0].organization(), nil
}

func organizations(rows []hostedRow) []model.Organization {
	out := make([]model.Organization, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.organization())
	}
	return out
}

func (c *HostedClient) do(ctx context.Context, method string, query url.Values, payload any, out any) error {
	endpoint := fmt.Sprintf("%s/rest/v1/%s", c.BaseURL, c.Table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Prefer", "return=representation")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Message == "" {
			return fmt.Errorf("hosted backend error: %d %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("hosted backend error: %d %s", resp.StatusCode, errorResp.Message)
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
