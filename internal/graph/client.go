// Package graph is a minimal Microsoft Graph workbook client: just enough
// surface to find a shared workbook, pick a table, and append rows to it.
package graph

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ignite/lead-ledger/internal/pkg/httpretry"
)

// DefaultBaseURL is the Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Client calls the Graph workbook API with a bearer token obtained
// elsewhere (see Authenticate). It holds no session state beyond the
// token; workbook identity travels with every call.
type Client struct {
	baseURL    string
	token      string
	httpClient httpretry.HTTPDoer
}

// NewClient creates a client around an access token.
func NewClient(accessToken string) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		token:   accessToken,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: 60 * time.Second,
		}, 3),
	}
}

// SetBaseURL overrides the API endpoint (useful for testing).
func (c *Client) SetBaseURL(u string) { c.baseURL = u }

// SetHTTPClient sets a custom HTTP client (useful for testing).
func (c *Client) SetHTTPClient(d httpretry.HTTPDoer) { c.httpClient = d }

// ItemRef identifies a workbook either by drive item id or by the sharing
// URL users paste from the Office UI. Exactly one side should be set.
type ItemRef struct {
	ItemID   string
	ShareURL string
}

func (r ItemRef) path() string {
	if r.ItemID != "" {
		return "/me/drive/items/" + url.PathEscape(r.ItemID)
	}
	return "/shares/" + encodeShareURL(r.ShareURL) + "/driveItem"
}

// encodeShareURL converts a sharing URL into the Graph share id form.
func encodeShareURL(u string) string {
	return "u!" + base64.RawURLEncoding.EncodeToString([]byte(u))
}

// DriveItem is a file in a drive.
type DriveItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Worksheet is one sheet of a workbook.
type Worksheet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Table is a workbook table.
type Table struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type listResponse[T any] struct {
	Value []T `json:"value"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graph request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read graph response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode graph response: %w", err)
		}
	}
	return nil
}

// SearchFile finds files in the signed-in user's drive by name.
func (c *Client) SearchFile(ctx context.Context, name string) ([]DriveItem, error) {
	var out listResponse[DriveItem]
	path := fmt.Sprintf("/me/drive/root/search(q='%s')", url.PathEscape(name))
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// Worksheets lists the sheets of a workbook.
func (c *Client) Worksheets(ctx context.Context, ref ItemRef) ([]Worksheet, error) {
	var out listResponse[Worksheet]
	if err := c.do(ctx, http.MethodGet, ref.path()+"/workbook/worksheets", nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// WorksheetTables lists the tables on a sheet.
func (c *Client) WorksheetTables(ctx context.Context, ref ItemRef, sheet string) ([]Table, error) {
	var out listResponse[Table]
	path := ref.path() + "/workbook/worksheets/" + url.PathEscape(sheet) + "/tables"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Value, nil
}

// CreateTable creates a table on a sheet over the given header range
// (e.g. "Sheet1!A1:P1").
func (c *Client) CreateTable(ctx context.Context, ref ItemRef, sheet, headerRange string) (Table, error) {
	var out Table
	body := map[string]interface{}{"address": headerRange, "hasHeaders": true}
	path := ref.path() + "/workbook/worksheets/" + url.PathEscape(sheet) + "/tables/add"
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return Table{}, err
	}
	return out, nil
}

// TableHeaders fetches a table's header row, which defines the exact
// column order AppendRows must honor.
func (c *Client) TableHeaders(ctx context.Context, ref ItemRef, tableID string) ([]string, error) {
	var out struct {
		Values [][]interface{} `json:"values"`
	}
	path := ref.path() + "/workbook/tables/" + url.PathEscape(tableID) + "/headerRowRange"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if len(out.Values) == 0 {
		return nil, nil
	}
	headers := make([]string, len(out.Values[0]))
	for i, v := range out.Values[0] {
		headers[i] = fmt.Sprintf("%v", v)
	}
	return headers, nil
}

func (c *Client) addRows(ctx context.Context, ref ItemRef, tableID string, values [][]string) error {
	rows := make([][]interface{}, len(values))
	for i, r := range values {
		row := make([]interface{}, len(r))
		for j, v := range r {
			row[j] = v
		}
		rows[i] = row
	}
	body := map[string]interface{}{"values": rows}
	path := ref.path() + "/workbook/tables/" + url.PathEscape(tableID) + "/rows/add"
	return c.do(ctx, http.MethodPost, path, body, nil)
}

// ColumnLetter converts a zero-based column index to its A1 letter form:
// 0 -> A, 25 -> Z, 26 -> AA.
func ColumnLetter(idx int) string {
	letters := ""
	n := idx + 1
	for n > 0 {
		n--
		letters = string(rune('A'+n%26)) + letters
		n /= 26
	}
	return letters
}
