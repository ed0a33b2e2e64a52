package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/habitmaster/habitmaster/config"
)

// ErrNeedsReauth means the stored Google token is missing, expired, or was
// rejected with 401/403. Callers surface a reauthentication state instead of
// a generic failure.
var ErrNeedsReauth = errors.New("sheets: google reauthentication required")

// Spreadsheet identifies a created or fetched spreadsheet.
type Spreadsheet struct {
	SpreadsheetID  string `json:"spreadsheetId"`
	SpreadsheetURL string `json:"spreadsheetUrl"`
}

// RangeValues is one range payload in a values batchUpdate.
type RangeValues struct {
	Range  string          `json:"range"`
	Values [][]interface{} `json:"values"`
}

// Client wraps the Google Sheets REST v4 values and spreadsheets endpoints.
type Client struct {
	baseURL      string
	tokenInfoURL string
	httpc        *http.Client
}

// NewClient builds a client from loaded configuration.
func NewClient(cfg config.AppConfig) *Client {
	return &Client{
		baseURL:      cfg.SheetsBaseURL,
		tokenInfoURL: cfg.TokenInfoURL,
		httpc:        &http.Client{},
	}
}

// ValidateToken probes the tokeninfo endpoint. Any non-200 means the token
// is no longer usable.
func (c *Client) ValidateToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrNeedsReauth
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.tokenInfoURL+"?access_token="+url.QueryEscape(token), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ErrNeedsReauth
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string, payload interface{}) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.httpc.Do(req)
}

// apiError digs the human message out of the sheets error envelope.
func apiError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrNeedsReauth
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("sheets: api status %d: %s", resp.StatusCode, envelope.Error.Message)
	}
	return fmt.Errorf("sheets: api status %d: %s", resp.StatusCode, string(raw))
}

// CreateSpreadsheet creates a spreadsheet with the given title and tab names.
func (c *Client) CreateSpreadsheet(ctx context.Context, token, title string, tabs []string) (Spreadsheet, error) {
	type sheetProps struct {
		Properties struct {
			Title string `json:"title"`
			Index int    `json:"index"`
		} `json:"properties"`
	}
	payload := struct {
		Properties struct {
			Title string `json:"title"`
		} `json:"properties"`
		Sheets []sheetProps `json:"sheets,omitempty"`
	}{}
	payload.Properties.Title = title
	for i, tab := range tabs {
		var sp sheetProps
		sp.Properties.Title = tab
		sp.Properties.Index = i
		payload.Sheets = append(payload.Sheets, sp)
	}

	resp, err := c.do(ctx, http.MethodPost, "/spreadsheets", token, payload)
	if err != nil {
		return Spreadsheet{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Spreadsheet{}, apiError(resp)
	}
	var out Spreadsheet
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Spreadsheet{}, err
	}
	return out, nil
}

// SpreadsheetExists reports whether the spreadsheet is still reachable.
// A 404 is not an error, just absence.
func (c *Client) SpreadsheetExists(ctx context.Context, token, spreadsheetID string) (bool, error) {
	resp, err := c.do(ctx, http.MethodGet, "/spreadsheets/"+spreadsheetID, token, nil)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, apiError(resp)
}

// ReadRange fetches cell values in the given A1 range as strings.
func (c *Client) ReadRange(ctx context.Context, token, spreadsheetID, a1Range string) ([][]string, error) {
	resp, err := c.do(ctx, http.MethodGet,
		"/spreadsheets/"+spreadsheetID+"/values/"+url.PathEscape(a1Range), token, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp)
	}
	var out struct {
		Values [][]interface{} `json:"values"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	rows := make([][]string, len(out.Values))
	for i, row := range out.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return rows, nil
}

// UpdateRange overwrites cell values starting at the given A1 range.
func (c *Client) UpdateRange(ctx context.Context, token, spreadsheetID, a1Range string, values [][]interface{}) error {
	path := "/spreadsheets/" + spreadsheetID + "/values/" + url.PathEscape(a1Range) + "?valueInputOption=USER_ENTERED"
	resp, err := c.do(ctx, http.MethodPut, path, token, map[string]interface{}{"values": values})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// AppendRows appends rows after the last row of the given range's table.
func (c *Client) AppendRows(ctx context.Context, token, spreadsheetID, a1Range string, values [][]interface{}) error {
	path := "/spreadsheets/" + spreadsheetID + "/values/" + url.PathEscape(a1Range) + ":append?valueInputOption=USER_ENTERED"
	resp, err := c.do(ctx, http.MethodPost, path, token, map[string]interface{}{"values": values})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// BatchUpdateValues overwrites several ranges in one round trip.
func (c *Client) BatchUpdateValues(ctx context.Context, token, spreadsheetID string, data []RangeValues) error {
	payload := map[string]interface{}{
		"valueInputOption": "USER_ENTERED",
		"data":             data,
	}
	resp, err := c.do(ctx, http.MethodPost, "/spreadsheets/"+spreadsheetID+"/values:batchUpdate", token, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}

// FormatHeaders bolds the first row of every tab. Best effort; formatting
// failures never fail a sync.
func (c *Client) FormatHeaders(ctx context.Context, token, spreadsheetID string) error {
	resp, err := c.do(ctx, http.MethodGet, "/spreadsheets/"+spreadsheetID, token, nil)
	if err != nil {
		return err
	}
	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int `json:"sheetId"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	err = json.NewDecoder(resp.Body).Decode(&meta)
	resp.Body.Close()
	if err != nil {
		return err
	}

	var requests []map[string]interface{}
	for _, s := range meta.Sheets {
		requests = append(requests, map[string]interface{}{
			"repeatCell": map[string]interface{}{
				"range": map[string]interface{}{
					"sheetId":       s.Properties.SheetID,
					"startRowIndex": 0,
					"endRowIndex":   1,
				},
				"cell": map[string]interface{}{
					"userEnteredFormat": map[string]interface{}{
						"backgroundColor": map[string]float64{"red": 0.16, "green": 0.71, "blue": 0.53},
						"textFormat": map[string]interface{}{
							"bold":            true,
							"foregroundColor": map[string]float64{"red": 1, "green": 1, "blue": 1},
						},
					},
				},
				"fields": "userEnteredFormat(backgroundColor,textFormat)",
			},
		})
	}
	if len(requests) == 0 {
		return nil
	}

	resp, err = c.do(ctx, http.MethodPost, "/spreadsheets/"+spreadsheetID+":batchUpdate", token,
		map[string]interface{}{"requests": requests})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}
	return nil
}
