package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Client speaks the spreadsheet values surface: full-range get, single-range
// update, append. Auth is a bearer token (service-account access token
// minted outside this process).
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

type valueRange struct {
	Range  string     `json:"range,omitempty"`
	Values [][]string `json:"values"`
}

func (c *Client) valuesURL(spreadsheetID, rng, suffix, query string) string {
	u := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s%s",
		c.BaseURL, url.PathEscape(spreadsheetID), url.PathEscape(rng), suffix)
	if query != "" {
		u += "?" + query
	}
	return u
}

func (c *Client) do(ctx context.Context, method, u string, body, out any) error {
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("sheets request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("sheets %s %s: %s", method, req.URL.Path, resp.Status)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode sheets response: %w", err)
		}
	}
	return nil
}

// GetValues fetches a range, e.g. "Sheet1!A:Z".
func (c *Client) GetValues(ctx context.Context, spreadsheetID, rng string) ([][]string, error) {
	var vr valueRange
	u := c.valuesURL(spreadsheetID, rng, "", "")
	if err := c.do(ctx, http.MethodGet, u, nil, &vr); err != nil {
		return nil, err
	}
	return vr.Values, nil
}

// UpdateValues overwrites exactly one range.
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, rng string, values [][]string) error {
	u := c.valuesURL(spreadsheetID, rng, "", "valueInputOption=RAW")
	return c.do(ctx, http.MethodPut, u, valueRange{Values: values}, nil)
}

// AppendValues appends rows after the last non-empty row of the range.
func (c *Client) AppendValues(ctx context.Context, spreadsheetID, rng string, values [][]string) error {
	u := c.valuesURL(spreadsheetID, rng, ":append", "valueInputOption=RAW")
	return c.do(ctx, http.MethodPost, u, valueRange{Values: values}, nil)
}
