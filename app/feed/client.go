package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sweepboard/app/interfaces"

	"github.com/ohler55/ojg/oj"
	"github.com/ulikunitz/xz"
)

// Client fetches result snapshots from the pipeline API. The feed owns the
// data; the client only reads it, and a conditional fetch lets the server
// answer "unchanged" so the caller keeps its current snapshot untouched.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a feed client for the given API base URL. The session
// token is attached as a bearer credential when non-empty; the client never
// validates it.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch loads the current result snapshot. When lastToken is the feed's
// current mtime token the server responds 304 and Fetch returns
// (nil, false, nil): the caller must keep its existing snapshot and all
// derived state. Any other success returns (snapshot, true, nil).
func (c *Client) Fetch(ctx context.Context, lastToken string) (*interfaces.Snapshot, bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/results", nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if lastToken != "" {
		req.Header.Set("If-None-Match", lastToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch results: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return nil, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, false, fmt.Errorf("results request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	reader := io.Reader(resp.Body)
	// Large sweeps are served xz-compressed.
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "xz") {
		xr, err := xz.NewReader(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("failed to open xz body: %w", err)
		}
		reader = xr
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}

	snap, err := parseSnapshot(body)
	if err != nil {
		return nil, false, err
	}
	return snap, true, nil
}

// parseSnapshot decodes a feed payload into a Snapshot. The row objects are
// dynamically shaped, so the body is parsed generically and coerced per
// field; malformed cells are dropped rather than failing the whole load.
func parseSnapshot(body []byte) (*interfaces.Snapshot, error) {
	parsed, err := oj.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results payload: %w", err)
	}
	root, ok := parsed.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("results payload must be an object")
	}

	snap := &interfaces.Snapshot{
		Groups:   make(map[string][]string),
		LoadedAt: time.Now(),
	}

	if cols, ok := root["columns"].([]interface{}); ok {
		for _, c := range cols {
			if name, ok := c.(string); ok && !interfaces.IsCarrierColumn(name) {
				snap.Columns = append(snap.Columns, name)
			}
		}
	}

	if groups, ok := root["column_groups"].(map[string]interface{}); ok {
		for name, v := range groups {
			cols, ok := v.([]interface{})
			if !ok {
				continue
			}
			for _, c := range cols {
				if col, ok := c.(string); ok && !interfaces.IsCarrierColumn(col) {
					snap.Groups[name] = append(snap.Groups[name], col)
				}
			}
		}
	}

	if rows, ok := root["rows"].([]interface{}); ok {
		for i, r := range rows {
			obj, ok := r.(map[string]interface{})
			if !ok {
				continue
			}
			snap.Rows = append(snap.Rows, parseRow(i, obj))
		}
	}

	snap.Total = len(snap.Rows)
	if t, ok := root["total"]; ok {
		if n, ok := asInt(t); ok {
			snap.Total = n
		}
	}
	if m, ok := root["mtime"].(string); ok {
		snap.ModToken = m
	}
	return snap, nil
}

// parseRow coerces one row object: carrier fields become the activation map,
// nulls become absent cells, everything else becomes raw cell text.
func parseRow(index int, obj map[string]interface{}) *interfaces.Row {
	row := &interfaces.Row{
		Index: index,
		Cells: make(map[string]string, len(obj)),
	}

	variantCols := parseVariantColumns(obj[interfaces.VariantColumnsField])
	activations := parseActivations(obj[interfaces.VariantActivationsField])
	if len(variantCols) > 0 || len(activations) > 0 {
		row.Activations = make(map[string]bool, len(activations))
		// Listed variant columns default to inactive so the display layer
		// knows which columns carry emphasis at all.
		for _, col := range variantCols {
			row.Activations[col] = false
		}
		for col, active := range activations {
			row.Activations[col] = active
		}
	}

	for key, v := range obj {
		if interfaces.IsCarrierColumn(key) {
			continue
		}
		if v == nil {
			continue
		}
		row.Cells[key] = formatCell(v)
	}
	return row
}

// parseVariantColumns accepts either a JSON array or a JSON-encoded string
// listing the variant column names.
func parseVariantColumns(v interface{}) []string {
	switch t := v.(type) {
	case []interface{}:
		var out []string
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		parsed, err := oj.ParseString(t)
		if err != nil {
			return nil
		}
		return parseVariantColumns(parsed)
	}
	return nil
}

// parseActivations accepts either a JSON object or a JSON-encoded string
// mapping variant column names to activation flags.
func parseActivations(v interface{}) map[string]bool {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]bool, len(t))
		for col, flag := range t {
			if b, ok := flag.(bool); ok {
				out[col] = b
			}
		}
		return out
	case string:
		parsed, err := oj.ParseString(t)
		if err != nil {
			return nil
		}
		return parseActivations(parsed)
	}
	return nil
}

// formatCell renders a decoded JSON value as raw cell text.
func formatCell(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// asInt coerces the numeric types ojg may produce for a JSON number.
func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case int:
		return t, true
	}
	return 0, false
}
