// Package rest implements the record-source contract against a
// PostgREST-style table API (the hosted database's REST layer).
//
// Every operation maps to one HTTP GET against /rest/v1/<table>:
//   - samples via select=*&limit=N
//   - exact counts via the "Prefer: count=exact" header and the
//     Content-Range response header
//   - min/max via order=<col>.<dir>&limit=1
//
// The API cannot group server-side, so ValueCounts and ElementCounts
// fetch the bare column (bounded) and group client-side. Schema
// introspection is not
// available on this path; the backend intentionally does not implement
// source.SchemaDescriber.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tablescan/internal/profile"
	"tablescan/internal/source"
	"tablescan/pkg/records"
)

func init() {
	source.Register("rest", func(ctx context.Context, cfg source.Config) (source.Source, error) {
		return New(cfg)
	})
}

// Client talks to one PostgREST endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New validates the configuration and returns a Client.
//
// No network traffic happens here; connectivity failures surface on the
// first query.
func New(cfg source.Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("rest: missing base URL")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("rest: missing API key")
	}
	return &Client{
		baseURL: base,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Close implements source.Source. The HTTP client holds no resources
// worth releasing explicitly.
func (c *Client) Close() {}

// FetchSample implements source.Source.
func (c *Client) FetchSample(ctx context.Context, table string, limit int) ([]records.Record, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("limit", strconv.Itoa(limit))

	body, _, err := c.get(ctx, table, q, "")
	if err != nil {
		return nil, fmt.Errorf("fetch sample: %w", err)
	}

	var recs []records.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("fetch sample: decode response: %w", err)
	}
	return recs, nil
}

// Count implements source.Source using an exact count header.
func (c *Client) Count(ctx context.Context, table string) (int64, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("limit", "1")

	_, hdr, err := c.get(ctx, table, q, "count=exact")
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	n, err := parseContentRangeTotal(hdr.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// CountNull implements source.Source.
func (c *Client) CountNull(ctx context.Context, table, column string) (int64, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set(column, "is.null")
	q.Set("limit", "1")

	_, hdr, err := c.get(ctx, table, q, "count=exact")
	if err != nil {
		return 0, fmt.Errorf("count null %s: %w", column, err)
	}
	n, err := parseContentRangeTotal(hdr.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("count null %s: %w", column, err)
	}
	return n, nil
}

// CountEmpty implements source.Source.
//
// Empty is expressed as a disjunction of the three empty literals the
// server distinguishes: array "{}" (native arrays), "[]" (json), and the
// empty string.
func (c *Client) CountEmpty(ctx context.Context, table, column string) (int64, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set("or", fmt.Sprintf(`(%s.eq.{},%s.eq.[],%s.eq."")`, column, column, column))
	q.Set("limit", "1")

	_, hdr, err := c.get(ctx, table, q, "count=exact")
	if err != nil {
		return 0, fmt.Errorf("count empty %s: %w", column, err)
	}
	n, err := parseContentRangeTotal(hdr.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("count empty %s: %w", column, err)
	}
	return n, nil
}

// ValueCounts implements source.Source by fetching the bare column and
// grouping client-side, bounded by source.DistinctCap rows.
func (c *Client) ValueCounts(ctx context.Context, table, column string) (map[string]int64, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set("limit", strconv.Itoa(source.DistinctCap))

	body, _, err := c.get(ctx, table, q, "")
	if err != nil {
		return nil, fmt.Errorf("value counts %s: %w", column, err)
	}

	var recs []records.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("value counts %s: decode response: %w", column, err)
	}

	out := make(map[string]int64)
	for _, r := range recs {
		v, ok := r[column]
		if !ok || v == nil {
			continue
		}
		out[profile.Stringify(v)]++
	}
	return out, nil
}

// ElementCounts implements source.Source by fetching the bare column and
// flattening its arrays client-side, the same shape as ValueCounts: the
// API cannot unnest server-side. Bounded by source.DistinctCap rows
// fetched and DistinctCap distinct elements tracked.
func (c *Client) ElementCounts(ctx context.Context, table, column, key string) (map[string]int64, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set(column, "not.is.null")
	q.Set("limit", strconv.Itoa(source.DistinctCap))

	body, _, err := c.get(ctx, table, q, "")
	if err != nil {
		return nil, fmt.Errorf("element counts %s: %w", column, err)
	}

	var recs []records.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return nil, fmt.Errorf("element counts %s: decode response: %w", column, err)
	}

	out := make(map[string]int64)
	for _, r := range recs {
		arr, ok := r[column].([]any)
		if !ok {
			continue
		}
		for _, e := range arr {
			if key != "" {
				obj, ok := e.(map[string]any)
				if !ok {
					continue
				}
				e = obj[key]
			}
			if e == nil {
				continue
			}
			s := profile.Stringify(e)
			if _, seen := out[s]; !seen && len(out) >= source.DistinctCap {
				continue
			}
			out[s]++
		}
	}
	return out, nil
}

// MinMax implements source.Source with two single-row ordered queries.
func (c *Client) MinMax(ctx context.Context, table, column string) (min, max string, ok bool, err error) {
	min, ok, err = c.boundary(ctx, table, column, "asc")
	if err != nil || !ok {
		return "", "", false, err
	}
	max, ok, err = c.boundary(ctx, table, column, "desc")
	if err != nil || !ok {
		return "", "", false, err
	}
	return min, max, true, nil
}

func (c *Client) boundary(ctx context.Context, table, column, dir string) (string, bool, error) {
	q := url.Values{}
	q.Set("select", column)
	q.Set(column, "not.is.null")
	q.Set("order", column+"."+dir)
	q.Set("limit", "1")

	body, _, err := c.get(ctx, table, q, "")
	if err != nil {
		return "", false, fmt.Errorf("%s(%s): %w", dir, column, err)
	}

	var recs []records.Record
	if err := json.Unmarshal(body, &recs); err != nil {
		return "", false, fmt.Errorf("%s(%s): decode response: %w", dir, column, err)
	}
	if len(recs) == 0 {
		return "", false, nil
	}
	return profile.Stringify(recs[0][column]), true, nil
}

// get issues a single GET and returns the body and headers.
//
// Errors include the status and a bounded body snippet, which is where
// the API reports auth and filter problems.
func (c *Client) get(ctx context.Context, table string, q url.Values, prefer string) ([]byte, http.Header, error) {
	u := fmt.Sprintf("%s/rest/v1/%s?%s", c.baseURL, url.PathEscape(table), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("http %d: %s", resp.StatusCode, snippet(body))
	}
	return body, resp.Header, nil
}

// parseContentRangeTotal extracts the total from a Content-Range header
// like "0-0/1234" or "*/0".
func parseContentRangeTotal(h string) (int64, error) {
	i := strings.LastIndexByte(h, '/')
	if i < 0 {
		return 0, fmt.Errorf("malformed Content-Range %q", h)
	}
	total := h[i+1:]
	if total == "*" {
		return 0, fmt.Errorf("server did not compute an exact count (Content-Range %q)", h)
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed Content-Range %q", h)
	}
	return n, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

var _ source.Source = (*Client)(nil)
