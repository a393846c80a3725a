// Package hub reads dataset rows from a Hugging Face datasets-server compatible API.
package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/raphaelgruber/datagen/internal/metrics"
	"github.com/raphaelgruber/datagen/internal/models"
)

// DefaultPageSize is the largest page the rows endpoint serves.
const DefaultPageSize = 100

// ErrSplitNotFound is returned when the dataset has no split with the requested name.
var ErrSplitNotFound = errors.New("split not found")

// Client fetches dataset splits page by page.
type Client struct {
	baseURL  string
	token    string
	pageSize int
	client   *http.Client
	metrics  *metrics.Collector
}

// NewClient creates a client for baseURL. token is optional and sent as a bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		pageSize: DefaultPageSize,
		client:   &http.Client{},
	}
}

// WithMetrics records the timing of every page request in c.
func (c *Client) WithMetrics(m *metrics.Collector) *Client {
	c.metrics = m
	return c
}

// WithPageSize overrides the page size (tests).
func (c *Client) WithPageSize(n int) *Client {
	if n > 0 {
		c.pageSize = n
	}
	return c
}

type splitsResponse struct {
	Splits []struct {
		Dataset string `json:"dataset"`
		Config  string `json:"config"`
		Split   string `json:"split"`
	} `json:"splits"`
}

type rowsResponse struct {
	Features []struct {
		FeatureIdx int    `json:"feature_idx"`
		Name       string `json:"name"`
	} `json:"features"`
	Rows []struct {
		RowIdx         int                        `json:"row_idx"`
		Row            map[string]json.RawMessage `json:"row"`
		TruncatedCells []string                   `json:"truncated_cells"`
	} `json:"rows"`
	NumRowsTotal int  `json:"num_rows_total"`
	Partial      bool `json:"partial"`
}

// LoadSplit returns every row of the named split, in order.
// The first dataset config that has the split is used. Rows whose cells the
// service truncated are returned with Row.Truncated set, and a partial split
// is logged, since neither is the complete data.
func (c *Client) LoadSplit(ctx context.Context, dataset, split string) ([]models.Row, error) {
	cfgName, err := c.findConfig(ctx, dataset, split)
	if err != nil {
		return nil, err
	}

	slog.Info("loading dataset split", "dataset", dataset, "config", cfgName, "split", split)

	var rows []models.Row
	partial := false
	for offset := 0; ; {
		page, err := c.fetchRows(ctx, dataset, cfgName, split, offset)
		if err != nil {
			return nil, err
		}

		names := make([]string, 0, len(page.Features))
		for _, f := range page.Features {
			names = append(names, f.Name)
		}
		for _, r := range page.Rows {
			row := toRow(r.RowIdx, names, r.Row)
			if len(r.TruncatedCells) > 0 {
				row.Truncated = r.TruncatedCells
				slog.Warn("dataset row has truncated cells", "dataset", dataset, "row", r.RowIdx, "cells", r.TruncatedCells)
			}
			rows = append(rows, row)
		}
		if page.Partial && !partial {
			partial = true
			slog.Warn("dataset split is only partially available", "dataset", dataset, "split", split, "rows_total", page.NumRowsTotal)
		}

		offset += len(page.Rows)
		slog.Debug("fetched rows page", "dataset", dataset, "rows", len(page.Rows), "progress", fmt.Sprintf("%d/%d", offset, page.NumRowsTotal))
		if len(page.Rows) == 0 || offset >= page.NumRowsTotal {
			break
		}
	}

	return rows, nil
}

func (c *Client) findConfig(ctx context.Context, dataset, split string) (string, error) {
	var resp splitsResponse
	if err := c.get(ctx, "/splits", url.Values{"dataset": {dataset}}, &resp); err != nil {
		return "", fmt.Errorf("list splits: %w", err)
	}
	for _, s := range resp.Splits {
		if s.Split == split {
			return s.Config, nil
		}
	}
	return "", fmt.Errorf("%s/%s: %w", dataset, split, ErrSplitNotFound)
}

func (c *Client) fetchRows(ctx context.Context, dataset, cfgName, split string, offset int) (*rowsResponse, error) {
	params := url.Values{
		"dataset": {dataset},
		"config":  {cfgName},
		"split":   {split},
		"offset":  {strconv.Itoa(offset)},
		"length":  {strconv.Itoa(c.pageSize)},
	}
	var resp rowsResponse
	start := time.Now()
	err := c.get(ctx, "/rows", params, &resp)
	c.metrics.RecordCall(metrics.OpHubPage, time.Since(start), 0, 0, err != nil)
	if err != nil {
		return nil, fmt.Errorf("fetch rows at offset %d: %w", offset, err)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// toRow orders cells by the declared features; cells not declared are appended by name.
func toRow(idx int, names []string, cells map[string]json.RawMessage) models.Row {
	row := models.Row{Index: idx, Fields: make([]models.Field, 0, len(cells))}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		seen[name] = struct{}{}
		row.Fields = append(row.Fields, models.Field{Name: name, Value: cells[name]})
	}

	var extra []string
	for name := range cells {
		if _, ok := seen[name]; !ok {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		row.Fields = append(row.Fields, models.Field{Name: name, Value: cells[name]})
	}
	return row
}
