// Package sdk provides the client-side library for the dashboard store.
// It supports both a remote daemon over HTTP and a local embedded store.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/rs/zerolog/log"
)

const maxAttempts = 3

// Client is a remote client for the dashboard daemon.
// It implements the Dashboard interface.
type Client struct {
	base *url.URL
	http *http.Client
}

// apiResponse covers every JSON body the daemon answers with.
type apiResponse struct {
	Success bool            `json:"success"`
	ID      string          `json:"id"`
	Chart   json.RawMessage `json:"chart"`
	Table   json.RawMessage `json:"table"`
	Error   string          `json:"error"`
	Kind    validate.Kind   `json:"kind"`
}

// Connect checks that a daemon answers at addr ("host:port" or a URL) and
// returns a client for it.
func Connect(addr string) (*Client, error) {
	c, err := NewClient(addr, nil)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClient creates a client without contacting the daemon. A nil hc uses a
// client with a 30s timeout.
func NewClient(addr string, hc *http.Client) (*Client, error) {
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse daemon address: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse daemon address %q: missing host", addr)
	}
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{base: u, http: hc}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// Ping checks the daemon's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// do sends a request and decodes a 2xx JSON body into out. Idempotent requests
// are retried with backoff when the transport fails; error statuses are not.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	attempts := maxAttempts
	if method == http.MethodPost {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		var resp *http.Response
		resp, err = c.send(ctx, method, path, payload)
		if err == nil {
			defer resp.Body.Close()
			err = decodeResponse(resp, out)
			// An earlier DELETE may have been applied before its response was lost.
			if i > 0 && method == http.MethodDelete && errors.Is(err, dashboard.ErrNotFound) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			return err
		}

		log.Warn().Err(err).Int("attempt", i+1).Str("path", path).Msg("dashboard request failed")
		if i+1 < attempts {
			time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
		}
	}
	return fmt.Errorf("failed after %d attempts. last error: %w", attempts, err)
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), rd)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	return c.http.Do(req)
}

// decodeResponse turns error statuses back into the errors the store returns
// in-process, so callers can use errors.Is / errors.As either way.
func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	var r apiResponse
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&r)
	if r.Error == "" {
		r.Error = resp.Status
	}

	switch {
	case r.Kind != "":
		return &validate.Error{Kind: r.Kind, Message: r.Error}
	case resp.StatusCode == http.StatusNotFound && r.Error == dashboard.ErrChartNotFound.Error():
		return dashboard.ErrChartNotFound
	case resp.StatusCode == http.StatusNotFound && r.Error == dashboard.ErrTableNotFound.Error():
		return dashboard.ErrTableNotFound
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", r.Error, dashboard.ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest && strings.HasPrefix(r.Error, dashboard.ErrInvalidTheme.Error()):
		return fmt.Errorf("%w%s", dashboard.ErrInvalidTheme, strings.TrimPrefix(r.Error, dashboard.ErrInvalidTheme.Error()))
	default:
		return fmt.Errorf("dashboard daemon: %s (status %d)", r.Error, resp.StatusCode)
	}
}

func (c *Client) GetAllCharts() []schema.Chart {
	var charts []schema.Chart
	if err := c.do(context.Background(), http.MethodGet, "/api/charts", nil, &charts); err != nil {
		log.Warn().Err(err).Msg("failed to list charts")
		return []schema.Chart{}
	}
	if charts == nil {
		charts = []schema.Chart{}
	}
	return charts
}

func (c *Client) GetChartByID(id string) (schema.Chart, error) {
	var chart schema.Chart
	err := c.do(context.Background(), http.MethodGet, "/api/charts/"+url.PathEscape(id), nil, &chart)
	return chart, err
}

func (c *Client) SaveChart(def schema.ChartDefinition) (schema.Chart, error) {
	return c.chartCall(http.MethodPost, "/api/charts", def)
}

func (c *Client) UpdateChart(id string, patch dashboard.ChartPatch) (schema.Chart, error) {
	return c.chartCall(http.MethodPut, "/api/charts/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteChart(id string) error {
	return c.do(context.Background(), http.MethodDelete, "/api/charts/"+url.PathEscape(id), nil, nil)
}

// ImportChart uploads a chart file. The daemon applies the same checks as a
// local import.
func (c *Client) ImportChart(ctx context.Context, name string, content []byte) (schema.Chart, error) {
	var r apiResponse
	if err := c.upload(ctx, "/api/charts/import", name, content, nil, &r); err != nil {
		return schema.Chart{}, err
	}
	var chart schema.Chart
	err := json.Unmarshal(r.Chart, &chart)
	return chart, err
}

// ChartImage downloads a rendered chart. format is "png" or "svg".
func (c *Client) ChartImage(ctx context.Context, id, format string, width, height int) ([]byte, error) {
	q := url.Values{}
	q.Set("format", format)
	if width > 0 {
		q.Set("width", fmt.Sprint(width))
	}
	if height > 0 {
		q.Set("height", fmt.Sprint(height))
	}
	return c.download(ctx, "/api/charts/"+url.PathEscape(id)+"/image?"+q.Encode())
}

func (c *Client) chartCall(method, path string, body any) (schema.Chart, error) {
	var r apiResponse
	if err := c.do(context.Background(), method, path, body, &r); err != nil {
		return schema.Chart{}, err
	}
	var chart schema.Chart
	if err := json.Unmarshal(r.Chart, &chart); err != nil {
		return schema.Chart{}, fmt.Errorf("decode chart: %w", err)
	}
	return chart, nil
}

func (c *Client) GetAllTables() []schema.Table {
	var tables []schema.Table
	if err := c.do(context.Background(), http.MethodGet, "/api/tables", nil, &tables); err != nil {
		log.Warn().Err(err).Msg("failed to list tables")
		return []schema.Table{}
	}
	if tables == nil {
		tables = []schema.Table{}
	}
	return tables
}

func (c *Client) GetTableByID(id string) (schema.Table, error) {
	var table schema.Table
	err := c.do(context.Background(), http.MethodGet, "/api/tables/"+url.PathEscape(id), nil, &table)
	return table, err
}

func (c *Client) SaveTable(def schema.TableDefinition) (schema.Table, error) {
	return c.tableCall(http.MethodPost, "/api/tables", def)
}

func (c *Client) UpdateTable(id string, patch dashboard.TablePatch) (schema.Table, error) {
	return c.tableCall(http.MethodPut, "/api/tables/"+url.PathEscape(id), patch)
}

func (c *Client) DeleteTable(id string) error {
	return c.do(context.Background(), http.MethodDelete, "/api/tables/"+url.PathEscape(id), nil, nil)
}

// ImportTable uploads a .xlsx or .json table. sheet may be empty.
func (c *Client) ImportTable(ctx context.Context, name string, content []byte, sheet string) (schema.Table, error) {
	var fields map[string]string
	if sheet != "" {
		fields = map[string]string{"sheet": sheet}
	}
	var r apiResponse
	if err := c.upload(ctx, "/api/tables/import", name, content, fields, &r); err != nil {
		return schema.Table{}, err
	}
	var table schema.Table
	err := json.Unmarshal(r.Table, &table)
	return table, err
}

// ExportTable downloads a table as "json" or "xlsx".
func (c *Client) ExportTable(ctx context.Context, id, format string) ([]byte, error) {
	return c.download(ctx, "/api/tables/"+url.PathEscape(id)+"/"+url.PathEscape(format))
}

// TableToChart derives a chart from a stored table, saving it when save is set.
func (c *Client) TableToChart(ctx context.Context, id string, save bool) (schema.Chart, error) {
	path := "/api/tables/" + url.PathEscape(id) + "/chart"
	if save {
		path += "?save=true"
	}
	var r apiResponse
	if err := c.do(ctx, http.MethodPost, path, nil, &r); err != nil {
		return schema.Chart{}, err
	}
	var chart schema.Chart
	err := json.Unmarshal(r.Chart, &chart)
	return chart, err
}

func (c *Client) tableCall(method, path string, body any) (schema.Table, error) {
	var r apiResponse
	if err := c.do(context.Background(), method, path, body, &r); err != nil {
		return schema.Table{}, err
	}
	var table schema.Table
	if err := json.Unmarshal(r.Table, &table); err != nil {
		return schema.Table{}, fmt.Errorf("decode table: %w", err)
	}
	return table, nil
}

func (c *Client) ClearAllData() error {
	return c.do(context.Background(), http.MethodDelete, "/api/data", nil, nil)
}

func (c *Client) Preferences() schema.Preferences {
	var prefs schema.Preferences
	if err := c.do(context.Background(), http.MethodGet, "/api/preferences", nil, &prefs); err != nil {
		log.Warn().Err(err).Msg("failed to read preferences")
		return schema.Preferences{}
	}
	return prefs
}

func (c *Client) SetTheme(theme string) (schema.Preferences, error) {
	var prefs schema.Preferences
	err := c.do(context.Background(), http.MethodPut, "/api/preferences", schema.Preferences{Theme: theme}, &prefs)
	return prefs, err
}

func (c *Client) ToggleTheme() (schema.Preferences, error) {
	var prefs schema.Preferences
	err := c.do(context.Background(), http.MethodPost, "/api/preferences/toggle", nil, &prefs)
	return prefs, err
}

func (c *Client) download(ctx context.Context, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	for i := 0; i < maxAttempts; i++ {
		var resp *http.Response
		if resp, err = c.send(ctx, http.MethodGet, path, nil); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			err = decodeResponse(resp, nil)
			resp.Body.Close()
			return nil, err
		}
		data, err = io.ReadAll(resp.Body)
		resp.Body.Close()
		return data, err
	}
	return nil, fmt.Errorf("failed after %d attempts. last error: %w", maxAttempts, err)
}

func (c *Client) upload(ctx context.Context, path, name string, content []byte, fields map[string]string, out any) error {
	body, contentType, err := multipartBody(name, content, fields)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

// endpoint appends path, which may carry a query string, to the base URL.
func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.base.String(), "/") + path
}

var errEmptyName = errors.New("file name not provided")

func multipartBody(name string, content []byte, fields map[string]string) (io.Reader, string, error) {
	if name == "" {
		return nil, "", errEmptyName
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filepath.Base(name))
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(content); err != nil {
		return nil, "", err
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
