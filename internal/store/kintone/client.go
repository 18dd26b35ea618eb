// Package kintone keeps candidates and appointments in two kintone apps
// through the REST API.
package kintone

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"interviewdesk/internal/store"
)

const tokenHeader = "X-Cybozu-API-Token"

// App is one kintone app and the API token scoped to it.
type App struct {
	ID    string
	Token string
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(k *Client) {
		if c != nil {
			k.http = c
		}
	}
}

// WithBaseURL replaces https://<domain>/k/v1, mostly for tests.
func WithBaseURL(u string) Option {
	return func(k *Client) {
		k.baseURL = strings.TrimRight(u, "/")
	}
}

func NewClient(domain string, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL: fmt.Sprintf("https://%s/k/v1", domain),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log.With(slog.String("component", "kintone")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx answer from kintone.
type APIError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("kintone: status %d", e.Status)
	}
	return fmt.Sprintf("kintone: status %d: %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Is(target error) bool {
	return target == store.ErrNotFound && e.Status == http.StatusNotFound
}

type field struct {
	Type  string          `json:"type,omitempty"`
	Value json.RawMessage `json:"value"`
}

type record map[string]field

func (r record) str(code string) string {
	f, ok := r[code]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(f.Value, &s); err != nil {
		return ""
	}
	return s
}

// writeRecord is the body shape kintone accepts on create and update.
type writeRecord map[string]writeField

type writeField struct {
	Value any `json:"value"`
}

func values(kv map[string]string) writeRecord {
	out := make(writeRecord, len(kv))
	for k, v := range kv {
		out[k] = writeField{Value: v}
	}
	return out
}

// search runs a kintone query against app.
func (c *Client) search(ctx context.Context, app App, query string) ([]record, error) {
	q := url.Values{}
	q.Set("app", app.ID)
	q.Set("query", query)

	var out struct {
		Records []record `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, "/records.json?"+q.Encode(), app, nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

func (c *Client) get(ctx context.Context, app App, id string) (record, error) {
	q := url.Values{}
	q.Set("app", app.ID)
	q.Set("id", id)

	var out struct {
		Record record `json:"record"`
	}
	if err := c.do(ctx, http.MethodGet, "/record.json?"+q.Encode(), app, nil, &out); err != nil {
		return nil, err
	}
	return out.Record, nil
}

func (c *Client) create(ctx context.Context, app App, rec writeRecord) (string, error) {
	body := map[string]any{"app": app.ID, "record": rec}
	var out struct {
		ID       string `json:"id"`
		Revision string `json:"revision"`
	}
	if err := c.do(ctx, http.MethodPost, "/record.json", app, body, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

func (c *Client) update(ctx context.Context, app App, id string, rec writeRecord) error {
	body := map[string]any{"app": app.ID, "id": id, "record": rec}
	return c.do(ctx, http.MethodPut, "/record.json", app, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, app App, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode kintone request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set(tokenHeader, app.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("kintone request failed", slog.Any("err", err), slog.String("method", method), slog.String("app", app.ID))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		c.log.Warn("kintone returned an error",
			slog.Int("status", resp.StatusCode),
			slog.String("code", apiErr.Code),
			slog.String("method", method),
			slog.String("app", app.ID),
		)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode kintone response: %w", err)
	}
	return nil
}

// quote renders s as a kintone query string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func timestamps(r record) (created, updated time.Time) {
	for _, f := range r {
		var s string
		if json.Unmarshal(f.Value, &s) != nil {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			continue
		}
		switch f.Type {
		case "CREATED_TIME":
			created = t
		case "UPDATED_TIME":
			updated = t
		}
	}
	return created, updated
}

const latestQuery = "order by $id desc limit 1"

func (c *Client) latestRecordNumber(ctx context.Context, app App) (string, bool, error) {
	recs, err := c.search(ctx, app, latestQuery)
	if err != nil {
		return "", false, err
	}
	if len(recs) == 0 {
		return "", false, nil
	}
	return recs[0].str("$id"), true, nil
}
