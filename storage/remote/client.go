// Package remote implements storage.Store on top of a hosted tabular-data API.
// Every table is reached through the same five record operations (fetch, get,
// create, update, delete) and every response is wrapped in an envelope:
//
//	{"success": true, "message": "", "data": ..., "results": [{"success": true, "data": ...}]}
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"stylar-exchange/storage"
)

const (
	headerProjectID = "X-Project-Id"
	headerPublicKey = "X-Public-Key"

	maxResponseBytes = 8 << 20
)

// Config holds client configuration.
type Config struct {
	URL       string
	ProjectID string
	PublicKey string

	// RateLimit caps outgoing requests per second. Zero disables the limiter.
	RateLimit float64
	Burst     int

	// MaxTries bounds attempts per request, including the first one.
	MaxTries     uint
	RetryInitial time.Duration
	RetryMax     time.Duration

	HTTPClient *http.Client
	Logger     *logrus.Entry
}

// Client talks to the table API.
type Client struct {
	baseURL    string
	projectID  string
	publicKey  string
	httpClient *http.Client
	limiter    *rate.Limiter

	maxTries     uint
	retryInitial time.Duration
	retryMax     time.Duration

	log *logrus.Entry
}

// StatusError is a non-2xx HTTP answer.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: http %d: %s", e.Code, e.Body)
}

// APIError is an envelope with success=false, or a failed per-record result.
type APIError struct {
	Message string
	Failed  int
}

func (e *APIError) Error() string {
	if e.Failed > 0 {
		return fmt.Sprintf("remote: %d record(s) failed: %s", e.Failed, e.Message)
	}
	return "remote: " + e.Message
}

// New creates a new table API client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("remote: URL is required")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("remote: project id is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(cfg.URL, "/"),
		projectID:    cfg.ProjectID,
		publicKey:    cfg.PublicKey,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(limit, burst),
		maxTries:     cfg.MaxTries,
		retryInitial: cfg.RetryInitial,
		retryMax:     cfg.RetryMax,
		log:          cfg.Logger,
	}
	if c.maxTries == 0 {
		c.maxTries = 4
	}
	if c.retryInitial <= 0 {
		c.retryInitial = 200 * time.Millisecond
	}
	if c.retryMax <= 0 {
		c.retryMax = 5 * time.Second
	}
	if c.log == nil {
		c.log = logrus.NewEntry(logrus.StandardLogger())
	}
	c.log = c.log.WithField("component", "remote")
	return c, nil
}

// Condition is a where clause understood by fetch.
type Condition struct {
	FieldName string `json:"FieldName"`
	Operator  string `json:"Operator"`
	Values    []any  `json:"Values"`
}

// EqualTo builds the only operator the stores need.
func EqualTo(field string, value any) Condition {
	return Condition{FieldName: field, Operator: "EqualTo", Values: []any{value}}
}

type fieldName struct {
	Name string `json:"Name"`
}

type fieldSpec struct {
	Field          fieldName  `json:"field"`
	ReferenceField *fieldSpec `json:"referenceField,omitempty"`
}

// Query selects columns (references expand to their Name) and filters rows.
type Query struct {
	Fields []fieldSpec  `json:"fields"`
	Where  []Condition `json:"where,omitempty"`
}

type recordsBody struct {
	Records []any `json:"records"`
}

type deleteBody struct {
	RecordIds []int64 `json:"RecordIds"`
}

// Fetch lists records of table matching q.
func (c *Client) Fetch(ctx context.Context, table string, q Query) ([]json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodPost, tablePath(table, "fetch"), q)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	data := env.Get("data")
	if !data.IsArray() {
		return []json.RawMessage{}, nil
	}
	items := data.Array()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		out = append(out, json.RawMessage(item.Raw))
	}
	return out, nil
}

// Get fetches a single record. A missing record, or an unsuccessful lookup,
// yields storage.ErrNotFound.
func (c *Client) Get(ctx context.Context, table, id string) (json.RawMessage, error) {
	raw, err := c.do(ctx, http.MethodGet, tablePath(table, "records", id), nil)
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope(raw)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return nil, fmt.Errorf("%s %s: %s: %w", table, id, apiErr.Message, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	data := env.Get("data")
	if !data.IsObject() {
		return nil, fmt.Errorf("%s %s: %w", table, id, storage.ErrNotFound)
	}
	return json.RawMessage(data.Raw), nil
}

// Create inserts one record and returns the stored representation.
func (c *Client) Create(ctx context.Context, table string, record any) (json.RawMessage, error) {
	return c.writeOne(ctx, http.MethodPost, table, record)
}

// Update patches one record (identified by its Id field).
func (c *Client) Update(ctx context.Context, table string, record any) (json.RawMessage, error) {
	return c.writeOne(ctx, http.MethodPatch, table, record)
}

// Delete removes a record by id.
func (c *Client) Delete(ctx context.Context, table, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return fmt.Errorf("%s %s: %w", table, id, storage.ErrNotFound)
	}
	raw, err := c.do(ctx, http.MethodDelete, tablePath(table, "records"), deleteBody{RecordIds: []int64{n}})
	if err != nil {
		return err
	}
	_, err = parseEnvelope(raw)
	return err
}

func (c *Client) writeOne(ctx context.Context, method, table string, record any) (json.RawMessage, error) {
	raw, err := c.do(ctx, method, tablePath(table, "records"), recordsBody{Records: []any{record}})
	if err != nil {
		return nil, err
	}
	env, err := parseEnvelope(raw)
	if err != nil {
		return nil, err
	}
	data := env.Get("results.0.data")
	if !data.IsObject() {
		return nil, fmt.Errorf("remote: %s %s returned no record", method, table)
	}
	return json.RawMessage(data.Raw), nil
}

// parseEnvelope validates the response wrapper, including per-record results.
func parseEnvelope(raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("remote: invalid JSON response")
	}
	env := gjson.ParseBytes(raw)
	if !env.Get("success").Bool() {
		msg := env.Get("message").String()
		if msg == "" {
			msg = "request was not successful"
		}
		return env, &APIError{Message: msg}
	}

	var failed []string
	env.Get("results").ForEach(func(_, r gjson.Result) bool {
		if !r.Get("success").Bool() {
			failed = append(failed, r.Get("message").String())
		}
		return true
	})
	if len(failed) > 0 {
		return env, &APIError{Message: strings.Join(failed, "; "), Failed: len(failed)}
	}
	return env, nil
}

func tablePath(table string, parts ...string) string {
	segs := append([]string{"tables", url.PathEscape(table)}, parts...)
	for i := 2; i < len(segs); i++ {
		segs[i] = url.PathEscape(segs[i])
	}
	return "/" + strings.Join(segs, "/")
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set(headerProjectID, c.projectID)
	if c.publicKey != "" {
		req.Header.Set(headerPublicKey, c.publicKey)
	}
	req.Header.Set("Accept", "application/json")
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryInitial
	b.MaxInterval = c.retryMax
	return b
}

// do sends one request with retries. 5xx, 429 and transport errors are retried;
// any other 4xx is permanent.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("remote: marshal body: %w", err)
		}
	}

	attempt := 0
	op := func() ([]byte, error) {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("remote: create request: %w", err))
		}
		c.setHeaders(req)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			c.log.WithFields(logrus.Fields{"method": method, "path": path, "attempt": attempt}).
				Warnf("⚠️ request failed: %v", err)
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("remote: read body: %w", err)
		}

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			statusErr := &StatusError{Code: resp.StatusCode, Body: string(raw)}
			if secs, convErr := strconv.Atoi(resp.Header.Get("Retry-After")); convErr == nil && secs > 0 {
				return nil, backoff.RetryAfter(secs)
			}
			return nil, statusErr
		case resp.StatusCode >= 500:
			c.log.WithFields(logrus.Fields{"method": method, "path": path, "status": resp.StatusCode, "attempt": attempt}).
				Warn("⚠️ server error, retrying")
			return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
		case resp.StatusCode == http.StatusNotFound:
			return nil, backoff.Permanent(fmt.Errorf("remote: %s %s: %w", method, path, storage.ErrNotFound))
		case resp.StatusCode >= 400:
			return nil, backoff.Permanent(&StatusError{Code: resp.StatusCode, Body: string(raw)})
		}
		return raw, nil
	}

	return backoff.Retry(ctx, op,
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.maxTries),
	)
}
