package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/5sursyncIT/edusync-sub001/config"
	"github.com/5sursyncIT/edusync-sub001/internal/timetable"
)

// SessionHeader carries the ERP session in both directions.
const SessionHeader = "X-Openerp-Session-Id"

const (
	timetablesPath  = "/api/timetables"
	maxResponseSize = 8 << 20
)

// ERPClient implements Gateway against the ERP's JSON API. It never retries;
// every failure is reported to the caller as is.
type ERPClient struct {
	baseURL    string
	database   string
	httpClient *http.Client
	logger     *zap.Logger

	mu        sync.RWMutex
	sessionID string
	// synthetic timetables cannot be fetched by id, they are served from
	// list responses seen within syntheticTTL
	synthetic map[string]syntheticEntry
	now       func() time.Time
}

// syntheticTTL bounds how long a synthetic timetable outlives the last list
// response that carried it.
const syntheticTTL = 10 * time.Minute

type syntheticEntry struct {
	t    *timetable.Timetable
	seen time.Time
}

var _ Gateway = (*ERPClient)(nil)

// NewERPClient builds a client from explicit configuration. A nil
// httpClient gets one with the configured timeout.
func NewERPClient(cfg config.ERPConfig, httpClient *http.Client, logger *zap.Logger) *ERPClient {
	if httpClient == nil {
		httpClient = DefaultHTTPClient(cfg.Timeout)
	}
	return &ERPClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		database:   cfg.Database,
		httpClient: httpClient,
		logger:     logger,
		sessionID:  cfg.SessionID,
		synthetic:  make(map[string]syntheticEntry),
		now:        time.Now,
	}
}

// DefaultHTTPClient returns an http.Client with the given timeout.
func DefaultHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// SessionID returns the ERP session currently in use.
func (c *ERPClient) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// ── envelope ──

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

type listData struct {
	Timetables []timetable.Record `json:"timetables"`
	Pagination *Pagination        `json:"pagination"`
}

type createdData struct {
	ID timetable.TimetableID `json:"id"`
}

// ── Gateway ──

func (c *ERPClient) List(ctx context.Context, q ListQuery) (*Page, error) {
	q = q.Normalize()
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("limit", strconv.Itoa(q.PageSize))
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	for k, v := range q.Filters {
		if v != "" {
			params.Set(k, v)
		}
	}

	env, err := c.do(ctx, http.MethodGet, timetablesPath, params, nil)
	if err != nil {
		return nil, err
	}
	var data listData
	if err := decodeData(env, &data); err != nil {
		return nil, err
	}

	page := &Page{Timetables: make([]*timetable.Timetable, 0, len(data.Timetables))}
	for _, rec := range data.Timetables {
		page.Timetables = append(page.Timetables, rec.Timetable())
	}
	if data.Pagination != nil {
		page.Pagination = *data.Pagination
	} else {
		page.Pagination = NewPagination(q.Page, q.PageSize, int64(len(page.Timetables)))
	}
	c.rememberSynthetic(page.Timetables)
	return page, nil
}

func (c *ERPClient) Get(ctx context.Context, id timetable.TimetableID) (*timetable.Timetable, error) {
	if id.IsSynthetic() {
		c.mu.RLock()
		e, ok := c.synthetic[id.String()]
		c.mu.RUnlock()
		if !ok || c.now().Sub(e.seen) > syntheticTTL {
			return nil, fmt.Errorf("get %s: %w", id, ErrNotFound)
		}
		return e.t.Clone(), nil
	}
	n, ok := id.Persisted()
	if !ok {
		return nil, fmt.Errorf("get: %w", timetable.ErrInvalidID)
	}

	env, err := c.do(ctx, http.MethodGet, timetablePath(n), nil, nil)
	if err != nil {
		return nil, err
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("get %d: %w", n, ErrNotFound)
	}
	t, err := timetable.FromBackend(env.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return t, nil
}

// Create posts the payload, then reads the timetable back so the caller
// gets the backend's view including slot ids.
func (c *ERPClient) Create(ctx context.Context, t *timetable.Timetable) (*timetable.Timetable, error) {
	env, err := c.do(ctx, http.MethodPost, timetablesPath, nil, t.ToBackendPayload())
	if err != nil {
		return nil, err
	}
	var created createdData
	if err := decodeData(env, &created); err != nil {
		return nil, err
	}
	if created.ID.IsZero() {
		return nil, fmt.Errorf("%w: create response carries no id", ErrTransport)
	}
	c.logger.Info("timetable created on ERP", zap.String("id", created.ID.String()))
	return c.Get(ctx, created.ID)
}

func (c *ERPClient) Update(ctx context.Context, id timetable.TimetableID, t *timetable.Timetable) (*timetable.Timetable, error) {
	n, err := persistedKey("update", id)
	if err != nil {
		return nil, err
	}
	if _, err := c.do(ctx, http.MethodPut, timetablePath(n), nil, t.ToBackendPayload()); err != nil {
		return nil, err
	}
	return c.Get(ctx, id)
}

func (c *ERPClient) Delete(ctx context.Context, id timetable.TimetableID) error {
	n, err := persistedKey("delete", id)
	if err != nil {
		return err
	}
	_, err = c.do(ctx, http.MethodDelete, timetablePath(n), nil, nil)
	return err
}

// ── transport ──

func timetablePath(id int64) string {
	return timetablesPath + "/" + strconv.FormatInt(id, 10)
}

func (c *ERPClient) do(ctx context.Context, method, path string, params url.Values, body any) (*envelope, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: erp base url not configured", ErrTransport)
	}
	if params == nil {
		params = url.Values{}
	}
	if c.database != "" {
		params.Set("db", c.database)
	}
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sid := c.SessionID(); sid != "" {
		req.Header.Set(SessionHeader, sid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("erp request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrTransport, ctxErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if sid := resp.Header.Get(SessionHeader); sid != "" {
		c.mu.Lock()
		c.sessionID = sid
		c.mu.Unlock()
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, validationFailed(&env)
	case resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: %s %s returned status %d", ErrTransport, method, path, resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrTransport, decodeErr)
	}
	if env.Status == "error" {
		if isNotFoundMessage(env.Message) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
		}
		return nil, validationFailed(&env)
	}
	return &env, nil
}

func decodeData(env *envelope, dst any) error {
	if len(env.Data) == 0 {
		return fmt.Errorf("%w: response carries no data", ErrTransport)
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		return fmt.Errorf("%w: decode data: %v", ErrTransport, err)
	}
	return nil
}

func validationFailed(env *envelope) error {
	msgs := append([]string(nil), env.Errors...)
	if len(msgs) == 0 && env.Message != "" {
		msgs = []string{env.Message}
	}
	return &ValidationFailedError{Errors: msgs}
}

// isNotFoundMessage recognises the ERP's not-found replies, which arrive
// as status "error" with HTTP 200.
func isNotFoundMessage(msg string) bool {
	m := strings.ToLower(msg)
	return strings.Contains(m, "not found") || strings.Contains(m, "non trouvé") || strings.Contains(m, "introuvable")
}

// rememberSynthetic refreshes the synthetic entries of a list response and
// evicts those no list has carried within syntheticTTL.
func (c *ERPClient) rememberSynthetic(list []*timetable.Timetable) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for _, t := range list {
		if t.ID.IsSynthetic() {
			c.synthetic[t.ID.String()] = syntheticEntry{t: t.Clone(), seen: now}
		}
	}
	for k, e := range c.synthetic {
		if now.Sub(e.seen) > syntheticTTL {
			delete(c.synthetic, k)
		}
	}
}
