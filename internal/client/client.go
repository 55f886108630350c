// Package client はTodo APIのHTTPクライアントです。
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"fullstack-todolist/backend/internal/config"
	"fullstack-todolist/backend/internal/models"
)

// HTTPError は2xx以外のレスポンスを表します。
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// Client はTodo APIのクライアントです。
type Client struct {
	endpoints  config.Endpoints
	token      string
	httpClient *http.Client
}

// Option はClientの設定を変更します。
type Option func(*Client)

// WithHTTPClient は使用する http.Client を差し替えます。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken はBearerトークンを設定します。
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New は baseURL に対する新しいClientを作成します。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		endpoints:  config.NewEndpoints(baseURL),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig は設定からClientを作成します。
func NewFromConfig(cfg *config.Config) *Client {
	return New(cfg.APIBaseURL(),
		WithToken(cfg.Client.Token),
		WithHTTPClient(&http.Client{Timeout: cfg.Client.Timeout}),
	)
}

// Endpoints はクライアントが使うエンドポイントを返します。
func (c *Client) Endpoints() config.Endpoints {
	return c.endpoints
}

// DeleteTodo はTodoを削除します。2xx以外は *HTTPError を返します。
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.todoURL(id), nil, nil)
}

// ListTodos は(page, limit)のウィンドウでTodoを取得します。
func (c *Client) ListTodos(ctx context.Context, page, limit int, search string) (*models.TodoPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if search != "" {
		q.Set("q", search)
	}
	var out models.TodoPage
	if err := c.do(ctx, http.MethodGet, c.endpoints.GetTodos+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTodos はTodoをすべて取得します。
func (c *Client) GetTodos(ctx context.Context, search string) ([]*models.Todo, error) {
	target := c.endpoints.Todos
	if search != "" {
		target += "?" + url.Values{"q": {search}}.Encode()
	}
	var out []*models.Todo
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTodo は指定IDのTodoを取得します。
func (c *Client) GetTodo(ctx context.Context, id string) (*models.Todo, error) {
	var out models.Todo
	if err := c.do(ctx, http.MethodGet, c.todoURL(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTodo はTodoを作成します。
func (c *Client) CreateTodo(ctx context.Context, req models.CreateTodoRequest) (*models.Todo, error) {
	var out models.Todo
	if err := c.do(ctx, http.MethodPost, c.endpoints.Todos, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTodo はTodoを部分更新します。
func (c *Client) UpdateTodo(ctx context.Context, id string, req models.UpdateTodoRequest) (*models.Todo, error) {
	var out models.Todo
	if err := c.do(ctx, http.MethodPut, c.todoURL(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health はヘルスチェックを呼び出します。
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.endpoints.Health, nil, nil)
}

func (c *Client) todoURL(id string) string {
	return c.endpoints.Todos + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
