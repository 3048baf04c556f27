// Package client is the typed HTTP consumer of the task service.
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
	"strings"
	"time"

	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/infrastructure/config"
	"github.com/taskboard/taskboard/internal/interfaces/http/dto"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// maxResponseSize caps how much of a response body is read (10MB)
const maxResponseSize = 10 * 1024 * 1024

// DefaultTimeout applies when no timeout is configured
const DefaultTimeout = 10 * time.Second

// Client talks JSON to the task service. It never retries and never returns
// partial data on failure.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the client logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// New creates a client for the service at baseURL. Requests carry trace
// context through an otelhttp transport.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   DefaultTimeout,
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a client from the [client] configuration section
func NewFromConfig(cfg config.ClientConfig, logger *zap.Logger) (*Client, error) {
	return New(cfg.BaseURL, WithTimeout(cfg.Timeout), WithLogger(logger))
}

// BaseURL returns the service root
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// List returns every task, newest first
func (c *Client) List(ctx context.Context) ([]task.Task, error) {
	var resp []apptask.TaskResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &resp); err != nil {
		return nil, err
	}
	tasks := make([]task.Task, len(resp))
	for i := range resp {
		tasks[i] = resp[i].ToDomain()
	}
	return tasks, nil
}

// Get returns a single task
func (c *Client) Get(ctx context.Context, id int64) (*task.Task, error) {
	return c.taskCall(ctx, http.MethodGet, taskPath(id), nil)
}

// Create stores a new task and returns it with its assigned id
func (c *Client) Create(ctx context.Context, req apptask.CreateTaskRequest) (*task.Task, error) {
	return c.taskCall(ctx, http.MethodPost, "/tasks", req)
}

// Update sends PUT /tasks/{id} with a partial body. Only members set on patch
// are encoded; shared.Null members are sent as explicit nulls.
func (c *Client) Update(ctx context.Context, id int64, patch apptask.UpdateTaskRequest) (*task.Task, error) {
	return c.taskCall(ctx, http.MethodPut, taskPath(id), patch)
}

// Delete removes a task
func (c *Client) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

// Summary fetches the server side board metrics
func (c *Client) Summary(ctx context.Context) (*apptask.SummaryResponse, error) {
	var resp apptask.SummaryResponse
	if err := c.do(ctx, http.MethodGet, "/tasks/summary", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) taskCall(ctx context.Context, method, path string, body any) (*task.Task, error) {
	var resp apptask.TaskResponse
	if err := c.do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	t := resp.ToDomain()
	return &t, nil
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Task service unreachable", zap.String("op", op), zap.Error(err))
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}

	c.logger.Debug("Task service call",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, data)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeAPIError(status int, data []byte) error {
	apiErr := &APIError{StatusCode: status}

	var envelope dto.Response
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.RequestID = envelope.Error.RequestID
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}
