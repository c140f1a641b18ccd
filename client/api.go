package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasktracker/models"
)

// ErrTransport wraps every failure to reach the task service.
var ErrTransport = errors.New("transport failure")

// APIError is a non-2xx response from the task service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task service returned %d", e.Status)
	}
	return fmt.Sprintf("task service returned %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the task service.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// API is the task service as seen by the controller.
type API interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (models.Task, error)
	ToggleTask(ctx context.Context, id string) (models.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// APIClient talks to the task service over HTTP.
type APIClient struct {
	baseURL string
	token   string
	client  *http.Client
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewAPIClient creates a client for the service at baseURL. token is sent as
// a bearer token when non-empty.
func NewAPIClient(baseURL, token string, timeout time.Duration) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *APIClient) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *APIClient) CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", input, &task)
	return task, err
}

func (c *APIClient) UpdateTask(ctx context.Context, id string, update models.TaskUpdate) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id), update, &task)
	return task, err
}

func (c *APIClient) ToggleTask(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(id)+"/toggle", nil, &task)
	return task, err
}

func (c *APIClient) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(id), nil, nil)
}

func (c *APIClient) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr errorResponse
		if json.Unmarshal(respBody, &apiErr) != nil || apiErr.Error == "" {
			apiErr.Error = strings.TrimSpace(string(respBody))
		}
		return &APIError{Status: resp.StatusCode, Message: apiErr.Error}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
	}
	return nil
}
