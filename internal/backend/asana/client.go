// Package asana implements the service.Service interface using the Asana REST API.
package asana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"taskseed/internal/config"
	"taskseed/internal/dummy"
	"taskseed/internal/logging"
	"taskseed/internal/service"
)

const (
	// APITimeout is the timeout for a single API call.
	APITimeout = 30 * time.Second

	// MaxBatchActions is the most actions Asana accepts in one batch request.
	MaxBatchActions = 10

	// maxErrorBody bounds how much of an error response is kept.
	maxErrorBody = 4096
)

// Client implements service.Service against Asana.
type Client struct {
	http      *http.Client
	baseURL   string
	projectID string
	log       *slog.Logger
}

// New creates a client that authenticates with cfg.AccessToken.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.AccessToken,
		TokenType:   "Bearer",
	})
	return NewWithHTTPClient(oauth2.NewClient(ctx, ts), cfg.APIURL, cfg.ProjectID, log), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// The HTTP client is responsible for authentication.
func NewWithHTTPClient(httpClient *http.Client, baseURL, projectID string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = config.DefaultAPIURL
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Client{
		http:      httpClient,
		baseURL:   strings.TrimRight(baseURL, "/"),
		projectID: projectID,
		log:       log,
	}
}

// taskData is the task body shared by single and batch creation.
type taskData struct {
	Name      string   `json:"name"`
	Projects  []string `json:"projects"`
	Notes     string   `json:"notes"`
	DueOn     string   `json:"due_on"`
	Completed bool     `json:"completed"`
}

type envelope struct {
	Data any `json:"data"`
}

type batchAction struct {
	Method       string   `json:"method"`
	RelativePath string   `json:"relative_path"`
	Data         taskData `json:"data"`
}

type batchRequest struct {
	Actions []batchAction `json:"actions"`
}

type batchResponse struct {
	Data []struct {
		StatusCode int             `json:"status_code"`
		Body       json.RawMessage `json:"body"`
	} `json:"data"`
}

type taskCountResponse struct {
	Data struct {
		NumTasks int `json:"num_tasks"`
	} `json:"data"`
}

func (c *Client) toTaskData(rec dummy.Record) taskData {
	return taskData{
		Name:      rec.Name,
		Projects:  []string{c.projectID},
		Notes:     rec.Notes,
		DueOn:     rec.ISODate(),
		Completed: rec.Completed,
	}
}

// CreateTask creates one task in the configured project.
func (c *Client) CreateTask(ctx context.Context, rec dummy.Record) error {
	_, err := c.do(ctx, http.MethodPost, "/tasks", envelope{Data: c.toTaskData(rec)}, http.StatusCreated)
	return err
}

// CreateTasks creates up to MaxBatchActions tasks with one batch request.
func (c *Client) CreateTasks(ctx context.Context, recs []dummy.Record) ([]service.ActionResult, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	if len(recs) > MaxBatchActions {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d actions", len(recs), MaxBatchActions)
	}

	req := batchRequest{Actions: make([]batchAction, 0, len(recs))}
	for _, rec := range recs {
		req.Actions = append(req.Actions, batchAction{
			Method:       "post",
			RelativePath: "/tasks",
			Data:         c.toTaskData(rec),
		})
	}

	body, err := c.do(ctx, http.MethodPost, "/batch", envelope{Data: req}, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	var resp batchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		// Accepted but unreadable: report success without per-action detail.
		c.log.Warn("could not decode batch response", "error", err)
		return nil, nil
	}
	results := make([]service.ActionResult, 0, len(resp.Data))
	for _, r := range resp.Data {
		results = append(results, service.ActionResult{
			StatusCode: r.StatusCode,
			Body:       string(r.Body),
		})
	}
	return results, nil
}

// TaskCount returns the number of tasks in the configured project.
func (c *Client) TaskCount(ctx context.Context) (int, error) {
	path := "/projects/" + url.PathEscape(c.projectID) + "/task_counts?opt_fields=num_tasks"
	body, err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK)
	if err != nil {
		return 0, err
	}
	var resp taskCountResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("invalid task count response: %w", err)
	}
	return resp.Data.NumTasks, nil
}

// do sends one request and classifies the response. It returns the body when
// the status is one of ok.
func (c *Client) do(ctx context.Context, method, path string, payload any, ok ...int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, &service.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &service.TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}
	c.log.Debug("request done", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))

	for _, code := range ok {
		if resp.StatusCode == code {
			return body, nil
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &service.RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	}

	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	return nil, &service.StatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// maxRetryAfter caps the server-advised wait.
const maxRetryAfter = time.Hour

// parseRetryAfter reads a Retry-After value in whole seconds.
// Missing, malformed or negative values fall back to service.DefaultRetryAfter.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || secs < 0 {
		return service.DefaultRetryAfter
	}
	if secs > int64(maxRetryAfter/time.Second) {
		return maxRetryAfter
	}
	return time.Duration(secs) * time.Second
}
