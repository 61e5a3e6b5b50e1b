package dinox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public DINO-X API root.
	DefaultBaseURL = "https://api.deepdataspace.com/v2/"

	// DefaultTimeout bounds each individual HTTP exchange with the backend.
	DefaultTimeout = 60 * time.Second

	// MaxPollAttempts is the number of task_status requests made before
	// giving up on a task.
	MaxPollAttempts = 60

	// PollInterval is the pause before every poll after the first.
	PollInterval = 1000 * time.Millisecond

	// ClientSourceHeader identifies this tool family to the backend.
	ClientSourceHeader = "X-Client-Source"
	ClientSource       = "dinox-mcp"
)

// Sleeper pauses the calling goroutine for d, returning early with the
// context error if ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ContextSleep is the production Sleeper.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config configures a Client.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Sleep      Sleeper
	Logger     *slog.Logger
}

// Client talks to the asynchronous DINO-X task API.
//
// A Client holds only immutable configuration and is safe to share between
// goroutines; every Submit runs its own poll loop.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sleep      Sleeper
	logger     *slog.Logger
}

// NewClient creates a Client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	sleep := cfg.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		sleep:      sleep,
		logger:     logger,
	}
}

// Submit creates a task on endpoint and waits for its result.
//
// The task is polled up to MaxPollAttempts times, PollInterval apart. The raw
// result JSON of a successful task is returned as soon as it appears.
//
// # Errors
//
//   - *TaskSubmissionError: backend answered the create call with code != 0
//   - *InvalidParametersError: HTTP 400 on any request
//   - *APIError: any other non-2xx HTTP status
//   - *TaskFailedError: the task reached the failed state
//   - ErrTaskPollingTimeout: unknown status or retries exhausted
//   - transport errors are wrapped unchanged
func (c *Client) Submit(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	var created createTaskResponse
	if err := c.do(ctx, http.MethodPost, "task/"+endpoint, payload, &created); err != nil {
		return nil, err
	}
	if created.Code != 0 {
		return nil, &TaskSubmissionError{Code: created.Code, Message: created.Msg}
	}

	taskUUID := created.Data.TaskUUID
	c.logger.Debug("task created", "endpoint", endpoint, "task_uuid", taskUUID)

	return c.poll(ctx, taskUUID)
}

func (c *Client) poll(ctx context.Context, taskUUID string) (json.RawMessage, error) {
	for attempt := 0; attempt < MaxPollAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, PollInterval); err != nil {
				return nil, err
			}
		}

		var status taskStatusResponse
		if err := c.do(ctx, http.MethodGet, "task_status/"+taskUUID, nil, &status); err != nil {
			return nil, err
		}

		task := status.Data
		c.logger.Debug("task polled", "task_uuid", taskUUID, "attempt", attempt+1, "status", task.Status)

		switch {
		case task.Status == StatusFailed:
			return nil, &TaskFailedError{TaskUUID: taskUUID, Message: task.Error}
		case task.Status == StatusSuccess && task.hasResult():
			return task.Result, nil
		case task.Status == StatusWaiting || task.Status == StatusRunning:
			continue
		default:
			c.logger.Warn("unexpected task status", "task_uuid", taskUUID, "status", task.Status)
			return nil, ErrTaskPollingTimeout
		}
	}

	c.logger.Warn("task did not finish in time", "task_uuid", taskUUID, "attempts", MaxPollAttempts)
	return nil, ErrTaskPollingTimeout
}

// do performs one JSON exchange and classifies HTTP failures.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Token", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(ClientSourceHeader, ClientSource)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("API request error", "method", method, "path", path, "error", err)
		return fmt.Errorf("dinox request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classifyStatus(resp.StatusCode, raw)
		c.logger.Error("API request error", "method", method, "path", path, "error", apiErr)
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyStatus(statusCode int, body []byte) error {
	if statusCode == http.StatusBadRequest {
		var br badRequestResponse
		_ = json.Unmarshal(body, &br)
		msgs := make([]string, 0, len(br.Errors))
		for _, e := range br.Errors {
			var s string
			if json.Unmarshal(e, &s) == nil {
				msgs = append(msgs, s)
				continue
			}
			msgs = append(msgs, string(e))
		}
		return &InvalidParametersError{Errors: msgs}
	}
	return &APIError{StatusCode: statusCode, Body: strings.TrimSpace(string(body))}
}
