package dinox

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingAPIKey is returned by every call on a Client built without a key.
	ErrMissingAPIKey = errors.New("API key is missing")

	// ErrTaskPollingTimeout is returned when a task does not reach a terminal
	// state within MaxPollAttempts polls, or reports an unknown status.
	ErrTaskPollingTimeout = errors.New("task polling timeout")
)

// TaskSubmissionError reports a task creation request that the backend
// answered with a non-zero application code.
type TaskSubmissionError struct {
	Code    int
	Message string
}

func (e *TaskSubmissionError) Error() string {
	return fmt.Sprintf("failed to create task: %s", e.Message)
}

// InvalidParametersError reports an HTTP 400 from the backend.
type InvalidParametersError struct {
	Errors []string
}

func (e *InvalidParametersError) Error() string {
	return fmt.Sprintf("invalid parameters: %s", strings.Join(e.Errors, ", "))
}

// APIError reports any other non-2xx HTTP status from the backend.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Body)
}

// TaskFailedError carries the error text of a task that ended in the
// failed state.
type TaskFailedError struct {
	TaskUUID string
	Message  string
}

func (e *TaskFailedError) Error() string {
	if e.Message == "" {
		return "task failed"
	}
	return e.Message
}

// CaptionMismatchError is returned when the caption stage answers with a
// different number of regions than were submitted.
type CaptionMismatchError struct {
	Objects  int
	Captions int
}

func (e *CaptionMismatchError) Error() string {
	return fmt.Sprintf("caption count mismatch: %d objects detected, %d captions returned", e.Objects, e.Captions)
}
