package queue

import (
	"fmt"
	"time"

	"github.com/zero-day-ai/strum/resolve"
)

// WorkItem is a single parse request submitted to a definition's queue.
// It carries everything a worker needs to parse the text and report back.
type WorkItem struct {
	// JobID is a UUID that correlates all work items in a batch
	JobID string `json:"job_id"`

	// Index is the position of this item in the batch (0-based)
	Index int `json:"index"`

	// Total is the total number of items in the batch
	Total int `json:"total"`

	// Definition names the registered parser definition to apply
	Definition string `json:"definition"`

	// Text is the raw input to parse
	Text string `json:"text"`

	// Strict controls error handling: when true the first failure aborts
	// the item, when false workers collect partial results
	Strict bool `json:"strict"`

	// TraceID is the distributed tracing trace ID for observability
	TraceID string `json:"trace_id,omitempty"`

	// SubmittedAt is the Unix timestamp in milliseconds when work was submitted
	SubmittedAt int64 `json:"submitted_at"`
}

// Result is the outcome of parsing a WorkItem. It is published to a
// job-specific pub/sub channel for the submitter to collect.
type Result struct {
	// JobID correlates this result with the original work item
	JobID string `json:"job_id"`

	// Index is the position of this result in the batch
	Index int `json:"index"`

	// Data holds the structured fields recovered from the input.
	// May be partial when Errors is non-empty and Strict was false.
	Data map[string]any `json:"data,omitempty"`

	// Errors lists the per-field failures collected during parsing
	Errors []resolve.FieldError `json:"errors,omitempty"`

	// Error is set when the item could not be processed at all, for
	// example when the named definition does not exist
	Error string `json:"error,omitempty"`

	// WorkerID is the unique identifier of the worker that processed this item
	WorkerID string `json:"worker_id"`

	// StartedAt is the Unix timestamp in milliseconds when parsing started
	StartedAt int64 `json:"started_at"`

	// CompletedAt is the Unix timestamp in milliseconds when parsing completed
	CompletedAt int64 `json:"completed_at"`
}

// IsValid checks if the WorkItem has all required fields populated correctly.
// Returns an error describing any validation failures.
func (w *WorkItem) IsValid() error {
	if w.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if w.Index < 0 {
		return fmt.Errorf("index must be non-negative, got %d", w.Index)
	}
	if w.Total <= 0 {
		return fmt.Errorf("total must be positive, got %d", w.Total)
	}
	if w.Index >= w.Total {
		return fmt.Errorf("index %d is out of bounds for total %d", w.Index, w.Total)
	}
	if w.Definition == "" {
		return fmt.Errorf("definition name is required")
	}
	if w.Text == "" {
		return fmt.Errorf("text is required")
	}
	if w.SubmittedAt <= 0 {
		return fmt.Errorf("submitted_at must be positive, got %d", w.SubmittedAt)
	}
	return nil
}

// Age returns the duration since this work item was submitted.
// Useful for detecting stale work items and computing queue wait time.
func (w *WorkItem) Age() time.Duration {
	if w.SubmittedAt <= 0 {
		return 0
	}
	now := time.Now().UnixMilli()
	return time.Duration(now-w.SubmittedAt) * time.Millisecond
}

// OK reports whether the item parsed cleanly, with no item-level error and
// no per-field failures.
func (r *Result) OK() bool {
	return r.Error == "" && len(r.Errors) == 0
}

// Duration returns the wall-clock time the worker spent parsing this item.
func (r *Result) Duration() time.Duration {
	if r.StartedAt <= 0 || r.CompletedAt <= 0 {
		return 0
	}
	return time.Duration(r.CompletedAt-r.StartedAt) * time.Millisecond
}

// IsValid checks if the Result has all required fields populated correctly.
func (r *Result) IsValid() error {
	if r.JobID == "" {
		return fmt.Errorf("job_id is required")
	}
	if r.Index < 0 {
		return fmt.Errorf("index must be non-negative, got %d", r.Index)
	}
	if r.WorkerID == "" {
		return fmt.Errorf("worker_id is required")
	}
	if r.StartedAt <= 0 {
		return fmt.Errorf("started_at must be positive, got %d", r.StartedAt)
	}
	if r.CompletedAt <= 0 {
		return fmt.Errorf("completed_at must be positive, got %d", r.CompletedAt)
	}
	if r.CompletedAt < r.StartedAt {
		return fmt.Errorf("completed_at (%d) cannot be before started_at (%d)", r.CompletedAt, r.StartedAt)
	}
	if r.Error == "" && len(r.Errors) == 0 && r.Data == nil {
		return fmt.Errorf("data is required when the item parsed cleanly")
	}
	return nil
}
