package reqctx

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type key int

const runKey key = 0

// RunContext identifies one lookup run in logs and errors
type RunContext struct {
	RunID     string
	StartTime time.Time
}

// WithRunContext attaches a fresh RunContext to ctx
func WithRunContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, runKey, &RunContext{
		RunID:     uuid.NewString(),
		StartTime: time.Now(),
	})
}

// GetRunContext returns the RunContext stored in ctx, or a placeholder with
// run id "unknown"
func GetRunContext(ctx context.Context) *RunContext {
	if rc, ok := ctx.Value(runKey).(*RunContext); ok {
		return rc
	}
	return &RunContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// RunID returns the run id stored in ctx, or "unknown"
func RunID(ctx context.Context) string {
	return GetRunContext(ctx).RunID
}

// RunError wraps an error with the id of the run that produced it
type RunError struct {
	RunID string
	Err   error
}

// Error implements the error interface
func (e *RunError) Error() string {
	return fmt.Sprintf("[%s] %v", e.RunID, e.Err)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewRunError creates a new RunError from context
func NewRunError(ctx context.Context, err error) error {
	return &RunError{
		RunID: RunID(ctx),
		Err:   err,
	}
}
