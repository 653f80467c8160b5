package reqctx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWithRunContext(t *testing.T) {
	ctx := WithRunContext(context.Background())

	id := RunID(ctx)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Expected a UUID run id, got %q", id)
	}
	if GetRunContext(ctx).StartTime.IsZero() {
		t.Error("Expected start time to be set")
	}

	other := RunID(WithRunContext(context.Background()))
	if other == id {
		t.Error("Expected distinct run ids")
	}
}

func TestRunID_Missing(t *testing.T) {
	if got := RunID(context.Background()); got != "unknown" {
		t.Errorf("Expected 'unknown', got %q", got)
	}
}

func TestNewRunError(t *testing.T) {
	ctx := WithRunContext(context.Background())
	base := errors.New("boom")

	err := NewRunError(ctx, base)
	if !errors.Is(err, base) {
		t.Error("Expected RunError to unwrap to the wrapped error")
	}
	if !strings.HasPrefix(err.Error(), "["+RunID(ctx)+"]") {
		t.Errorf("Expected run id prefix, got %q", err.Error())
	}
}
