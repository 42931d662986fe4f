package ctxutil

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestWithRunID_And_RunIDFromCtx(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := WithRunID(context.Background(), id)

	got, ok := RunIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected ok=true for valid UUID")
	}
	if got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

func TestRunIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	got, ok := RunIDFromCtx(context.Background())
	if ok {
		t.Fatal("expected ok=false for empty context")
	}
	if got != uuid.Nil {
		t.Fatalf("expected uuid.Nil, got %s", got)
	}
}

func TestRunIDFromCtx_NilUUID(t *testing.T) {
	t.Parallel()

	ctx := WithRunID(context.Background(), uuid.Nil)
	if _, ok := RunIDFromCtx(ctx); ok {
		t.Fatal("expected ok=false for uuid.Nil")
	}
}

func TestLoggerFromCtx_TagsRunID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	id := uuid.New()

	ctx := WithLogger(WithRunID(context.Background(), id), logger)
	LoggerFromCtx(ctx).Info("phase started")

	if !strings.Contains(buf.String(), "run_id="+id.String()) {
		t.Errorf("log line should carry run_id, got %q", buf.String())
	}
}

func TestLoggerFromCtx_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	if LoggerFromCtx(context.Background()) == nil {
		t.Fatal("expected default logger")
	}
}
