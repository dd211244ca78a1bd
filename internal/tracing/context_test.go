package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	assert.Empty(t, GetTraceID(ctx))
	assert.Empty(t, GetProjectID(ctx))
	assert.Empty(t, GetRequestID(ctx))

	ctx = WithTraceID(ctx, "trace-1")
	ctx = WithProjectID(ctx, "proj-1")
	ctx = WithRequestID(ctx, "req-1")

	assert.Equal(t, "trace-1", GetTraceID(ctx))
	assert.Equal(t, "proj-1", GetProjectID(ctx))
	assert.Equal(t, "req-1", GetRequestID(ctx))
}

func TestNewTraceIDUnique(t *testing.T) {
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}

func TestLoggerFromContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithTraceID(context.Background(), "trace-9")
	ctx = WithProjectID(ctx, "proj-9")

	logger := LoggerFromContext(ctx, base)
	logger.Info().Msg("hello")

	out := buf.String()
	require.Contains(t, out, `"trace_id":"trace-9"`)
	require.Contains(t, out, `"project_id":"proj-9"`)
	assert.NotContains(t, out, "request_id")
}

func TestStartSpanSetsTraceID(t *testing.T) {
	require.NoError(t, Init("test", 1))

	ctx, span := StartSpan(context.Background(), "test", "op")
	defer span.End()

	assert.NotEmpty(t, GetTraceID(ctx))
}
