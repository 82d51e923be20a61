package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogger_KeyValueFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Warn("store ping failed", "driver", "mongo", "error", errors.New("timeout"), "attempt", 1)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "store ping failed", entries[0].Message)
	assert.Equal(t, "mongo", fields["driver"])
	assert.Equal(t, "timeout", fields["error"])
	assert.EqualValues(t, 1, fields["attempt"])
}

func TestLogger_DanglingKeyIsKept(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	logger.Info("odd args", "only_key")

	fields := logs.All()[0].ContextMap()
	_, ok := fields["only_key"]
	assert.True(t, ok)
}

func TestLogger_ContextAddsTraceIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core))

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.InfoContext(ctx, "http request")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := FromZap(zap.New(core))

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Error("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.False(t, logger.Enabled(LevelDebug))
	assert.True(t, logger.Enabled(LevelWarn))
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		" error ": LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("no receiver")
		_ = logger.With("k", "v")
		_ = logger.Sync()
	})
}
