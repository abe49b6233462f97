package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "json", Output: &buf, ServiceName: "crime-test"})

	ctx := ContextWithTraceID(context.Background(), "req-1")
	logger.WithContext(ctx).WithSession("s-9").Info().
		Str("intent", "highest").
		Strs("years", []string{"2020"}).
		Int("cities", 2).
		Bool("cached", false).
		Dur("duration", 1500*time.Millisecond).
		Err(errors.New("boom")).
		Msg("answered")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	line := lines[0]

	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "crime-test", line["service"])
	assert.Equal(t, "req-1", line["trace_id"])
	assert.Equal(t, "s-9", line["session_id"])
	assert.Equal(t, "highest", line["intent"])
	assert.Equal(t, []any{"2020"}, line["years"])
	assert.Equal(t, float64(2), line["cities"])
	assert.Equal(t, false, line["cached"])
	assert.Equal(t, float64(1500), line["duration"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "answered", line["message"])
	assert.Contains(t, line, "time")
}

func TestLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Output: &buf})

	logger.Debug().Msg("hidden")
	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown 1")
	logger.Error().Msg("shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "shown 1", lines[0]["message"])
	assert.Equal(t, "error", lines[1]["level"])
}

func TestLogger_WithoutTraceOrSession(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "info", Output: &buf})

	assert.Same(t, logger, logger.WithContext(context.Background()))
	assert.Same(t, logger, logger.WithSession(""))

	logger.Info().Msg("ok")
	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "trace_id")
	assert.NotContains(t, lines[0], "session_id")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", parseLevel("DEBUG").String())
	assert.Equal(t, "warn", parseLevel("warning").String())
	assert.Equal(t, "info", parseLevel("bogus").String())
	assert.Equal(t, "disabled", parseLevel("off").String())
}

func TestTraceIDFromContext(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
	assert.Equal(t, "abc", TraceIDFromContext(ContextWithTraceID(context.Background(), "abc")))
}

func TestNopLogger(t *testing.T) {
	logger := NopLogger()
	logger.Error().Err(errors.New("x")).Msg("discarded")
}
