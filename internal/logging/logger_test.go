package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level, format string) *bytes.Buffer {
	t.Helper()
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	SetupWriter(&buf, level, format)
	return &buf
}

func TestJSONWithRequestID(t *testing.T) {
	buf := capture(t, "info", "json")

	ctx := WithRequestID(context.Background(), "req-1")
	l := WithFields(ctx, "chart_id", "c1")
	l.Info().Msg("saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "c1", entry["chart_id"])
	assert.Equal(t, "saved", entry["message"])
	assert.Equal(t, "info", entry["level"])
}

func TestLevelFilter(t *testing.T) {
	buf := capture(t, "warn", "json")

	l := FromContext(context.Background())
	l.Info().Msg("hidden")
	l.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestTextFormat(t *testing.T) {
	buf := capture(t, "debug", "text")

	l := FromContext(context.Background())
	l.Debug().Str("k", "v").Msg("hello")

	out := buf.String()
	assert.True(t, strings.Contains(out, "hello"), out)
	assert.Contains(t, out, "k=v")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestRequestIDMissing(t *testing.T) {
	assert.Equal(t, "", RequestID(context.Background()))
	assert.Equal(t, "abc", RequestID(WithRequestID(context.Background(), "abc")))
}
