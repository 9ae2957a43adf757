package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownSettings(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.Error(t, err)

	_, err = New(Config{Format: "xml"})
	require.Error(t, err)
}

func TestNewJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Str("widget", "funnel").Msg("shown")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "shown", line["message"])
	assert.Equal(t, "funnel", line["widget"])
}

func TestZerologTelemetryRecordsEvents(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "debug", Output: &buf})
	require.NoError(t, err)
	telemetry := NewZerologTelemetry(logger)

	telemetry.Record(context.Background(), "dashboard.widget.provider_error", map[string]any{
		"definition_id": "kpi.widget.funnel",
	})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "warn", line["level"])
	assert.Equal(t, "dashboard.widget.provider_error", line["event"])
	assert.Equal(t, "kpi.widget.funnel", line["definition_id"])
}

func TestZerologTelemetryPrefersContextLogger(t *testing.T) {
	var base, scoped bytes.Buffer
	telemetry := NewZerologTelemetry(zerolog.New(&base).Level(zerolog.DebugLevel))
	ctxLogger := zerolog.New(&scoped).Level(zerolog.DebugLevel).With().Str("run_id", "run-1").Logger()
	ctx := ctxLogger.WithContext(context.Background())

	telemetry.Record(ctx, "dashboard.widget.fetch", nil)

	assert.Empty(t, base.String())
	assert.Contains(t, scoped.String(), `"run_id":"run-1"`)
	assert.Contains(t, scoped.String(), `"level":"debug"`)
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, level)
}
