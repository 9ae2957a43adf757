package telemetry

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// ZerologTelemetry records dashboard events as structured log lines. Events
// whose name ends in "_error" log at warn level, everything else at debug.
type ZerologTelemetry struct {
	logger zerolog.Logger
}

// NewZerologTelemetry wraps a logger.
func NewZerologTelemetry(logger zerolog.Logger) *ZerologTelemetry {
	return &ZerologTelemetry{logger: logger}
}

// Record implements dashboard.Telemetry. A logger attached to ctx via
// zerolog's WithContext takes precedence, so per-run fields carry through.
func (t *ZerologTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	logger := t.logger
	if ctxLogger := zerolog.Ctx(ctx); ctxLogger.GetLevel() != zerolog.Disabled {
		logger = *ctxLogger
	}
	var evt *zerolog.Event
	if strings.HasSuffix(event, "_error") {
		evt = logger.Warn()
	} else {
		evt = logger.Debug()
	}
	evt.Str("event", event).Fields(payload).Msg("telemetry")
}
