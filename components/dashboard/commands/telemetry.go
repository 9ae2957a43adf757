package commands

import (
	"context"

	dashboard "github.com/goliatone/go-kpi/components/dashboard"
)

// Telemetry is the dashboard event sink. pkg/telemetry provides a zerolog one.
type Telemetry = dashboard.Telemetry

// commandTelemetry stamps every event with the command that emitted it.
type commandTelemetry struct {
	command string
	sink    Telemetry
}

func newCommandTelemetry(command string, sink Telemetry) commandTelemetry {
	return commandTelemetry{command: command, sink: sink}
}

func (c commandTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	if c.sink == nil {
		return
	}
	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out["command"] = c.command
	c.sink.Record(ctx, event, out)
}
