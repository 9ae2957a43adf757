package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-kpi/components/metrics"
)

// RegisterBandsInput carries band sets to add to the registry. Existing sets
// with the same name are replaced.
type RegisterBandsInput struct {
	Sets []metrics.BandSet
}

type bandRegistry interface {
	RegisterBandSet(set metrics.BandSet) error
}

// RegisterBandsCommand validates and registers band sets.
type RegisterBandsCommand struct {
	registry  bandRegistry
	telemetry commandTelemetry
}

// NewRegisterBandsCommand wires dependencies.
func NewRegisterBandsCommand(registry bandRegistry, telemetry Telemetry) *RegisterBandsCommand {
	return &RegisterBandsCommand{registry: registry, telemetry: newCommandTelemetry("register_bands", telemetry)}
}

var _ gocommand.Commander[RegisterBandsInput] = (*RegisterBandsCommand)(nil)

// Execute validates every set first so an invalid set leaves the registry untouched.
func (c *RegisterBandsCommand) Execute(ctx context.Context, msg RegisterBandsInput) error {
	if c.registry == nil {
		return errors.New("register bands command requires registry")
	}
	var errs []error
	for _, set := range msg.Sets {
		if err := set.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}
	names := make([]string, 0, len(msg.Sets))
	for _, set := range msg.Sets {
		if err := c.registry.RegisterBandSet(set); err != nil {
			return err
		}
		names = append(names, set.Name)
	}
	c.telemetry.Record(ctx, "dashboard.bands.register", map[string]any{"sets": names})
	return nil
}
