package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-kpi/components/dashboard"
)

// LoadManifestInput points at a widget manifest on disk.
type LoadManifestInput struct {
	Path string
}

type manifestLoader interface {
	LoadManifestFile(path string) (*dashboard.WidgetManifestDocument, error)
}

// LoadManifestCommand registers the widgets and band sets of a manifest file.
type LoadManifestCommand struct {
	registry  manifestLoader
	telemetry commandTelemetry
}

// NewLoadManifestCommand wires dependencies.
func NewLoadManifestCommand(registry manifestLoader, telemetry Telemetry) *LoadManifestCommand {
	return &LoadManifestCommand{registry: registry, telemetry: newCommandTelemetry("load_manifest", telemetry)}
}

var _ gocommand.Commander[LoadManifestInput] = (*LoadManifestCommand)(nil)

// Execute loads and registers the manifest.
func (c *LoadManifestCommand) Execute(ctx context.Context, msg LoadManifestInput) error {
	if c.registry == nil {
		return errors.New("load manifest command requires registry")
	}
	if msg.Path == "" {
		return errors.New("load manifest command requires a path")
	}
	doc, err := c.registry.LoadManifestFile(msg.Path)
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.manifest.load", map[string]any{
		"path":    msg.Path,
		"widgets": len(doc.Widgets),
		"bands":   len(doc.Bands),
	})
	return nil
}
