package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-kpi/components/dashboard"
	"github.com/goliatone/go-kpi/components/dashboard/queries"
	"github.com/goliatone/go-kpi/pkg/analytics"
)

type computeCmd struct {
	Data     string   `required:"" type:"existingfile" help:"Fixture YAML with datasets and widgets."`
	Bands    string   `type:"existingfile" help:"Band manifest merged over the configured bands."`
	Manifest []string `help:"Widget manifests to register (repeatable)."`
	Format   string   `enum:"json,yaml" default:"json" help:"Output format (json or yaml)."`
	Strict   bool     `help:"Exit with an error when any widget fails to resolve."`
	User     string   `default:"kpictl" help:"Viewer id recorded in telemetry."`
}

type widgetReport struct {
	ID         string         `json:"id" yaml:"id"`
	Definition string         `json:"definition" yaml:"definition"`
	Data       map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
	Error      string         `json:"error,omitempty" yaml:"error,omitempty"`
}

func (cmd *computeCmd) Run(ctx context.Context, a *app) error {
	fixtures, err := analytics.LoadFixtures(cmd.Data)
	if err != nil {
		return err
	}
	reg, err := a.registry(ctx, cmd.Bands, cmd.Manifest)
	if err != nil {
		return err
	}
	client := analytics.NewFixtureClient(*fixtures)
	if err := dashboard.RegisterMetricProviders(reg, analytics.NewRepositories(client, a.cfg.RetentionOptions())); err != nil {
		return err
	}
	service := dashboard.NewService(dashboard.Options{
		Providers: reg,
		Telemetry: a.telemetry,
	})

	resolved, err := queries.NewResolveWidgetsQuery(service).Query(ctx, queries.ResolveWidgetsInput{
		Viewer:    dashboard.ViewerContext{UserID: cmd.User},
		Instances: fixtures.Instances(),
	})
	if err != nil {
		return err
	}

	reports := make([]widgetReport, 0, len(resolved))
	failed := 0
	for _, inst := range resolved {
		report := widgetReport{ID: inst.ID, Definition: inst.DefinitionID}
		if data, ok := inst.Metadata["data"].(dashboard.WidgetData); ok {
			report.Data = data
		}
		if msg, ok := inst.Metadata["error"].(string); ok {
			report.Error = msg
			failed++
		}
		reports = append(reports, report)
	}
	a.logger.Info().Int("widgets", len(reports)).Int("failed", failed).Msg("widgets resolved")

	if err := writeReport(a.out, cmd.Format, reports); err != nil {
		return err
	}
	if cmd.Strict && failed > 0 {
		return fmt.Errorf("kpictl: %d of %d widgets failed", failed, len(reports))
	}
	return nil
}

func writeReport(w io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		defer encoder.Close()
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("kpictl: write yaml: %w", err)
		}
	default:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(v); err != nil {
			return fmt.Errorf("kpictl: write json: %w", err)
		}
	}
	return nil
}
