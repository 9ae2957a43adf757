package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-kpi/components/dashboard"
	"github.com/goliatone/go-kpi/components/dashboard/commands"
	"github.com/goliatone/go-kpi/components/metrics"
	"github.com/goliatone/go-kpi/pkg/config"
	"github.com/goliatone/go-kpi/pkg/telemetry"
)

type cli struct {
	Config    string `type:"path" env:"KPI_CONFIG" help:"Optional YAML configuration file."`
	LogLevel  string `name:"log-level" help:"Override log.level (trace, debug, info, warn, error, disabled)."`
	LogFormat string `name:"log-format" help:"Override log.format (json or console)."`

	Compute  computeCmd  `cmd:"" help:"Resolve the widgets of a fixture file and print their classified payloads."`
	Classify classifyCmd `cmd:"" help:"Classify a single value against a band set."`
	Bands    bandsCmd    `cmd:"" help:"Inspect and validate band manifests."`
	Widgets  widgetsCmd  `cmd:"" help:"List the registered widget definitions."`
}

// app carries the per-run dependencies handed to every command.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	telemetry *telemetry.ZerologTelemetry
	out       io.Writer
}

func main() {
	var root cli
	kctx := kong.Parse(&root,
		kong.Name("kpictl"),
		kong.Description("Compute and classify KPI widgets from fixture data."),
		kong.UsageOnError(),
	)
	a, err := newApp(root, os.Stdout, os.Stderr)
	kctx.FatalIfErrorf(err)

	kctx.BindTo(a.logger.WithContext(context.Background()), (*context.Context)(nil))
	err = kctx.Run(a)
	if err != nil {
		a.logger.Error().Err(err).Str("command", kctx.Command()).Msg("command failed")
	}
	kctx.FatalIfErrorf(err)
}

func newApp(root cli, out, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	if root.LogLevel != "" {
		cfg.Log.Level = root.LogLevel
	}
	if root.LogFormat != "" {
		cfg.Log.Format = root.LogFormat
	}
	logCfg := cfg.LoggerConfig()
	logCfg.Output = logOut
	logger, err := telemetry.New(logCfg)
	if err != nil {
		return nil, fmt.Errorf("kpictl: %w", err)
	}
	logger = logger.With().Str("run_id", uuid.NewString()).Logger()
	return &app{
		cfg:       cfg,
		logger:    logger,
		telemetry: telemetry.NewZerologTelemetry(logger),
		out:       out,
	}, nil
}

// registry builds a widget registry with the configured band manifest, the
// optional override manifest and widget manifests applied in that order.
func (a *app) registry(ctx context.Context, bandsPath string, manifests []string) (*dashboard.Registry, error) {
	reg := dashboard.NewRegistry()
	for _, path := range []string{a.cfg.Bands.Path, bandsPath} {
		if path == "" {
			continue
		}
		manifest, err := metrics.ReadBandManifest(path)
		if err != nil {
			return nil, err
		}
		cmd := commands.NewRegisterBandsCommand(reg, a.telemetry)
		if err := cmd.Execute(ctx, commands.RegisterBandsInput{Sets: manifest.Sets}); err != nil {
			return nil, fmt.Errorf("kpictl: register bands from %s: %w", path, err)
		}
	}
	load := commands.NewLoadManifestCommand(reg, a.telemetry)
	for _, path := range manifests {
		if err := load.Execute(ctx, commands.LoadManifestInput{Path: path}); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
