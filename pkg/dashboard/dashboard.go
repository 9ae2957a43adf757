package dashboard

import (
	core "github.com/goliatone/go-kpi/components/dashboard"
	"github.com/goliatone/go-kpi/components/metrics"
	"github.com/goliatone/go-kpi/pkg/analytics"
	"github.com/goliatone/go-kpi/pkg/config"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewFixtureService wires a registry, the metric providers and a service
// over a fixture dataset, using the retention and band settings of cfg.
func NewFixtureService(cfg *config.Config, fixtures *analytics.Fixtures, telemetry core.Telemetry) (*Service, *core.Registry, error) {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	reg := core.NewRegistry()
	if cfg.Bands.Path != "" {
		manifest, err := metrics.ReadBandManifest(cfg.Bands.Path)
		if err != nil {
			return nil, nil, err
		}
		for _, set := range manifest.Sets {
			if err := reg.RegisterBandSet(set); err != nil {
				return nil, nil, err
			}
		}
	}
	client := analytics.NewFixtureClient(*fixtures)
	if err := core.RegisterMetricProviders(reg, analytics.NewRepositories(client, cfg.RetentionOptions())); err != nil {
		return nil, nil, err
	}
	return core.NewService(Options{Providers: reg, Telemetry: telemetry}), reg, nil
}
