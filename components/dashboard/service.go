package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-kpi/components/metrics"
)

var (
	// ErrUnknownWidget reports an instance whose definition is not registered.
	ErrUnknownWidget = errors.New("dashboard: widget definition not registered")
	// ErrMissingProvider reports a definition without a data provider.
	ErrMissingProvider = errors.New("dashboard: widget provider not registered")
	// ErrMissingData reports a dataset lacking the inputs a widget needs.
	ErrMissingData = errors.New("dashboard: metric data unavailable")
)

// Options configures the dashboard Service. Every collaborator is provided via
// interface so applications can swap implementations.
type Options struct {
	Providers       ProviderRegistry
	ConfigValidator ConfigValidator
	Telemetry       Telemetry
	// Bands overrides the band sets exposed to providers. When nil the
	// registry's catalog is used if it has one, else the defaults.
	Bands *metrics.BandCatalog
}

// Service resolves metric widget instances into classified payloads.
type Service struct {
	opts Options
}

type bandSource interface {
	Bands() *metrics.BandCatalog
}

// NewService builds a Service instance with safe defaults.
func NewService(opts Options) *Service {
	if opts.Providers == nil {
		opts.Providers = NewRegistry()
	}
	if opts.ConfigValidator == nil {
		opts.ConfigValidator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	return &Service{opts: opts}
}

// Definitions lists every registered widget definition.
func (s *Service) Definitions() []WidgetDefinition {
	return s.opts.Providers.Definitions()
}

// ValidateInstance checks an instance configuration against its definition schema.
func (s *Service) ValidateInstance(instance WidgetInstance) error {
	def, ok := s.opts.Providers.Definition(instance.DefinitionID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownWidget, instance.DefinitionID)
	}
	return s.opts.ConfigValidator.Validate(def, instance.Configuration)
}

// Fetch validates a single instance and returns its provider payload.
func (s *Service) Fetch(ctx context.Context, viewer ViewerContext, instance WidgetInstance) (WidgetData, error) {
	return s.fetch(ctx, viewer, instance, s.bands())
}

// Resolve fetches data for every instance. A failing widget does not fail
// the batch: its error is stored under Metadata["error"] and the remaining
// widgets still resolve. Results from an earlier Resolve are replaced. Only
// context cancellation aborts the call.
func (s *Service) Resolve(ctx context.Context, viewer ViewerContext, instances []WidgetInstance) ([]WidgetInstance, error) {
	if len(instances) == 0 {
		return instances, nil
	}
	bands := s.bands()
	resolved := make([]WidgetInstance, len(instances))
	failures := 0
	for i, inst := range instances {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		resolved[i] = inst
		resolved[i].Metadata = cloneMetadata(inst.Metadata)
		data, err := s.fetch(ctx, viewer, inst, bands)
		if err != nil {
			failures++
			delete(resolved[i].Metadata, "data")
			resolved[i].Metadata["error"] = err.Error()
			continue
		}
		delete(resolved[i].Metadata, "error")
		resolved[i].Metadata["data"] = data
	}
	s.recordTelemetry(ctx, "dashboard.widgets.resolve", map[string]any{
		"viewer":   viewer.UserID,
		"count":    len(instances),
		"failures": failures,
	})
	return resolved, nil
}

func (s *Service) fetch(ctx context.Context, viewer ViewerContext, inst WidgetInstance, bands *metrics.BandCatalog) (WidgetData, error) {
	def, ok := s.opts.Providers.Definition(inst.DefinitionID)
	if !ok {
		err := fmt.Errorf("%w: %s", ErrUnknownWidget, inst.DefinitionID)
		s.recordProviderError(ctx, inst, err)
		return nil, err
	}
	if err := s.opts.ConfigValidator.Validate(def, inst.Configuration); err != nil {
		s.recordProviderError(ctx, inst, err)
		return nil, err
	}
	provider, ok := s.opts.Providers.Provider(inst.DefinitionID)
	if !ok || provider == nil {
		err := fmt.Errorf("%w: %s", ErrMissingProvider, inst.DefinitionID)
		s.recordProviderError(ctx, inst, err)
		return nil, err
	}
	data, err := provider.Fetch(ctx, WidgetContext{
		Instance:   inst,
		Definition: def,
		Viewer:     viewer,
		Bands:      bands,
	})
	if err != nil {
		s.recordProviderError(ctx, inst, err)
		return nil, err
	}
	payload := map[string]any{
		"definition_id": inst.DefinitionID,
		"widget_id":     inst.ID,
	}
	if class, ok := data["classification"].(map[string]any); ok {
		payload["category_key"] = class["category_key"]
	}
	s.recordTelemetry(ctx, "dashboard.widget.fetch", payload)
	return data, nil
}

func (s *Service) bands() *metrics.BandCatalog {
	if s.opts.Bands != nil {
		return s.opts.Bands
	}
	if src, ok := s.opts.Providers.(bandSource); ok {
		return src.Bands()
	}
	return metrics.DefaultBandCatalog()
}

func (s *Service) recordProviderError(ctx context.Context, inst WidgetInstance, err error) {
	s.recordTelemetry(ctx, "dashboard.widget.provider_error", map[string]any{
		"definition_id": inst.DefinitionID,
		"widget_id":     inst.ID,
		"error":         err.Error(),
	})
}

func (s *Service) recordTelemetry(ctx context.Context, event string, payload map[string]any) {
	s.opts.Telemetry.Record(ctx, event, payload)
}

func cloneMetadata(src map[string]any) map[string]any {
	out := make(map[string]any, len(src)+1)
	for k, v := range src {
		out[k] = v
	}
	return out
}
