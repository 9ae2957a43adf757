package dashboard

import (
	"context"

	"github.com/goliatone/go-kpi/components/metrics"
)

// Provider turns repository records into the payload for a widget instance.
type Provider interface {
	Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error)
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(ctx context.Context, meta WidgetContext) (WidgetData, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	return f(ctx, meta)
}

// WidgetContext contains the metadata needed by providers.
type WidgetContext struct {
	Instance   WidgetInstance
	Definition WidgetDefinition
	Viewer     ViewerContext
	Bands      *metrics.BandCatalog
}

// BandSet resolves the band set for the widget: the instance "bands"
// configuration wins over the definition default, which wins over fallback.
func (meta WidgetContext) BandSet(fallback string) (metrics.BandSet, error) {
	name := stringOr(meta.Instance.Configuration["bands"], "")
	if name == "" {
		name = meta.Definition.Bands
	}
	if name == "" {
		name = fallback
	}
	set, ok := meta.Bands.Lookup(name)
	if !ok {
		return metrics.BandSet{}, &metrics.ConfigurationError{Reason: "band set " + name + " not registered"}
	}
	return set, nil
}

// WidgetData is an opaque payload handed to the presentation layer.
type WidgetData map[string]any
