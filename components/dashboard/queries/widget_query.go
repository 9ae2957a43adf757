package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	dashboard "github.com/goliatone/go-kpi/components/dashboard"
)

// WidgetDataInput identifies a single widget instance for a viewer.
type WidgetDataInput struct {
	Viewer   dashboard.ViewerContext
	Instance dashboard.WidgetInstance
}

type widgetFetcher interface {
	Fetch(ctx context.Context, viewer dashboard.ViewerContext, instance dashboard.WidgetInstance) (dashboard.WidgetData, error)
}

// WidgetDataQuery fetches the classified payload of one widget.
type WidgetDataQuery struct {
	service widgetFetcher
}

// NewWidgetDataQuery builds the query.
func NewWidgetDataQuery(service widgetFetcher) *WidgetDataQuery {
	return &WidgetDataQuery{service: service}
}

var _ gocommand.Querier[WidgetDataInput, dashboard.WidgetData] = (*WidgetDataQuery)(nil)

// Query fetches data for the instance.
func (q *WidgetDataQuery) Query(ctx context.Context, input WidgetDataInput) (dashboard.WidgetData, error) {
	return q.service.Fetch(ctx, input.Viewer, input.Instance)
}

// ResolveWidgetsInput lists the instances to resolve for a viewer.
type ResolveWidgetsInput struct {
	Viewer    dashboard.ViewerContext
	Instances []dashboard.WidgetInstance
}

type widgetResolver interface {
	Resolve(ctx context.Context, viewer dashboard.ViewerContext, instances []dashboard.WidgetInstance) ([]dashboard.WidgetInstance, error)
}

// ResolveWidgetsQuery resolves a batch of widgets with per-widget error isolation.
type ResolveWidgetsQuery struct {
	service widgetResolver
}

// NewResolveWidgetsQuery builds the query.
func NewResolveWidgetsQuery(service widgetResolver) *ResolveWidgetsQuery {
	return &ResolveWidgetsQuery{service: service}
}

var _ gocommand.Querier[ResolveWidgetsInput, []dashboard.WidgetInstance] = (*ResolveWidgetsQuery)(nil)

// Query resolves every instance in the input.
func (q *ResolveWidgetsQuery) Query(ctx context.Context, input ResolveWidgetsInput) ([]dashboard.WidgetInstance, error) {
	return q.service.Resolve(ctx, input.Viewer, input.Instances)
}
