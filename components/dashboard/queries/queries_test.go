package queries

import (
	"context"
	"testing"

	dashboard "github.com/goliatone/go-kpi/components/dashboard"
	"github.com/goliatone/go-kpi/components/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWidgetService struct {
	fetchCalls   int
	resolveCalls int
}

func (s *stubWidgetService) Fetch(context.Context, dashboard.ViewerContext, dashboard.WidgetInstance) (dashboard.WidgetData, error) {
	s.fetchCalls++
	return dashboard.WidgetData{"value": 1}, nil
}

func (s *stubWidgetService) Resolve(_ context.Context, _ dashboard.ViewerContext, instances []dashboard.WidgetInstance) ([]dashboard.WidgetInstance, error) {
	s.resolveCalls++
	return instances, nil
}

func TestWidgetDataQuery(t *testing.T) {
	service := &stubWidgetService{}
	query := NewWidgetDataQuery(service)
	data, err := query.Query(context.Background(), WidgetDataInput{
		Instance: dashboard.WidgetInstance{DefinitionID: dashboard.WidgetFunnel},
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.fetchCalls != 1 || data["value"] != 1 {
		t.Fatalf("expected 1 fetch call, got %d", service.fetchCalls)
	}
}

func TestResolveWidgetsQuery(t *testing.T) {
	service := &stubWidgetService{}
	query := NewResolveWidgetsQuery(service)
	out, err := query.Query(context.Background(), ResolveWidgetsInput{
		Instances: []dashboard.WidgetInstance{{ID: "w1"}, {ID: "w2"}},
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if service.resolveCalls != 1 || len(out) != 2 {
		t.Fatalf("expected 1 resolve call with 2 widgets, got %d/%d", service.resolveCalls, len(out))
	}
}

func TestClassifyQueryUsesRegistryBands(t *testing.T) {
	query := NewClassifyQuery(dashboard.NewRegistry())

	class, err := query.Query(context.Background(), ClassifyInput{Bands: "rate", Value: 79.999})
	require.NoError(t, err)
	assert.Equal(t, metrics.LevelGood, class.Level)

	class, err = query.Query(context.Background(), ClassifyInput{Bands: "rate", Value: 80})
	require.NoError(t, err)
	assert.Equal(t, "rate.excellent", class.CategoryKey)

	_, err = query.Query(context.Background(), ClassifyInput{Bands: "unknown", Value: 1})
	assert.ErrorIs(t, err, metrics.ErrConfiguration)
}
