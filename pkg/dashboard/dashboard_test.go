package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	core "github.com/goliatone/go-kpi/components/dashboard"
	"github.com/goliatone/go-kpi/pkg/analytics"
	"github.com/goliatone/go-kpi/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFixtureServiceAppliesBandManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bands.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
bands:
  - name: rate
    family: rate
    bands:
      - {min: 0, level: poor}
      - {min: 5, level: excellent}
`), 0o600))
	cfg := config.Default()
	cfg.Bands.Path = path

	fixtures := &analytics.Fixtures{Funnels: map[string][]analytics.StageFixture{
		"web": {{Name: "Visit", Count: 100}, {Name: "Buy", Count: 9}},
	}}
	service, reg, err := NewFixtureService(&cfg, fixtures, nil)
	require.NoError(t, err)
	assert.NotNil(t, reg)

	data, err := service.Fetch(context.Background(), core.ViewerContext{}, core.WidgetInstance{
		DefinitionID:  core.WidgetFunnel,
		Configuration: map[string]any{"source": "web"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"level": "excellent", "category_key": "rate.excellent"}, data["classification"])
}

func TestNewFixtureServiceDefaults(t *testing.T) {
	service, _, err := NewFixtureService(nil, &analytics.Fixtures{}, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, service.Definitions())
}
