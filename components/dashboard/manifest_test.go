package dashboard

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-kpi/components/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeManifest(t *testing.T) {
	const payload = `
version: 1
name: growth-pack
widgets:
  - definition:
      code: growth.widget.nps
      name: Net Promoter Score
      description: Classifies the monthly NPS.
      category: growth
      bands: nps
      schema:
        type: object
        properties:
          source:
            type: string
    provider:
      name: NPS Provider
      summary: Reads survey scores.
      entry: github.com/example/growth.NewNPSProvider
      package: github.com/example/growth
      capabilities: ["json"]
bands:
  - name: nps
    family: rate
    bands:
      - {min: -.inf, level: poor}
      - {min: 0, level: fair}
      - {min: 30, level: good}
      - {min: 70, level: excellent}
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)
	require.Len(t, doc.Widgets, 1)
	require.Len(t, doc.Bands, 1)

	widget := doc.Widgets[0]
	assert.Equal(t, "growth.widget.nps", widget.Definition.Code)
	assert.Equal(t, "nps", widget.Definition.Bands)
	assert.Equal(t, "NPS Provider", widget.Provider.Name)
	assert.Equal(t, "github.com/example/growth.NewNPSProvider", widget.Provider.Entry)

	set := doc.Bands[0]
	assert.Equal(t, metrics.FamilyRate, set.Family)
	require.Len(t, set.Bands, 4)
	assert.Equal(t, metrics.LevelExcellent, set.Bands[3].Level)
}

func TestRegistryLoadManifestDocument(t *testing.T) {
	doc := &WidgetManifestDocument{
		Version: manifestVersionV1,
		Widgets: []ManifestWidget{
			{
				Definition: WidgetDefinition{
					Code:  "acme.widget.uptime",
					Name:  "Uptime",
					Bands: "uptime",
				},
				Provider: ManifestProvider{
					Name:  "Uptime Provider",
					Entry: "github.com/acme/widgets.NewUptimeProvider",
				},
			},
		},
		Bands: []metrics.BandSet{
			{
				Name:   "uptime",
				Family: metrics.FamilyRate,
				Bands: []metrics.ThresholdBand{
					{MinInclusive: 0, Level: metrics.LevelPoor},
					{MinInclusive: 99, Level: metrics.LevelFair},
					{MinInclusive: 99.9, Level: metrics.LevelGood},
					{MinInclusive: 99.99, Level: metrics.LevelExcellent},
				},
			},
		},
	}
	reg := NewRegistry()

	require.NoError(t, reg.LoadManifestDocument(doc))

	def, ok := reg.Definition("acme.widget.uptime")
	require.True(t, ok)
	assert.Equal(t, "Uptime", def.Name)

	meta, ok := reg.ProviderMetadata("acme.widget.uptime")
	require.True(t, ok)
	assert.Equal(t, "Uptime Provider", meta.Name)

	class, err := reg.Bands().Classify("uptime", 99.95)
	require.NoError(t, err)
	assert.Equal(t, metrics.LevelGood, class.Level)
	assert.Equal(t, "rate.good", class.CategoryKey)
}

func TestManifestProviderKindResolvesBuiltInProvider(t *testing.T) {
	const payload = `
widgets:
  - definition:
      code: acme.widget.activation
      name: Activation
      bands: activation
    provider:
      kind: score
bands:
  - name: activation
    family: rate
    bands:
      - {min: 0, level: poor}
      - {min: 50, level: good}
`
	doc, err := DecodeManifest(strings.NewReader(payload))
	require.NoError(t, err)

	reg := NewRegistry()
	require.NoError(t, reg.LoadManifestDocument(doc))
	_, ok := reg.Provider("acme.widget.activation")
	assert.False(t, ok, "built-in provider not registered yet")

	repo := &stubRepos{score: ScoreRecord{Name: "weekly", Value: 62}}
	require.NoError(t, RegisterMetricProviders(reg, MetricRepositories{Scores: repo}))

	service := NewService(Options{Providers: reg})
	data, err := service.Fetch(context.Background(), ViewerContext{}, WidgetInstance{
		ID:            "activation",
		DefinitionID:  "acme.widget.activation",
		Configuration: map[string]any{"source": "weekly"},
	})
	require.NoError(t, err)
	assert.Equal(t, "activation", data["bands"])
	assert.Equal(t, map[string]any{"level": "good", "category_key": "rate.good"}, data["classification"])
	assert.Equal(t, MetricQuery{Source: "weekly", Range: "30d", Segment: "all users"}, repo.queries[0])
}

func TestManifestRejectsUnknownProviderKind(t *testing.T) {
	const payload = `
widgets:
  - definition:
      code: acme.widget.mystery
      name: Mystery
    provider:
      kind: sparkline
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown provider kind "sparkline"`)
}

func TestManifestDuplicateCodes(t *testing.T) {
	const payload = `
widgets:
  - definition:
      code: dup.widget
      name: First
  - definition:
      code: dup.widget
      name: Second
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates widget code")
}

func TestManifestRejectsUnsortedBands(t *testing.T) {
	const payload = `
widgets: []
bands:
  - name: broken
    family: rate
    bands:
      - {min: 50, level: good}
      - {min: 10, level: poor}
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.ErrorIs(t, err, metrics.ErrConfiguration)
}

func TestManifestDuplicateBandSets(t *testing.T) {
	const payload = `
widgets: []
bands:
  - name: twice
    family: rate
    bands: [{min: 0, level: poor}]
  - name: twice
    family: rate
    bands: [{min: 0, level: fair}]
`
	_, err := DecodeManifest(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicates band set")
}

func TestDocsManifestsAreValid(t *testing.T) {
	dir := filepath.Join("..", "..", "docs", "manifests")
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	codes := map[string]string{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := ReadManifest(path)
		require.NoErrorf(t, err, "manifest %s should parse", path)
		for _, widget := range doc.Widgets {
			if prev, exists := codes[widget.Definition.Code]; exists {
				t.Fatalf("widget code %s defined in both %s and %s", widget.Definition.Code, prev, path)
			}
			codes[widget.Definition.Code] = path
		}
		reg := NewRegistry()
		require.NoErrorf(t, reg.LoadManifestDocument(doc), "manifest %s should register", path)
	}
}
