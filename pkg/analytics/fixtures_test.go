package analytics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeFixtures(t *testing.T) {
	const payload = `
funnels:
  web:
    - {name: Visitors, count: 1000}
    - {name: Paid, count: 90}
cohorts:
  web:
    - {period: 2025-01, new: 100, retained: 80}
revenue:
  web: {total: 500, users: 10, paying: 2}
scores:
  uptime: {value: 99.5}
widgets:
  - definition: kpi.widget.funnel
    configuration: {source: web}
  - id: fixed
    definition: kpi.widget.score
`
	fixtures, err := DecodeFixtures(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Len(t, fixtures.Funnels["web"], 2)
	assert.Equal(t, "2025-01", fixtures.Cohorts["web"][0].Period)
	assert.Nil(t, fixtures.Scores["uptime"].Previous)

	instances := fixtures.Instances()
	require.Len(t, instances, 2)
	assert.NotEmpty(t, instances[0].ID)
	assert.Equal(t, "web", instances[0].Configuration["source"])
	assert.Equal(t, "fixed", instances[1].ID)
}

func TestDecodeFixturesValidation(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "negative count",
			payload: "funnels:\n  web:\n    - {name: Visitors, count: -1}\n",
			want:    "Count must be greater than or equal to 0",
		},
		{
			name:    "empty funnel",
			payload: "funnels:\n  web: []\n",
			want:    "Funnels",
		},
		{
			name:    "bad period",
			payload: "cohorts:\n  web:\n    - {period: January, new: 1, retained: 1}\n",
			want:    "YYYY-MM period",
		},
		{
			name:    "paying above users",
			payload: "revenue:\n  web: {total: 1, users: 2, paying: 3}\n",
			want:    "must not exceed Users",
		},
		{
			name:    "missing widget definition",
			payload: "widgets:\n  - id: w1\n",
			want:    "Definition is required",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFixtures(strings.NewReader(tc.payload))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestDecodeFixturesRejectsUnknownFields(t *testing.T) {
	_, err := DecodeFixtures(strings.NewReader("funnel:\n  web: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse fixtures")
}

func TestLoadFixturesFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scores:\n  nps: {value: 42}\n"), 0o600))

	fixtures, err := LoadFixtures(path)
	require.NoError(t, err)
	assert.Equal(t, 42.0, fixtures.Scores["nps"].Value)

	_, err = LoadFixtures(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSampleFixturesAreValid(t *testing.T) {
	fixtures, err := LoadFixtures(filepath.Join("..", "..", "docs", "fixtures", "sample.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, fixtures.Instances())
}
