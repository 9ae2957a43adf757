package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyCohorts(start Period, pairs ...[2]int) []Cohort {
	cohorts := make([]Cohort, len(pairs))
	period := start
	for i, pair := range pairs {
		cohorts[i] = Cohort{Period: period, NewCount: pair[0], RetainedCount: pair[1]}
		period = period.Next()
	}
	return cohorts
}

func TestTrackRetentionMeanOfRatesVersusPooled(t *testing.T) {
	cohorts := monthlyCohorts(Period{Year: 2024, Month: time.January}, [2]int{100, 80}, [2]int{50, 50})

	summary, err := TrackRetention(cohorts, DefaultRetentionOptions())
	require.NoError(t, err)
	require.Len(t, summary.Cohorts, 2)

	assert.Equal(t, 80.0, summary.Cohorts[0].RetentionRate)
	assert.Equal(t, 100.0, summary.Cohorts[1].RetentionRate)
	assert.Equal(t, 90.0, summary.AverageRetention)
	assert.InDelta(t, 86.6667, summary.PooledRetention, 1e-4)
	assert.NotEqual(t, summary.AverageRetention, summary.PooledRetention)
	assert.Equal(t, 150, summary.TotalNew)
	assert.Equal(t, 130, summary.TotalRetained)
	assert.Equal(t, 2, summary.AboveHigh)
	assert.Equal(t, 0, summary.BelowLow)
	assert.InDelta(t, 25.0, summary.Trend, 1e-9)
}

func TestTrackRetentionWindowSelectsMostRecent(t *testing.T) {
	cohorts := monthlyCohorts(Period{Year: 2023, Month: time.October},
		[2]int{100, 10},
		[2]int{100, 50},
		[2]int{100, 70},
		[2]int{100, 90},
	)
	summary, err := TrackRetention(cohorts, RetentionOptions{Window: 2, HighThreshold: 80, LowThreshold: 60})
	require.NoError(t, err)
	require.Len(t, summary.Cohorts, 2)
	assert.Equal(t, "2023-12", summary.Cohorts[0].Period.String())
	assert.Equal(t, 80.0, summary.AverageRetention)
	assert.Equal(t, 1, summary.AboveHigh)
	assert.Equal(t, 0, summary.BelowLow)

	latest, ok := summary.Latest()
	require.True(t, ok)
	assert.Equal(t, "2024-01", latest.Period.String())

	all, err := TrackRetention(cohorts, RetentionOptions{Window: 10, HighThreshold: 80, LowThreshold: 60})
	require.NoError(t, err)
	assert.Len(t, all.Cohorts, 4)
	assert.Equal(t, 2, all.BelowLow)
}

func TestTrackRetentionClampsAndGuards(t *testing.T) {
	cohorts := monthlyCohorts(Period{Year: 2024, Month: time.March}, [2]int{10, 25}, [2]int{0, 0})
	summary, err := TrackRetention(cohorts, DefaultRetentionOptions())
	require.NoError(t, err)
	assert.Equal(t, 100.0, summary.Cohorts[0].RetentionRate)
	assert.Equal(t, 0.0, summary.Cohorts[1].RetentionRate)
	assert.Equal(t, 50.0, summary.AverageRetention)
	assert.Equal(t, 100.0, summary.PooledRetention)
	assert.Equal(t, -100.0, summary.Trend)
}

func TestTrackRetentionEmptyInput(t *testing.T) {
	summary, err := TrackRetention(nil, DefaultRetentionOptions())
	require.NoError(t, err)
	assert.Empty(t, summary.Cohorts)
	assert.Equal(t, 0.0, summary.AverageRetention)
	_, ok := summary.Latest()
	assert.False(t, ok)
}

func TestTrackRetentionRejectsBadOptionsAndRecords(t *testing.T) {
	_, err := TrackRetention(nil, RetentionOptions{HighThreshold: 50, LowThreshold: 70})
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = TrackRetention([]Cohort{{NewCount: -1}}, DefaultRetentionOptions())
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewCohort(Period{Year: 2024, Month: time.May}, 5, -2)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRetentionAccumulatorMergeMatchesSinglePass(t *testing.T) {
	cohorts := monthlyCohorts(Period{Year: 2024, Month: time.January},
		[2]int{120, 90}, [2]int{80, 30}, [2]int{200, 170}, [2]int{60, 55}, [2]int{90, 40},
	)
	opts := DefaultRetentionOptions()
	single, err := TrackRetention(cohorts, RetentionOptions{HighThreshold: opts.HighThreshold, LowThreshold: opts.LowThreshold})
	require.NoError(t, err)

	left := NewRetentionAccumulator(opts)
	right := NewRetentionAccumulator(opts)
	for _, c := range cohorts[:2] {
		require.NoError(t, left.Add(c))
	}
	for _, c := range cohorts[2:] {
		require.NoError(t, right.Add(c))
	}
	left.Merge(right)
	merged := left.Summary()

	assert.Equal(t, single.TotalNew, merged.TotalNew)
	assert.Equal(t, single.TotalRetained, merged.TotalRetained)
	assert.InDelta(t, single.AverageRetention, merged.AverageRetention, 1e-9)
	assert.Equal(t, single.AboveHigh, merged.AboveHigh)
	assert.Equal(t, single.BelowLow, merged.BelowLow)
	assert.Equal(t, single.Cohorts, merged.Cohorts)
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2024-02")
	require.NoError(t, err)
	assert.Equal(t, Period{Year: 2024, Month: time.February}, p)
	assert.Equal(t, "2024-03", p.Next().String())
	assert.True(t, p.Before(p.Next()))

	_, err = ParsePeriod("02/2024")
	assert.Error(t, err)

	var decoded Period
	require.NoError(t, decoded.UnmarshalText([]byte("2023-12")))
	assert.Equal(t, "2024-01", decoded.Next().String())
}
