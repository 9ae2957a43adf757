package metrics

import "math"

const (
	// DefaultRetentionWindow is the number of most recent cohorts summarized.
	DefaultRetentionWindow = 12
	// DefaultHighRetention marks cohorts counted as high-retention.
	DefaultHighRetention = 80.0
	// DefaultLowRetention marks cohorts counted as low-retention.
	DefaultLowRetention = 60.0
)

// RetentionOptions selects the window and badge thresholds. A Window <= 0
// summarizes every cohort.
type RetentionOptions struct {
	Window        int     `json:"window" yaml:"window"`
	HighThreshold float64 `json:"high_threshold" yaml:"high_threshold"`
	LowThreshold  float64 `json:"low_threshold" yaml:"low_threshold"`
}

// DefaultRetentionOptions returns a 12 period window with 80/60 thresholds.
func DefaultRetentionOptions() RetentionOptions {
	return RetentionOptions{
		Window:        DefaultRetentionWindow,
		HighThreshold: DefaultHighRetention,
		LowThreshold:  DefaultLowRetention,
	}
}

// Validate rejects thresholds outside [0, 100] or a low threshold above the high one.
func (o RetentionOptions) Validate() error {
	if math.IsNaN(o.HighThreshold) || o.HighThreshold < 0 || o.HighThreshold > 100 {
		return configErrorf("high retention threshold %v outside [0, 100]", o.HighThreshold)
	}
	if math.IsNaN(o.LowThreshold) || o.LowThreshold < 0 || o.LowThreshold > 100 {
		return configErrorf("low retention threshold %v outside [0, 100]", o.LowThreshold)
	}
	if o.LowThreshold > o.HighThreshold {
		return configErrorf("low retention threshold %v above high threshold %v", o.LowThreshold, o.HighThreshold)
	}
	return nil
}

// CohortRetention is the retention result for a single cohort.
type CohortRetention struct {
	Period        Period  `json:"period" yaml:"period"`
	NewCount      int     `json:"new_count" yaml:"new_count"`
	RetainedCount int     `json:"retained_count" yaml:"retained_count"`
	RetentionRate float64 `json:"retention_rate" yaml:"retention_rate"`
}

// RetentionSummary aggregates the cohorts inside the window.
//
// AverageRetention is the unweighted mean of per-cohort rates, so a cohort of
// 10 users counts as much as a cohort of 10,000. PooledRetention is the
// ratio of sums (TotalRetained/TotalNew) and weights cohorts by size. The two
// differ whenever cohort sizes are uneven; widgets show AverageRetention.
type RetentionSummary struct {
	Cohorts          []CohortRetention `json:"cohorts" yaml:"cohorts"`
	TotalNew         int               `json:"total_new" yaml:"total_new"`
	TotalRetained    int               `json:"total_retained" yaml:"total_retained"`
	AverageRetention float64           `json:"average_retention" yaml:"average_retention"`
	PooledRetention  float64           `json:"pooled_retention" yaml:"pooled_retention"`
	AboveHigh        int               `json:"above_high" yaml:"above_high"`
	BelowLow         int               `json:"below_low" yaml:"below_low"`
	// Trend is the percentage change from the oldest to the newest rate in the window.
	Trend float64 `json:"trend" yaml:"trend"`
}

// Latest returns the newest cohort in the window.
func (s RetentionSummary) Latest() (CohortRetention, bool) {
	if len(s.Cohorts) == 0 {
		return CohortRetention{}, false
	}
	return s.Cohorts[len(s.Cohorts)-1], true
}

// RetentionRate returns clamp(retained/new*100, 0, 100) for a cohort.
func RetentionRate(c Cohort) float64 {
	return Clamp(Percentage(float64(c.RetainedCount), float64(c.NewCount)), 0, 100)
}

// TrackRetention summarizes the most recent opts.Window cohorts. Cohorts must
// be ordered oldest first.
func TrackRetention(cohorts []Cohort, opts RetentionOptions) (RetentionSummary, error) {
	if err := opts.Validate(); err != nil {
		return RetentionSummary{}, err
	}
	acc := NewRetentionAccumulator(opts)
	for _, cohort := range windowCohorts(cohorts, opts.Window) {
		if err := acc.Add(cohort); err != nil {
			return RetentionSummary{}, err
		}
	}
	return acc.Summary(), nil
}

func windowCohorts(cohorts []Cohort, window int) []Cohort {
	if window <= 0 || window >= len(cohorts) {
		return cohorts
	}
	return cohorts[len(cohorts)-window:]
}

// RetentionAccumulator folds cohorts into a summary incrementally. Separate
// accumulators over adjacent ranges can be merged in order, which lets large
// histories be split across workers.
type RetentionAccumulator struct {
	opts          RetentionOptions
	cohorts       []CohortRetention
	totalNew      int
	totalRetained int
	rateSum       float64
	aboveHigh     int
	belowLow      int
}

// NewRetentionAccumulator builds an empty accumulator. Only the thresholds of
// opts are used; windowing is the caller's job.
func NewRetentionAccumulator(opts RetentionOptions) *RetentionAccumulator {
	return &RetentionAccumulator{opts: opts}
}

// Add folds a single cohort into the accumulator.
func (a *RetentionAccumulator) Add(c Cohort) error {
	if err := c.Validate(); err != nil {
		return err
	}
	rate := RetentionRate(c)
	a.cohorts = append(a.cohorts, CohortRetention{
		Period:        c.Period,
		NewCount:      c.NewCount,
		RetainedCount: c.RetainedCount,
		RetentionRate: rate,
	})
	a.totalNew += c.NewCount
	a.totalRetained += c.RetainedCount
	a.rateSum += rate
	if rate >= a.opts.HighThreshold {
		a.aboveHigh++
	}
	if rate < a.opts.LowThreshold {
		a.belowLow++
	}
	return nil
}

// Merge appends other, which must cover the range directly after a.
func (a *RetentionAccumulator) Merge(other *RetentionAccumulator) {
	if other == nil {
		return
	}
	a.cohorts = append(a.cohorts, other.cohorts...)
	a.totalNew += other.totalNew
	a.totalRetained += other.totalRetained
	a.rateSum += other.rateSum
	a.aboveHigh += other.aboveHigh
	a.belowLow += other.belowLow
}

// Summary returns the aggregate for everything added so far.
func (a *RetentionAccumulator) Summary() RetentionSummary {
	summary := RetentionSummary{
		Cohorts:         append([]CohortRetention(nil), a.cohorts...),
		TotalNew:        a.totalNew,
		TotalRetained:   a.totalRetained,
		PooledRetention: Clamp(Percentage(float64(a.totalRetained), float64(a.totalNew)), 0, 100),
		AboveHigh:       a.aboveHigh,
		BelowLow:        a.belowLow,
	}
	if n := len(a.cohorts); n > 0 {
		summary.AverageRetention = Divide(a.rateSum, float64(n))
		summary.Trend = Delta(a.cohorts[n-1].RetentionRate, a.cohorts[0].RetentionRate)
	}
	return summary
}
