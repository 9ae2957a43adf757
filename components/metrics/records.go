package metrics

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// MetricInput is a named numeric argument, e.g. totalUsers or uptime.
type MetricInput struct {
	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`
}

// FunnelStage is a single step in an ordered funnel. Callers should not pass
// stages whose counts increase; the analyzer does not reorder or clamp them.
type FunnelStage struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"count" yaml:"count"`
}

// NewFunnelStage validates count before building the stage.
func NewFunnelStage(name string, count int) (FunnelStage, error) {
	stage := FunnelStage{Name: name, Count: count}
	if err := stage.Validate(); err != nil {
		return FunnelStage{}, err
	}
	return stage, nil
}

// Validate rejects negative counts.
func (s FunnelStage) Validate() error {
	if s.Count < 0 {
		return rangeError("funnel stage "+s.Name+" count", float64(s.Count))
	}
	return nil
}

// Period identifies a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

const periodLayout = "2006-01"

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" month identifier.
func ParsePeriod(value string) (Period, error) {
	t, err := time.Parse(periodLayout, strings.TrimSpace(value))
	if err != nil {
		return Period{}, fmt.Errorf("metrics: parse period %q: %w", value, err)
	}
	return PeriodOf(t), nil
}

// Start returns the first instant of the month in UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (p Period) Next() Period {
	return PeriodOf(p.Start().AddDate(0, 1, 0))
}

// Before reports whether p is earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// IsZero reports whether the period was never set.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	if p.IsZero() {
		return ""
	}
	return p.Start().Format(periodLayout)
}

// MarshalText encodes the period as "YYYY-MM".
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a "YYYY-MM" period.
func (p *Period) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*p = Period{}
		return nil
	}
	parsed, err := ParsePeriod(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Cohort groups the users that joined in one period. RetainedCount may exceed
// NewCount in upstream data; the tracker clamps the rate.
type Cohort struct {
	Period        Period `json:"period" yaml:"period"`
	NewCount      int    `json:"new_count" yaml:"new_count"`
	RetainedCount int    `json:"retained_count" yaml:"retained_count"`
}

// NewCohort validates counts before building the cohort.
func NewCohort(period Period, newCount, retainedCount int) (Cohort, error) {
	cohort := Cohort{Period: period, NewCount: newCount, RetainedCount: retainedCount}
	if err := cohort.Validate(); err != nil {
		return Cohort{}, err
	}
	return cohort, nil
}

// Validate rejects negative counts.
func (c Cohort) Validate() error {
	if c.NewCount < 0 {
		return rangeError("cohort "+c.Period.String()+" new_count", float64(c.NewCount))
	}
	if c.RetainedCount < 0 {
		return rangeError("cohort "+c.Period.String()+" retained_count", float64(c.RetainedCount))
	}
	return nil
}

// MonetaryAggregate is a money total over a number of units (users, orders).
type MonetaryAggregate struct {
	Total     float64 `json:"total" yaml:"total"`
	UnitCount int     `json:"unit_count" yaml:"unit_count"`
}

// NewMonetaryAggregate validates the total and unit count.
func NewMonetaryAggregate(total float64, units int) (MonetaryAggregate, error) {
	agg := MonetaryAggregate{Total: total, UnitCount: units}
	if err := agg.Validate(); err != nil {
		return MonetaryAggregate{}, err
	}
	return agg, nil
}

// Validate rejects negative or non-finite totals and negative unit counts.
func (m MonetaryAggregate) Validate() error {
	if err := checkAmount("total", m.Total); err != nil {
		return err
	}
	if m.UnitCount < 0 {
		return rangeError("unit_count", float64(m.UnitCount))
	}
	return nil
}

// ValidateAmount rejects a negative or non-finite amount with a RangeError
// naming field.
func ValidateAmount(field string, value float64) error {
	return checkAmount(field, value)
}

func checkAmount(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return rangeError(field, value)
	}
	return nil
}
