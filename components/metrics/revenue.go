package metrics

import "math"

// ARPU returns revenue per user, or 0 when there are no users. The result is
// a currency value, not a percentage.
func ARPU(totalRevenue float64, totalUsers int) float64 {
	return Divide(totalRevenue, float64(totalUsers))
}

// ARPPU returns revenue per paying user, or 0 when nobody paid.
func ARPPU(totalRevenue float64, payingUsers int) float64 {
	return Divide(totalRevenue, float64(payingUsers))
}

// ConversionRate returns the share of users that pay, as a percentage.
func ConversionRate(payingUsers, totalUsers int) float64 {
	return Percentage(float64(payingUsers), float64(totalUsers))
}

// RevenueSummary bundles the per-user revenue metrics.
type RevenueSummary struct {
	TotalRevenue   float64 `json:"total_revenue" yaml:"total_revenue"`
	TotalUsers     int     `json:"total_users" yaml:"total_users"`
	PayingUsers    int     `json:"paying_users" yaml:"paying_users"`
	ARPU           float64 `json:"arpu" yaml:"arpu"`
	ARPPU          float64 `json:"arppu" yaml:"arppu"`
	ConversionRate float64 `json:"conversion_rate" yaml:"conversion_rate"`
}

// UserRevenue computes ARPU, ARPPU and conversion from revenue spread over
// revenue.UnitCount users, payingUsers of whom paid.
func UserRevenue(revenue MonetaryAggregate, payingUsers int) (RevenueSummary, error) {
	if err := revenue.Validate(); err != nil {
		return RevenueSummary{}, err
	}
	if payingUsers < 0 || payingUsers > revenue.UnitCount {
		return RevenueSummary{}, rangeError("paying_users", float64(payingUsers))
	}
	return RevenueSummary{
		TotalRevenue:   revenue.Total,
		TotalUsers:     revenue.UnitCount,
		PayingUsers:    payingUsers,
		ARPU:           ARPU(revenue.Total, revenue.UnitCount),
		ARPPU:          ARPPU(revenue.Total, payingUsers),
		ConversionRate: ConversionRate(payingUsers, revenue.UnitCount),
	}, nil
}

// AverageOrderValue returns revenue per order for an aggregate whose units are orders.
func AverageOrderValue(orders MonetaryAggregate) float64 {
	return Divide(orders.Total, float64(orders.UnitCount))
}

// Segment holds caller-supplied CLV drivers for one customer segment.
// PurchaseFrequency is purchases per year.
type Segment struct {
	Name                   string  `json:"name" yaml:"name"`
	AverageOrderValue      float64 `json:"average_order_value" yaml:"average_order_value"`
	PurchaseFrequency      float64 `json:"purchase_frequency" yaml:"purchase_frequency"`
	CustomerLifespanMonths float64 `json:"customer_lifespan_months" yaml:"customer_lifespan_months"`
}

// Validate rejects negative or non-finite drivers.
func (s Segment) Validate() error {
	if err := checkAmount("segment "+s.Name+" average_order_value", s.AverageOrderValue); err != nil {
		return err
	}
	if err := checkAmount("segment "+s.Name+" purchase_frequency", s.PurchaseFrequency); err != nil {
		return err
	}
	return checkAmount("segment "+s.Name+" customer_lifespan_months", s.CustomerLifespanMonths)
}

// SegmentValue is the CLV computed for a segment.
type SegmentValue struct {
	Segment string  `json:"segment" yaml:"segment"`
	CLV     float64 `json:"clv" yaml:"clv"`
}

// SegmentCLV returns AOV x annual frequency x lifespan in years.
func SegmentCLV(s Segment) float64 {
	return s.AverageOrderValue * s.PurchaseFrequency * Divide(s.CustomerLifespanMonths, 12)
}

// CLVBySegment computes CLV for every segment, preserving input order.
func CLVBySegment(segments []Segment) ([]SegmentValue, error) {
	values := make([]SegmentValue, 0, len(segments))
	for _, segment := range segments {
		if err := segment.Validate(); err != nil {
			return nil, err
		}
		values = append(values, SegmentValue{Segment: segment.Name, CLV: SegmentCLV(segment)})
	}
	return values, nil
}

// MarginInput carries the revenue and cost bases for margin calculations.
// TotalExpenses is the full cost basis used for net margin.
type MarginInput struct {
	Revenue           float64 `json:"revenue" yaml:"revenue"`
	CostOfGoodsSold   float64 `json:"cogs" yaml:"cogs"`
	OperatingExpenses float64 `json:"opex" yaml:"opex"`
	TotalExpenses     float64 `json:"total_expenses" yaml:"total_expenses"`
}

// Validate rejects negative or non-finite amounts.
func (m MarginInput) Validate() error {
	for _, field := range []struct {
		name  string
		value float64
	}{
		{"revenue", m.Revenue},
		{"cogs", m.CostOfGoodsSold},
		{"opex", m.OperatingExpenses},
		{"total_expenses", m.TotalExpenses},
	} {
		if err := checkAmount(field.name, field.value); err != nil {
			return err
		}
	}
	return nil
}

// MarginBreakdown holds margins as percentages of revenue. Margins can be
// negative when costs exceed revenue.
type MarginBreakdown struct {
	Gross     float64 `json:"gross" yaml:"gross"`
	Operating float64 `json:"operating" yaml:"operating"`
	Net       float64 `json:"net" yaml:"net"`
}

// Margins computes gross, operating and net margin. Zero revenue yields zero margins.
func Margins(in MarginInput) MarginBreakdown {
	return MarginBreakdown{
		Gross:     Percentage(in.Revenue-in.CostOfGoodsSold, in.Revenue),
		Operating: Percentage(in.Revenue-in.OperatingExpenses, in.Revenue),
		Net:       Percentage(in.Revenue-in.TotalExpenses, in.Revenue),
	}
}

// ROI returns (value-investment)/investment as a percentage. A zero
// investment yields 0.
func ROI(value, investment float64) float64 {
	return Percentage(value-investment, investment)
}

// GrowthRate returns the period-over-period change as a percentage.
func GrowthRate(current, previous float64) float64 {
	return Delta(current, previous)
}

// UtilizationRate returns active/total as a percentage, capped at 100.
func UtilizationRate(active, total int) float64 {
	return Clamp(Percentage(float64(active), float64(total)), 0, 100)
}

// ChurnRate is the complement of a retention rate.
func ChurnRate(retentionRate float64) float64 {
	if math.IsNaN(retentionRate) {
		return 0
	}
	return Clamp(100-retentionRate, 0, 100)
}
