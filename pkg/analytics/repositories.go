package analytics

import (
	"context"
	"errors"
	"fmt"

	dashboard "github.com/goliatone/go-kpi/components/dashboard"
	"github.com/goliatone/go-kpi/components/metrics"
)

// NewRepositories adapts a client into the repositories used by the metric
// widget providers. Widgets select datasets by query source.
func NewRepositories(client Client, retention metrics.RetentionOptions) dashboard.MetricRepositories {
	return dashboard.MetricRepositories{
		Funnels:    NewFunnelRepository(client),
		Cohorts:    NewCohortRepository(client),
		Revenue:    NewRevenueRepository(client),
		Financials: NewFinancialsRepository(client),
		Scores:     NewScoreRepository(client),
		Retention:  retention,
	}
}

// NewFunnelRepository adapts an analytics client into a dashboard repository.
func NewFunnelRepository(client FunnelClient) dashboard.FunnelRepository {
	return &funnelRepository{client: client}
}

type funnelRepository struct {
	client FunnelClient
}

func (r *funnelRepository) FetchFunnel(ctx context.Context, query dashboard.MetricQuery) ([]metrics.FunnelStage, error) {
	fixtures, err := r.client.Funnel(ctx, query.Source)
	if err != nil {
		return nil, err
	}
	stages := make([]metrics.FunnelStage, 0, len(fixtures))
	for _, fixture := range fixtures {
		stage, err := metrics.NewFunnelStage(fixture.Name, fixture.Count)
		if err != nil {
			return nil, fmt.Errorf("analytics: funnel %s: %w", query.Source, err)
		}
		stages = append(stages, stage)
	}
	return stages, nil
}

// NewCohortRepository adapts the analytics client for cohort widgets.
func NewCohortRepository(client CohortClient) dashboard.CohortRepository {
	return &cohortRepository{client: client}
}

type cohortRepository struct {
	client CohortClient
}

func (r *cohortRepository) FetchCohorts(ctx context.Context, query dashboard.MetricQuery) ([]metrics.Cohort, error) {
	fixtures, err := r.client.Cohorts(ctx, query.Source)
	if err != nil {
		return nil, err
	}
	cohorts := make([]metrics.Cohort, 0, len(fixtures))
	for _, fixture := range fixtures {
		period, err := metrics.ParsePeriod(fixture.Period)
		if err != nil {
			return nil, fmt.Errorf("analytics: cohorts %s: %w", query.Source, err)
		}
		cohort, err := metrics.NewCohort(period, fixture.New, fixture.Retained)
		if err != nil {
			return nil, fmt.Errorf("analytics: cohorts %s: %w", query.Source, err)
		}
		cohorts = append(cohorts, cohort)
	}
	return cohorts, nil
}

// NewRevenueRepository adapts the analytics client for revenue widgets.
func NewRevenueRepository(client RevenueClient) dashboard.RevenueRepository {
	return &revenueRepository{client: client}
}

type revenueRepository struct {
	client RevenueClient
}

func (r *revenueRepository) FetchRevenue(ctx context.Context, query dashboard.MetricQuery) (dashboard.RevenueRecord, error) {
	fixture, err := r.client.Revenue(ctx, query.Source)
	if err != nil {
		return dashboard.RevenueRecord{}, err
	}
	revenue, err := metrics.NewMonetaryAggregate(fixture.Total, fixture.Users)
	if err != nil {
		return dashboard.RevenueRecord{}, fmt.Errorf("analytics: revenue %s: %w", query.Source, err)
	}
	orderRevenue := fixture.OrderRevenue
	if orderRevenue == 0 {
		orderRevenue = fixture.Total
	}
	orders, err := metrics.NewMonetaryAggregate(orderRevenue, fixture.Orders)
	if err != nil {
		return dashboard.RevenueRecord{}, fmt.Errorf("analytics: revenue %s orders: %w", query.Source, err)
	}
	segments := make([]metrics.Segment, 0, len(fixture.Segments))
	for _, s := range fixture.Segments {
		segments = append(segments, metrics.Segment{
			Name:                   s.Name,
			AverageOrderValue:      s.AverageOrderValue,
			PurchaseFrequency:      s.PurchaseFrequency,
			CustomerLifespanMonths: s.LifespanMonths,
		})
	}
	return dashboard.RevenueRecord{
		Revenue:         revenue,
		PayingUsers:     fixture.Paying,
		PreviousRevenue: fixture.Previous,
		Orders:          orders,
		Segments:        segments,
	}, nil
}

// NewFinancialsRepository joins margins and investments sharing a dataset
// name. Either half may be absent, but not both; absent halves are flagged,
// never zero-filled.
func NewFinancialsRepository(client FinancialsClient) dashboard.FinancialsRepository {
	return &financialsRepository{client: client}
}

type financialsRepository struct {
	client FinancialsClient
}

func (r *financialsRepository) FetchFinancials(ctx context.Context, query dashboard.MetricQuery) (dashboard.FinancialsRecord, error) {
	margins, marginErr := r.client.Margins(ctx, query.Source)
	if marginErr != nil && !errors.Is(marginErr, ErrNotFound) {
		return dashboard.FinancialsRecord{}, marginErr
	}
	investment, investErr := r.client.Investment(ctx, query.Source)
	if investErr != nil && !errors.Is(investErr, ErrNotFound) {
		return dashboard.FinancialsRecord{}, investErr
	}
	if marginErr != nil && investErr != nil {
		return dashboard.FinancialsRecord{}, errors.Join(marginErr, investErr)
	}
	record := dashboard.FinancialsRecord{}
	if marginErr == nil {
		record.Margins = metrics.MarginInput{
			Revenue:           margins.Revenue,
			CostOfGoodsSold:   margins.COGS,
			OperatingExpenses: margins.Opex,
			TotalExpenses:     margins.TotalExpenses,
		}
		record.HasMargins = true
	}
	if investErr == nil {
		record.Investment = investment.Investment
		record.Value = investment.Value
		record.HasInvestment = true
	}
	return record, nil
}

// NewScoreRepository adapts the analytics client for score widgets.
func NewScoreRepository(client ScoreClient) dashboard.ScoreRepository {
	return &scoreRepository{client: client}
}

type scoreRepository struct {
	client ScoreClient
}

func (r *scoreRepository) FetchScore(ctx context.Context, query dashboard.MetricQuery) (dashboard.ScoreRecord, error) {
	fixture, err := r.client.Score(ctx, query.Source)
	if err != nil {
		return dashboard.ScoreRecord{}, err
	}
	record := dashboard.ScoreRecord{Name: query.Source, Value: fixture.Value}
	if fixture.Previous != nil {
		record.Previous = *fixture.Previous
		record.HasPrevious = true
	}
	return record, nil
}
