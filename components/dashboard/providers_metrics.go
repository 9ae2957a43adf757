package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-kpi/components/metrics"
)

// MetricQuery selects the dataset a widget reads from the data layer.
type MetricQuery struct {
	Source  string
	Range   string
	Segment string
}

// FunnelRepository loads ordered funnel stages.
type FunnelRepository interface {
	FetchFunnel(ctx context.Context, query MetricQuery) ([]metrics.FunnelStage, error)
}

// CohortRepository loads monthly cohorts ordered oldest first.
type CohortRepository interface {
	FetchCohorts(ctx context.Context, query MetricQuery) ([]metrics.Cohort, error)
}

// RevenueRepository loads revenue aggregates.
type RevenueRepository interface {
	FetchRevenue(ctx context.Context, query MetricQuery) (RevenueRecord, error)
}

// FinancialsRepository loads cost bases and investments.
type FinancialsRepository interface {
	FetchFinancials(ctx context.Context, query MetricQuery) (FinancialsRecord, error)
}

// ScoreRepository loads a single named score.
type ScoreRepository interface {
	FetchScore(ctx context.Context, query MetricQuery) (ScoreRecord, error)
}

// RevenueRecord is revenue over a user base. Revenue.UnitCount is the total
// user count; Orders.UnitCount is the order count.
type RevenueRecord struct {
	Revenue         metrics.MonetaryAggregate
	PayingUsers     int
	PreviousRevenue float64
	Orders          metrics.MonetaryAggregate
	Segments        []metrics.Segment
}

// FinancialsRecord carries margin inputs and an investment outcome. A data
// source may hold only one half; the Has flags say which halves are present.
type FinancialsRecord struct {
	Margins       metrics.MarginInput
	HasMargins    bool
	Investment    float64
	Value         float64
	HasInvestment bool
}

// ScoreRecord is a named score with an optional previous value.
type ScoreRecord struct {
	Name        string
	Value       float64
	Previous    float64
	HasPrevious bool
}

// MetricRepositories groups the data sources for the built-in widgets. Nil
// repositories leave their widgets without a provider.
type MetricRepositories struct {
	Funnels    FunnelRepository
	Cohorts    CohortRepository
	Revenue    RevenueRepository
	Financials FinancialsRepository
	Scores     ScoreRepository
	Retention  metrics.RetentionOptions
}

// RegisterMetricProviders wires providers for every repository supplied.
func RegisterMetricProviders(reg ProviderRegistry, repos MetricRepositories) error {
	retention := repos.Retention
	if retention == (metrics.RetentionOptions{}) {
		retention = metrics.DefaultRetentionOptions()
	}
	providers := map[string]Provider{}
	if repos.Funnels != nil {
		providers[WidgetFunnel] = NewFunnelProvider(repos.Funnels)
	}
	if repos.Cohorts != nil {
		providers[WidgetCohortRetention] = NewCohortRetentionProvider(repos.Cohorts, retention)
	}
	if repos.Revenue != nil {
		providers[WidgetRevenue] = NewRevenueProvider(repos.Revenue)
	}
	if repos.Financials != nil {
		providers[WidgetMargins] = NewMarginsProvider(repos.Financials)
		providers[WidgetROI] = NewROIProvider(repos.Financials)
	}
	if repos.Scores != nil {
		providers[WidgetScore] = NewScoreProvider(repos.Scores)
	}
	for code, provider := range providers {
		if err := reg.RegisterProvider(code, provider); err != nil {
			return fmt.Errorf("dashboard: register provider %s: %w", code, err)
		}
	}
	return nil
}

func extractMetricQuery(config map[string]any) MetricQuery {
	return MetricQuery{
		Source:  stringOr(config["source"], "default"),
		Range:   stringOr(config["range"], "30d"),
		Segment: stringOr(config["segment"], "all users"),
	}
}

func classificationData(class metrics.Classification) map[string]any {
	return map[string]any{
		"level":        class.Level.Key(),
		"category_key": class.CategoryKey,
	}
}

// classifyFloored treats negative values under a zero-floored set as the
// set's lowest level. Margins and ROI go negative when costs exceed returns.
func classifyFloored(bands metrics.BandSet, value float64) (metrics.Classification, error) {
	class, err := bands.Classify(value)
	if err == nil || value >= 0 || len(bands.Bands) == 0 || !errors.Is(err, metrics.ErrConfiguration) {
		return class, err
	}
	if bands.Bands[0].MinInclusive < 0 {
		return class, err
	}
	level := bands.Bands[0].Level
	return metrics.Classification{Level: level, CategoryKey: bands.Key() + "." + level.Key()}, nil
}

type funnelProvider struct {
	repo FunnelRepository
}

// NewFunnelProvider analyzes funnels and classifies the overall conversion rate.
func NewFunnelProvider(repo FunnelRepository) Provider {
	return &funnelProvider{repo: repo}
}

func (p *funnelProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	query := extractMetricQuery(meta.Instance.Configuration)
	stages, err := p.repo.FetchFunnel(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("funnel provider: %w", err)
	}
	analysis, err := metrics.AnalyzeFunnel(stages)
	if err != nil {
		return nil, fmt.Errorf("funnel provider: %w", err)
	}
	bands, err := meta.BandSet("rate")
	if err != nil {
		return nil, fmt.Errorf("funnel provider: %w", err)
	}
	class, err := bands.Classify(analysis.OverallConversionRate)
	if err != nil {
		return nil, fmt.Errorf("funnel provider: %w", err)
	}

	steps := make([]map[string]any, 0, len(analysis.Stages))
	for _, stage := range analysis.Stages {
		steps = append(steps, map[string]any{
			"label":             stage.Name,
			"value":             stage.Count,
			"position":          stage.Index,
			"percentage_of_top": stage.PercentageOfTop,
			"conversion":        stage.ConversionFromPrevious,
			"dropoff":           stage.DropoffFromPrevious,
		})
	}
	data := WidgetData{
		"source":          query.Source,
		"range":           query.Range,
		"segment":         query.Segment,
		"conversion_rate": analysis.OverallConversionRate,
		"steps":           steps,
		"classification":  classificationData(class),
	}
	if worst, ok := analysis.WorstDropoffStage(); ok {
		data["worst_dropoff"] = map[string]any{
			"label":    worst.Name,
			"position": worst.Index,
			"dropoff":  worst.DropoffFromPrevious,
		}
	}
	if goal := floatOr(meta.Instance.Configuration["goal"], 0); goal > 0 {
		data["goal"] = goal
		data["goal_met"] = analysis.OverallConversionRate >= goal
	}
	return data, nil
}

type cohortRetentionProvider struct {
	repo     CohortRepository
	defaults metrics.RetentionOptions
}

// NewCohortRetentionProvider summarizes retention over a configurable window.
func NewCohortRetentionProvider(repo CohortRepository, defaults metrics.RetentionOptions) Provider {
	return &cohortRetentionProvider{repo: repo, defaults: defaults}
}

func (p *cohortRetentionProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	query := extractMetricQuery(cfg)
	opts := metrics.RetentionOptions{
		Window:        intOr(cfg["window"], p.defaults.Window),
		HighThreshold: floatOr(cfg["high_threshold"], p.defaults.HighThreshold),
		LowThreshold:  floatOr(cfg["low_threshold"], p.defaults.LowThreshold),
	}
	cohorts, err := p.repo.FetchCohorts(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("cohort provider: %w", err)
	}
	summary, err := metrics.TrackRetention(cohorts, opts)
	if err != nil {
		return nil, fmt.Errorf("cohort provider: %w", err)
	}
	bands, err := meta.BandSet("rate")
	if err != nil {
		return nil, fmt.Errorf("cohort provider: %w", err)
	}

	rows := make([]map[string]any, 0, len(summary.Cohorts))
	for _, cohort := range summary.Cohorts {
		class, err := bands.Classify(cohort.RetentionRate)
		if err != nil {
			return nil, fmt.Errorf("cohort provider: %w", err)
		}
		rows = append(rows, map[string]any{
			"label":          cohort.Period.String(),
			"size":           cohort.NewCount,
			"retained":       cohort.RetainedCount,
			"retention":      cohort.RetentionRate,
			"classification": classificationData(class),
		})
	}
	overall, err := bands.Classify(summary.AverageRetention)
	if err != nil {
		return nil, fmt.Errorf("cohort provider: %w", err)
	}
	return WidgetData{
		"source":            query.Source,
		"window":            opts.Window,
		"rows":              rows,
		"total_new":         summary.TotalNew,
		"total_retained":    summary.TotalRetained,
		"average_retention": summary.AverageRetention,
		"pooled_retention":  summary.PooledRetention,
		"above_high":        summary.AboveHigh,
		"below_low":         summary.BelowLow,
		"trend":             summary.Trend,
		"classification":    classificationData(overall),
	}, nil
}

type revenueProvider struct {
	repo RevenueRepository
}

// NewRevenueProvider computes per-user revenue metrics. Conversion is
// classified with the widget band set; ARPU and CLV are classified only when
// the instance names currency band sets via arpu_bands / clv_bands.
func NewRevenueProvider(repo RevenueRepository) Provider {
	return &revenueProvider{repo: repo}
}

func (p *revenueProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	cfg := meta.Instance.Configuration
	query := extractMetricQuery(cfg)
	record, err := p.repo.FetchRevenue(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("revenue provider: %w", err)
	}
	summary, err := metrics.UserRevenue(record.Revenue, record.PayingUsers)
	if err != nil {
		return nil, fmt.Errorf("revenue provider: %w", err)
	}
	segments, err := metrics.CLVBySegment(record.Segments)
	if err != nil {
		return nil, fmt.Errorf("revenue provider: %w", err)
	}
	bands, err := meta.BandSet("rate")
	if err != nil {
		return nil, fmt.Errorf("revenue provider: %w", err)
	}
	conversion, err := bands.Classify(summary.ConversionRate)
	if err != nil {
		return nil, fmt.Errorf("revenue provider: %w", err)
	}

	data := WidgetData{
		"source":              query.Source,
		"total_revenue":       summary.TotalRevenue,
		"total_users":         summary.TotalUsers,
		"paying_users":        summary.PayingUsers,
		"arpu":                summary.ARPU,
		"arppu":               summary.ARPPU,
		"conversion_rate":     summary.ConversionRate,
		"average_order_value": metrics.AverageOrderValue(record.Orders),
		"revenue_growth":      metrics.GrowthRate(record.Revenue.Total, record.PreviousRevenue),
		"classification":      classificationData(conversion),
	}
	if name := stringOr(cfg["arpu_bands"], ""); name != "" {
		class, err := meta.Bands.Classify(name, summary.ARPU)
		if err != nil {
			return nil, fmt.Errorf("revenue provider: %w", err)
		}
		data["arpu_classification"] = classificationData(class)
	}

	clvBands := stringOr(cfg["clv_bands"], "")
	rows := make([]map[string]any, 0, len(segments))
	for _, segment := range segments {
		row := map[string]any{"segment": segment.Segment, "clv": segment.CLV}
		if clvBands != "" {
			class, err := meta.Bands.Classify(clvBands, segment.CLV)
			if err != nil {
				return nil, fmt.Errorf("revenue provider: %w", err)
			}
			row["classification"] = classificationData(class)
		}
		rows = append(rows, row)
	}
	data["segments"] = rows
	return data, nil
}

type marginsProvider struct {
	repo FinancialsRepository
}

// NewMarginsProvider computes margins and classifies the net margin.
func NewMarginsProvider(repo FinancialsRepository) Provider {
	return &marginsProvider{repo: repo}
}

func (p *marginsProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	query := extractMetricQuery(meta.Instance.Configuration)
	record, err := p.repo.FetchFinancials(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("margins provider: %w", err)
	}
	if !record.HasMargins {
		return nil, fmt.Errorf("margins provider: %w: no margin inputs for %s", ErrMissingData, query.Source)
	}
	if err := record.Margins.Validate(); err != nil {
		return nil, fmt.Errorf("margins provider: %w", err)
	}
	margins := metrics.Margins(record.Margins)
	bands, err := meta.BandSet("rate")
	if err != nil {
		return nil, fmt.Errorf("margins provider: %w", err)
	}
	data := WidgetData{
		"source":    query.Source,
		"revenue":   record.Margins.Revenue,
		"gross":     margins.Gross,
		"operating": margins.Operating,
		"net":       margins.Net,
	}
	class, err := classifyFloored(bands, margins.Net)
	if err != nil {
		return nil, fmt.Errorf("margins provider: %w", err)
	}
	data["classification"] = classificationData(class)
	return data, nil
}

type roiProvider struct {
	repo FinancialsRepository
}

// NewROIProvider computes ROI and classifies it.
func NewROIProvider(repo FinancialsRepository) Provider {
	return &roiProvider{repo: repo}
}

func (p *roiProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	query := extractMetricQuery(meta.Instance.Configuration)
	record, err := p.repo.FetchFinancials(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("roi provider: %w", err)
	}
	if !record.HasInvestment {
		return nil, fmt.Errorf("roi provider: %w: no investment for %s", ErrMissingData, query.Source)
	}
	if err := metrics.ValidateAmount("investment", record.Investment); err != nil {
		return nil, fmt.Errorf("roi provider: %w", err)
	}
	if err := metrics.ValidateAmount("value", record.Value); err != nil {
		return nil, fmt.Errorf("roi provider: %w", err)
	}
	roi := metrics.ROI(record.Value, record.Investment)
	bands, err := meta.BandSet("rate")
	if err != nil {
		return nil, fmt.Errorf("roi provider: %w", err)
	}
	data := WidgetData{
		"source":     query.Source,
		"investment": record.Investment,
		"value":      record.Value,
		"roi":        roi,
	}
	class, err := classifyFloored(bands, roi)
	if err != nil {
		return nil, fmt.Errorf("roi provider: %w", err)
	}
	data["classification"] = classificationData(class)
	return data, nil
}

type scoreProvider struct {
	repo ScoreRepository
}

// NewScoreProvider classifies a single score with the configured band set.
func NewScoreProvider(repo ScoreRepository) Provider {
	return &scoreProvider{repo: repo}
}

func (p *scoreProvider) Fetch(ctx context.Context, meta WidgetContext) (WidgetData, error) {
	query := extractMetricQuery(meta.Instance.Configuration)
	record, err := p.repo.FetchScore(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("score provider: %w", err)
	}
	bands, err := meta.BandSet("")
	if err != nil {
		return nil, fmt.Errorf("score provider: %w", err)
	}
	class, err := bands.Classify(record.Value)
	if err != nil {
		return nil, fmt.Errorf("score provider: %w", err)
	}
	data := WidgetData{
		"source":         query.Source,
		"name":           record.Name,
		"value":          record.Value,
		"bands":          bands.Name,
		"classification": classificationData(class),
	}
	if record.HasPrevious {
		data["previous"] = record.Previous
		data["change"] = metrics.Delta(record.Value, record.Previous)
	}
	return data, nil
}
