package analytics

import "context"

// FunnelClient fetches funnel stages by dataset name.
type FunnelClient interface {
	Funnel(ctx context.Context, name string) ([]StageFixture, error)
}

// CohortClient fetches monthly cohorts by dataset name.
type CohortClient interface {
	Cohorts(ctx context.Context, name string) ([]CohortFixture, error)
}

// RevenueClient fetches revenue aggregates by dataset name.
type RevenueClient interface {
	Revenue(ctx context.Context, name string) (RevenueFixture, error)
}

// FinancialsClient fetches margin inputs and investments by dataset name.
type FinancialsClient interface {
	Margins(ctx context.Context, name string) (MarginFixture, error)
	Investment(ctx context.Context, name string) (InvestmentFixture, error)
}

// ScoreClient fetches named scores.
type ScoreClient interface {
	Score(ctx context.Context, name string) (ScoreFixture, error)
}

// Client is a convenience union for sources that serve every dataset kind.
type Client interface {
	FunnelClient
	CohortClient
	RevenueClient
	FinancialsClient
	ScoreClient
}
