package analytics

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrNotFound reports a dataset name missing from the fixtures.
var ErrNotFound = errors.New("analytics: dataset not found")

// FixtureClient implements Client over in-memory fixtures. Returned values
// are copies, so callers may modify them freely.
type FixtureClient struct {
	mu   sync.RWMutex
	data Fixtures
}

// NewFixtureClient builds a client from decoded fixtures.
func NewFixtureClient(data Fixtures) *FixtureClient {
	return &FixtureClient{data: data}
}

// Replace swaps the dataset, e.g. after reloading the fixture file.
func (c *FixtureClient) Replace(data Fixtures) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
}

// Funnel returns the named funnel stages.
func (c *FixtureClient) Funnel(ctx context.Context, name string) ([]StageFixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	stages, ok := c.data.Funnels[name]
	if !ok {
		return nil, notFound("funnel", name)
	}
	return append([]StageFixture(nil), stages...), nil
}

// Cohorts returns the named cohorts in file order.
func (c *FixtureClient) Cohorts(ctx context.Context, name string) ([]CohortFixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	cohorts, ok := c.data.Cohorts[name]
	if !ok {
		return nil, notFound("cohorts", name)
	}
	return append([]CohortFixture(nil), cohorts...), nil
}

// Revenue returns the named revenue record.
func (c *FixtureClient) Revenue(ctx context.Context, name string) (RevenueFixture, error) {
	if err := ctx.Err(); err != nil {
		return RevenueFixture{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	revenue, ok := c.data.Revenue[name]
	if !ok {
		return RevenueFixture{}, notFound("revenue", name)
	}
	revenue.Segments = append([]SegmentFixture(nil), revenue.Segments...)
	return revenue, nil
}

// Margins returns the named cost basis.
func (c *FixtureClient) Margins(ctx context.Context, name string) (MarginFixture, error) {
	if err := ctx.Err(); err != nil {
		return MarginFixture{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	margins, ok := c.data.Margins[name]
	if !ok {
		return MarginFixture{}, notFound("margins", name)
	}
	return margins, nil
}

// Investment returns the named investment.
func (c *FixtureClient) Investment(ctx context.Context, name string) (InvestmentFixture, error) {
	if err := ctx.Err(); err != nil {
		return InvestmentFixture{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	investment, ok := c.data.Investments[name]
	if !ok {
		return InvestmentFixture{}, notFound("investment", name)
	}
	return investment, nil
}

// Score returns the named score.
func (c *FixtureClient) Score(ctx context.Context, name string) (ScoreFixture, error) {
	if err := ctx.Err(); err != nil {
		return ScoreFixture{}, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	score, ok := c.data.Scores[name]
	if !ok {
		return ScoreFixture{}, notFound("score", name)
	}
	return score, nil
}

func notFound(kind, name string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, kind, name)
}
