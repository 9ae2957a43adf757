package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-kpi/components/metrics"
)

// ClassifyInput names a band set and the value to classify against it.
type ClassifyInput struct {
	Bands string
	Value float64
}

type bandSource interface {
	Bands() *metrics.BandCatalog
}

// ClassifyQuery classifies ad-hoc values against the registered band sets.
type ClassifyQuery struct {
	source bandSource
}

// NewClassifyQuery builds the query over a band source such as the dashboard registry.
func NewClassifyQuery(source bandSource) *ClassifyQuery {
	return &ClassifyQuery{source: source}
}

var _ gocommand.Querier[ClassifyInput, metrics.Classification] = (*ClassifyQuery)(nil)

// Query classifies the value.
func (q *ClassifyQuery) Query(_ context.Context, input ClassifyInput) (metrics.Classification, error) {
	if q.source == nil {
		return metrics.Classification{}, errors.New("classify query requires a band source")
	}
	return q.source.Bands().Classify(input.Bands, input.Value)
}
