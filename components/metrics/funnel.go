package metrics

// FunnelStageResult carries the derived ratios for one funnel stage.
type FunnelStageResult struct {
	Index                  int     `json:"index" yaml:"index"`
	Name                   string  `json:"name" yaml:"name"`
	Count                  int     `json:"count" yaml:"count"`
	PercentageOfTop        float64 `json:"percentage_of_top" yaml:"percentage_of_top"`
	ConversionFromPrevious float64 `json:"conversion_from_previous" yaml:"conversion_from_previous"`
	DropoffFromPrevious    float64 `json:"dropoff_from_previous" yaml:"dropoff_from_previous"`
}

// FunnelAnalysis is the output of AnalyzeFunnel.
type FunnelAnalysis struct {
	Stages                []FunnelStageResult `json:"stages" yaml:"stages"`
	OverallConversionRate float64             `json:"overall_conversion_rate" yaml:"overall_conversion_rate"`
	worstIndex            int
}

// AnalyzeFunnel computes per-stage conversion and drop-off. The first stage is
// the top-of-funnel denominator.
func AnalyzeFunnel(stages []FunnelStage) (FunnelAnalysis, error) {
	if len(stages) == 0 {
		return FunnelAnalysis{}, rangeError("funnel stage count", 0)
	}
	for _, stage := range stages {
		if err := stage.Validate(); err != nil {
			return FunnelAnalysis{}, err
		}
	}

	top := float64(stages[0].Count)
	results := make([]FunnelStageResult, len(stages))
	results[0] = FunnelStageResult{
		Index:                  0,
		Name:                   stages[0].Name,
		Count:                  stages[0].Count,
		PercentageOfTop:        100,
		ConversionFromPrevious: 100,
		DropoffFromPrevious:    0,
	}

	worst := -1
	for i := 1; i < len(stages); i++ {
		conversion := Percentage(float64(stages[i].Count), float64(stages[i-1].Count))
		results[i] = FunnelStageResult{
			Index:                  i,
			Name:                   stages[i].Name,
			Count:                  stages[i].Count,
			PercentageOfTop:        Percentage(float64(stages[i].Count), top),
			ConversionFromPrevious: conversion,
			// derived, not divided again, so conversion+dropoff is exactly 100
			DropoffFromPrevious: 100 - conversion,
		}
		// strict comparison keeps the earliest stage on ties
		if worst < 0 || results[i].DropoffFromPrevious > results[worst].DropoffFromPrevious {
			worst = i
		}
	}

	return FunnelAnalysis{
		Stages:                results,
		OverallConversionRate: Percentage(float64(stages[len(stages)-1].Count), top),
		worstIndex:            worst,
	}, nil
}

// WorstDropoffStage returns the stage after the first with the largest
// drop-off. It reports false for single-stage funnels.
func (a FunnelAnalysis) WorstDropoffStage() (FunnelStageResult, bool) {
	if a.worstIndex <= 0 || a.worstIndex >= len(a.Stages) {
		return FunnelStageResult{}, false
	}
	return a.Stages[a.worstIndex], true
}

// StageByName returns the first stage with the given name.
func (a FunnelAnalysis) StageByName(name string) (FunnelStageResult, bool) {
	for _, stage := range a.Stages {
		if stage.Name == name {
			return stage, true
		}
	}
	return FunnelStageResult{}, false
}
