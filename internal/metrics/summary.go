package metrics

import (
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AreaSummary describes the distribution of grain areas in pixels. All fields
// are 0 for an empty area set.
type AreaSummary struct {
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes area statistics.
func Summarize(areas []int) AreaSummary {
	if len(areas) == 0 {
		return AreaSummary{}
	}

	x := make([]float64, len(areas))
	for i, a := range areas {
		x[i] = float64(a)
	}
	slices.Sort(x)

	s := AreaSummary{
		Total:  floats.Sum(x),
		Mean:   stat.Mean(x, nil),
		Median: stat.Quantile(0.5, stat.Empirical, x, nil),
		Min:    floats.Min(x),
		Max:    floats.Max(x),
	}
	if len(x) > 1 {
		s.StdDev = stat.StdDev(x, nil)
	}
	return s
}
