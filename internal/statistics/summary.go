// Package statistics provides the descriptive statistics used alongside the
// estimator: mean, population standard deviation, summaries, histograms and
// a confidence interval for the failure probability.
package statistics

import (
	"math"
	"sort"

	"bridgesim/domain/core"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

func requireValues(values []float64) error {
	if len(values) == 0 {
		return core.NewInvalidInputError("values", "must not be empty")
	}
	return nil
}

// Mean returns the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if err := requireValues(values); err != nil {
		return 0, err
	}
	return stats.Mean(values)
}

// StandardDeviation returns the population standard deviation (divisor N).
// A single observation yields 0.
func StandardDeviation(values []float64) (float64, error) {
	if err := requireValues(values); err != nil {
		return 0, err
	}
	return stats.StandardDeviationPopulation(values)
}

// Summary describes a sample of observations
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// Summarize computes a Summary; empty input is invalid.
func Summarize(values []float64) (Summary, error) {
	if err := requireValues(values); err != nil {
		return Summary{}, err
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{}, err
	}
	stdDev, err := stats.StandardDeviationPopulation(values)
	if err != nil {
		return Summary{}, err
	}
	min, err := stats.Min(values)
	if err != nil {
		return Summary{}, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return Summary{}, err
	}
	median, err := stats.Median(values)
	if err != nil {
		return Summary{}, err
	}

	return Summary{
		Count:  len(values),
		Mean:   mean,
		StdDev: stdDev,
		Min:    min,
		Max:    max,
		Median: median,
	}, nil
}

// Bin is one equal-width histogram bucket covering [Lower, Upper).
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram splits values into bins equal-width buckets spanning [min, max].
// The maximum falls in the last bucket.
func Histogram(values []float64, bins int) ([]Bin, error) {
	if err := requireValues(values); err != nil {
		return nil, err
	}
	if bins <= 0 {
		return nil, core.NewInvalidInputError("bins", "must be positive")
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	upper := dividers[bins]
	// stat.Histogram treats the last divider as exclusive.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)

	out := make([]Bin, bins)
	for i := range out {
		out[i] = Bin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Upper = upper
	return out, nil
}

// Interval is a closed probability interval.
type Interval struct {
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
}

// ProportionInterval returns the Wilson score interval for successes out of n.
func ProportionInterval(successes, n int, confidence float64) (Interval, error) {
	if n <= 0 {
		return Interval{}, core.NewInvalidInputError("trial count", "must be positive")
	}
	if successes < 0 || successes > n {
		return Interval{}, core.NewInvalidInputError("successes", "must lie in [0, n]")
	}
	if !(confidence > 0 && confidence < 1) {
		return Interval{}, core.NewInvalidInputError("confidence", "must lie in (0, 1)")
	}

	z := distuv.UnitNormal.Quantile(1 - (1-confidence)/2)
	nf := float64(n)
	p := float64(successes) / nf
	z2 := z * z

	denom := 1 + z2/nf
	center := (p + z2/(2*nf)) / denom
	half := z * math.Sqrt(p*(1-p)/nf+z2/(4*nf*nf)) / denom

	return Interval{
		Lower:      math.Max(0, center-half),
		Upper:      math.Min(1, center+half),
		Confidence: confidence,
	}, nil
}
