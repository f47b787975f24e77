// Package estimator runs the Monte Carlo bridge reliability simulation.
//
// Each trial samples length, width, strength and load, computes
// stress = load / (length × width) and counts a failure when stress exceeds
// the sampled strength. Trials whose sampled area is zero or negative are
// classified as degenerate: they never count as failures, but the failure
// probability still divides by the requested trial count.
package estimator

import (
	"math"
	"math/rand"

	"bridgesim/domain/core"
	"bridgesim/domain/reliability"
	"bridgesim/internal/sampler"
)

type options struct {
	keepTrials  bool
	stressScale float64
	cancelled   func() bool
}

// Option configures a single Estimate call
type Option func(*options)

// WithTrialRecords retains every per-trial record on the result, so a caller
// can display the exact draws that produced the probability.
func WithTrialRecords() Option {
	return func(o *options) { o.keepTrials = true }
}

// WithStressScale multiplies load/area before comparing against strength,
// e.g. 1e-6 when strength is given in MPa.
func WithStressScale(scale float64) Option {
	return func(o *options) { o.stressScale = scale }
}

// WithCancel installs a cooperative flag polled between trials. When it
// returns true the run stops and no result is returned.
func WithCancel(cancelled func() bool) Option {
	return func(o *options) { o.cancelled = cancelled }
}

// Estimate runs trialCount sequential trials against rng.
func Estimate(rng *rand.Rand, sc reliability.Scenario, trialCount int, opts ...Option) (*reliability.SimulationResult, error) {
	o := options{stressScale: 1}
	for _, opt := range opts {
		opt(&o)
	}

	if trialCount <= 0 {
		return nil, core.NewInvalidInputError("trial count", "must be a positive integer")
	}
	if rng == nil {
		return nil, core.NewInvalidInputError("random source", "is required")
	}
	if err := sc.Validate(); err != nil {
		return nil, core.NewInvalidInputError("scenario", err.Error())
	}
	if !(o.stressScale > 0) || math.IsInf(o.stressScale, 0) {
		return nil, core.NewInvalidInputError("stress scale", "must be positive and finite")
	}

	s := sampler.New(rng)
	result := &reliability.SimulationResult{
		TrialCount:   trialCount,
		FailureLoads: make([]float64, 0),
	}
	if o.keepTrials {
		result.Trials = make([]reliability.Trial, 0, trialCount)
	}

	for i := 0; i < trialCount; i++ {
		if o.cancelled != nil && o.cancelled() {
			return nil, core.ErrCancelled
		}

		trial := runTrial(s, sc, o.stressScale)
		trial.Index = i + 1

		switch {
		case trial.Degenerate:
			result.DegenerateCount++
		case trial.Failed:
			result.FailureCount++
			result.FailureLoads = append(result.FailureLoads, trial.Load)
		}

		if o.keepTrials {
			result.Trials = append(result.Trials, trial)
		}
	}

	result.FailureProbability = float64(result.FailureCount) / float64(trialCount)
	return result, nil
}

// EstimateFlat is Estimate with the six distribution parameters passed individually.
func EstimateFlat(
	rng *rand.Rand,
	lengthMean, lengthStdDev float64,
	widthMean, widthStdDev float64,
	strengthMean, strengthStdDev float64,
	trialCount int,
	opts ...Option,
) (*reliability.SimulationResult, error) {
	sc := reliability.Scenario{
		Length:   reliability.DistributionParameter{Mean: lengthMean, StdDev: lengthStdDev},
		Width:    reliability.DistributionParameter{Mean: widthMean, StdDev: widthStdDev},
		Strength: reliability.DistributionParameter{Mean: strengthMean, StdDev: strengthStdDev},
	}
	return Estimate(rng, sc, trialCount, opts...)
}

func runTrial(s *sampler.Sampler, sc reliability.Scenario, stressScale float64) reliability.Trial {
	d := s.Scenario(sc)
	trial := reliability.Trial{
		Length:   d.Length,
		Width:    d.Width,
		Strength: d.Strength,
		Load:     d.Load,
	}

	area := d.Length * d.Width
	if area <= 0 {
		trial.Degenerate = true
		return trial
	}

	trial.Stress = d.Load / area * stressScale
	trial.Failed = trial.Stress > d.Strength
	return trial
}
