// Package sampler draws the random variables of one bridge trial from
// independent normal distributions.
package sampler

import (
	"math/rand"

	"bridgesim/domain/reliability"
)

// Sampler wraps a caller-owned generator. It is not safe for concurrent use
// because *rand.Rand is not.
type Sampler struct {
	rng *rand.Rand
}

// New creates a sampler that consumes draws from rng
func New(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Draw returns one sample of N(p.Mean, p.StdDev). Negative values are returned as drawn.
func (s *Sampler) Draw(p reliability.DistributionParameter) float64 {
	return s.rng.NormFloat64()*p.StdDev + p.Mean
}

// Load returns one sample of the fixed applied-load distribution.
func (s *Sampler) Load() float64 {
	return s.Draw(reliability.LoadDistribution)
}

// Draws holds the raw values of one trial before the stress model is applied.
type Draws struct {
	Length   float64
	Width    float64
	Strength float64
	Load     float64
}

// Scenario draws length, width, strength and load, in that order.
func (s *Sampler) Scenario(sc reliability.Scenario) Draws {
	length := s.Draw(sc.Length)
	width := s.Draw(sc.Width)
	strength := s.Draw(sc.Strength)
	return Draws{
		Length:   length,
		Width:    width,
		Strength: strength,
		Load:     s.Load(),
	}
}
