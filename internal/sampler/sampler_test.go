package sampler

import (
	"math"
	"math/rand"
	"testing"

	"bridgesim/domain/reliability"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraw_ZeroStdDevReturnsMean(t *testing.T) {
	s := New(rand.New(rand.NewSource(1)))
	for i := 0; i < 10; i++ {
		assert.Equal(t, 12.5, s.Draw(reliability.DistributionParameter{Mean: 12.5}))
	}
}

func TestDraw_MomentsMatchParameters(t *testing.T) {
	s := New(rand.New(rand.NewSource(42)))
	p := reliability.DistributionParameter{Mean: 10, StdDev: 0.5}

	samples := make([]float64, 50000)
	for i := range samples {
		samples[i] = s.Draw(p)
	}

	mean, err := stats.Mean(samples)
	require.NoError(t, err)
	sd, err := stats.StandardDeviation(samples)
	require.NoError(t, err)

	assert.InDelta(t, 10, mean, 0.02)
	assert.InDelta(t, 0.5, sd, 0.02)
}

func TestDraw_SuccessiveCallsDiffer(t *testing.T) {
	s := New(rand.New(rand.NewSource(3)))
	p := reliability.DistributionParameter{Mean: 0, StdDev: 1}
	assert.NotEqual(t, s.Draw(p), s.Draw(p))
}

func TestDraw_NegativeSamplesPassThrough(t *testing.T) {
	s := New(rand.New(rand.NewSource(5)))
	p := reliability.DistributionParameter{Mean: 0.1, StdDev: 10}

	sawNegative := false
	for i := 0; i < 1000 && !sawNegative; i++ {
		sawNegative = s.Draw(p) < 0
	}
	assert.True(t, sawNegative, "expected negative draws to be returned unmodified")
}

func TestLoad_UsesFixedDistribution(t *testing.T) {
	s := New(rand.New(rand.NewSource(11)))

	samples := make([]float64, 20000)
	for i := range samples {
		samples[i] = s.Load()
	}
	mean, _ := stats.Mean(samples)
	sd, _ := stats.StandardDeviation(samples)

	assert.InDelta(t, reliability.LoadMean, mean, 150)
	assert.InDelta(t, reliability.LoadStdDev, sd, 150)
}

func TestScenario_DrawOrder(t *testing.T) {
	sc := reliability.Scenario{
		Length:   reliability.DistributionParameter{Mean: 10, StdDev: 0.5},
		Width:    reliability.DistributionParameter{Mean: 2, StdDev: 0.1},
		Strength: reliability.DistributionParameter{Mean: 40, StdDev: 2},
	}

	got := New(rand.New(rand.NewSource(99))).Scenario(sc)

	ref := rand.New(rand.NewSource(99))
	want := Draws{
		Length:   ref.NormFloat64()*0.5 + 10,
		Width:    ref.NormFloat64()*0.1 + 2,
		Strength: ref.NormFloat64()*2 + 40,
		Load:     ref.NormFloat64()*reliability.LoadStdDev + reliability.LoadMean,
	}
	assert.Equal(t, want, got)
	assert.False(t, math.IsNaN(got.Load))
}
