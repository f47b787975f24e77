package app

import (
	"context"
	"io"
	"testing"

	"bridgesim/adapters/rng"
	"bridgesim/domain/core"
	"bridgesim/domain/reliability"
	"bridgesim/internal"
	"bridgesim/internal/config"
	"bridgesim/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *SimulationService {
	defaults := config.SimulationConfig{
		Trials:        1000,
		Seed:          42,
		HistogramBins: 30,
		StressUnit:    reliability.StressUnitPascal,
		SweepWorkers:  2,
	}
	return NewSimulationService(rng.NewSeededAdapter(), defaults, internal.NewLoggerTo(io.Discard, internal.LogLevelError))
}

func scenario(strengthMean, strengthSD float64) reliability.Scenario {
	return reliability.Scenario{
		Length:   reliability.DistributionParameter{Mean: 10, StdDev: 0.5},
		Width:    reliability.DistributionParameter{Mean: 2, StdDev: 0.1},
		Strength: reliability.DistributionParameter{Mean: strengthMean, StdDev: strengthSD},
	}
}

func seedPtr(v int64) *int64 { return &v }

func TestRun_ReportsFailures(t *testing.T) {
	svc := newTestService()

	report, err := svc.Run(context.Background(), SimulationRequest{
		Scenario: scenario(1800, 150),
		Trials:   5000,
	})
	require.NoError(t, err)

	res := report.Result
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, int64(42), report.Seed)
	assert.Equal(t, reliability.StressUnitPascal, report.StressUnit)
	assert.Equal(t, reliability.LoadDistribution, report.Load)
	assert.Greater(t, res.FailureCount, 0)
	assert.False(t, report.Safe)
	assert.Len(t, res.FailureLoads, res.FailureCount)

	require.NotNil(t, report.LoadSummary)
	assert.Equal(t, res.FailureCount, report.LoadSummary.Count)
	require.Len(t, report.Histogram, 30)

	binned := 0
	for _, b := range report.Histogram {
		binned += b.Count
	}
	assert.Equal(t, res.FailureCount, binned)

	assert.LessOrEqual(t, report.Interval.Lower, res.FailureProbability)
	assert.GreaterOrEqual(t, report.Interval.Upper, res.FailureProbability)
	assert.Nil(t, res.Trials)
}

func TestRun_SafeBridge(t *testing.T) {
	report, err := newTestService().Run(context.Background(), SimulationRequest{
		Scenario: scenario(1e9, 1),
		Trials:   2000,
	})
	require.NoError(t, err)

	assert.True(t, report.Safe)
	assert.Equal(t, 0.0, report.Result.FailureProbability)
	assert.Nil(t, report.LoadSummary)
	assert.Empty(t, report.Histogram)
}

func TestRun_SeededRunsMatch(t *testing.T) {
	svc := newTestService()
	req := SimulationRequest{Scenario: scenario(1800, 150), Trials: 3000, Seed: seedPtr(7), KeepTrials: true}

	a, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.Result, b.Result)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Len(t, a.Result.Trials, 3000)
}

func TestRun_StressUnitConversion(t *testing.T) {
	report, err := newTestService().Run(context.Background(), SimulationRequest{
		Scenario:   scenario(40, 2),
		Trials:     1000,
		StressUnit: reliability.StressUnitMegapascal,
	})
	require.NoError(t, err)
	assert.True(t, report.Safe)
}

func TestRun_InvalidInput(t *testing.T) {
	svc := newTestService()

	_, err := svc.Run(context.Background(), SimulationRequest{Scenario: scenario(40, 2), Trials: 0})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.True(t, core.IsInvalidInputError(err))

	_, err = svc.Run(context.Background(), SimulationRequest{Scenario: scenario(40, 2), Trials: 10, StressUnit: "psi"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService().Run(ctx, SimulationRequest{Scenario: scenario(40, 2), Trials: 10})
	require.Error(t, err)
	assert.Equal(t, errors.CodeCancelled, errors.GetCode(err))
}

func TestFingerprint_SensitiveToInputs(t *testing.T) {
	base := SimulationRequest{Scenario: scenario(40, 2), Trials: 100, Seed: seedPtr(1), StressUnit: reliability.StressUnitPascal}

	changed := base
	changed.Trials = 101
	assert.NotEqual(t, Fingerprint(base), Fingerprint(changed))

	changed = base
	changed.Seed = seedPtr(2)
	assert.NotEqual(t, Fingerprint(base), Fingerprint(changed))

	changed = base
	changed.RunID = core.NewRunID()
	assert.Equal(t, Fingerprint(base), Fingerprint(changed), "run ID is not an outcome input")
}

func TestSweep_OrderedAndReproducible(t *testing.T) {
	svc := newTestService()
	req := SweepRequest{
		Base: SimulationRequest{Trials: 2000, Seed: seedPtr(11)},
		Scenarios: []NamedScenario{
			{Name: "weak", Scenario: scenario(1000, 50)},
			{Name: "marginal", Scenario: scenario(1800, 150)},
			{Name: "strong", Scenario: scenario(1e9, 1)},
		},
	}

	first, err := svc.Sweep(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, first, 3)

	assert.Equal(t, "weak", first[0].Name)
	assert.Equal(t, "marginal", first[1].Name)
	assert.Equal(t, "strong", first[2].Name)

	assert.Greater(t, first[0].Report.Result.FailureProbability, first[1].Report.Result.FailureProbability)
	assert.True(t, first[2].Report.Safe)

	second, err := svc.Sweep(context.Background(), req)
	require.NoError(t, err)
	for i := range first {
		assert.NotEqual(t, first[i].Report.RunID, second[i].Report.RunID)
		assert.Equal(t, first[i].Report.Result, second[i].Report.Result)
		assert.Equal(t, first[i].Report.Fingerprint, second[i].Report.Fingerprint)
	}
}

func TestSweep_SeedAndNameSelectStream(t *testing.T) {
	svc := newTestService()
	run := func(seed int64, name string) *SimulationReport {
		entries, err := svc.Sweep(context.Background(), SweepRequest{
			Base:      SimulationRequest{Trials: 2000, Seed: seedPtr(seed)},
			Scenarios: []NamedScenario{{Name: name, Scenario: scenario(1800, 150)}},
		})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		return entries[0].Report
	}

	a := run(11, "marginal")
	b := run(11, "marginal")
	assert.Equal(t, a.Result.FailureCount, b.Result.FailureCount)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	renamed := run(11, "other")
	assert.NotEqual(t, a.Fingerprint, renamed.Fingerprint, "scenario name selects the stream")

	reseeded := run(12, "marginal")
	assert.NotEqual(t, a.Fingerprint, reseeded.Fingerprint)
}

func TestSweep_InvalidRequests(t *testing.T) {
	svc := newTestService()

	_, err := svc.Sweep(context.Background(), SweepRequest{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Sweep(context.Background(), SweepRequest{
		Base: SimulationRequest{Trials: 10},
		Scenarios: []NamedScenario{
			{Name: "a", Scenario: scenario(40, 2)},
			{Name: "a", Scenario: scenario(40, 2)},
		},
	})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Sweep(context.Background(), SweepRequest{
		Base:      SimulationRequest{Trials: 0},
		Scenarios: []NamedScenario{{Name: "a", Scenario: scenario(40, 2)}},
	})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
