package report

import (
	"bytes"
	"strings"
	"testing"

	"bridgesim/app"
	"bridgesim/domain/core"
	"bridgesim/domain/reliability"
	"bridgesim/internal/statistics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(failures bool) *app.SimulationReport {
	r := &app.SimulationReport{
		RunID: core.RunID("run-1"),
		Scenario: reliability.Scenario{
			Length:   reliability.DistributionParameter{Mean: 10, StdDev: 0.5},
			Width:    reliability.DistributionParameter{Mean: 2, StdDev: 0.1},
			Strength: reliability.DistributionParameter{Mean: 40, StdDev: 2},
		},
		Load:        reliability.LoadDistribution,
		Seed:        42,
		StressUnit:  reliability.StressUnitMegapascal,
		Fingerprint: core.NewHash([]byte("x")),
		Interval:    statistics.Interval{Lower: 0, Upper: 0.01, Confidence: 0.95},
		Result: &reliability.SimulationResult{
			TrialCount:   4,
			FailureLoads: []float64{},
			Trials: []reliability.Trial{
				{Index: 1, Length: 10, Width: 2, Strength: 40, Load: 35000},
				{Index: 2, Length: -1, Width: 2, Strength: 40, Load: 36000, Degenerate: true},
				{Index: 3, Length: 10, Width: 2, Strength: 40, Load: 34000},
				{Index: 4, Length: 10, Width: 2, Strength: 40, Load: 33000},
			},
			DegenerateCount: 1,
		},
		Safe: true,
	}
	if failures {
		r.Safe = false
		r.Result.FailureCount = 1
		r.Result.FailureProbability = 0.25
		r.Result.FailureLoads = []float64{35000}
		r.Result.Trials[0].Failed = true
		r.LoadSummary = &statistics.Summary{Count: 1, Mean: 35000, Min: 35000, Max: 35000, Median: 35000}
		r.Histogram = []statistics.Bin{{Lower: 34999.5, Upper: 35000.5, Count: 1}}
	}
	return r
}

func TestMarkdown_SafeBridge(t *testing.T) {
	md := Markdown(sampleReport(false), Options{IncludeMaterials: true})

	assert.Contains(t, md, "Probability of Failure: 0.00%")
	assert.Contains(t, md, "The bridge is safe!")
	assert.Contains(t, md, "Material strength (MPa) | 40 | 2 |")
	assert.Contains(t, md, "Excluded trials (non-positive area): 1")
	assert.Contains(t, md, "| Steel | 300-500 MPa (yield strength) |")
	assert.NotContains(t, md, "Distribution of Failure Loads")
	assert.NotContains(t, md, "Bridge Parameters Table")
}

func TestMarkdown_FailuresAndTrialTable(t *testing.T) {
	md := Markdown(sampleReport(true), Options{MaxTrialRows: 2})

	assert.Contains(t, md, "Number of Failures: 1")
	assert.Contains(t, md, "Probability of Failure: 25.00%")
	assert.NotContains(t, md, "The bridge is safe!")
	assert.Contains(t, md, "| 34999.50 | 35000.50 | 1 |")
	assert.Contains(t, md, "| 1 | 10.00 | 2.00 | 40.00 | 35000.00 | yes |")
	assert.Contains(t, md, "| 2 | -1.00 | 2.00 | 40.00 | 36000.00 | excluded |")
	assert.Contains(t, md, "2 more trials not shown.")
}

func TestHTML(t *testing.T) {
	out := string(HTML(Markdown(sampleReport(true), Options{})))

	assert.True(t, strings.Contains(out, "<html"), "expected a complete page")
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Bridge Failure Probability Simulation")
}

func TestWrite(t *testing.T) {
	var md, page bytes.Buffer
	require.NoError(t, Write(&md, sampleReport(false), Options{}, false))
	require.NoError(t, Write(&page, sampleReport(false), Options{}, true))

	assert.True(t, strings.HasPrefix(md.String(), "# Bridge Failure Probability Simulation"))
	assert.Contains(t, page.String(), "<h1")
}
