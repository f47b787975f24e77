// Package reliability holds the value types of the bridge failure model:
// distribution parameters, per-trial records and the aggregate result of a run.
package reliability

import (
	"fmt"
	"math"
	"strings"
)

// DefaultStdDevFraction is applied to a mean when the caller supplies no standard deviation.
const DefaultStdDevFraction = 0.05

// Fixed applied-load distribution, in Newtons.
const (
	LoadMean   = 35000.0
	LoadStdDev = 5000.0
)

// DistributionParameter describes a normal distribution N(Mean, StdDev).
type DistributionParameter struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// NewDistributionParameter builds a parameter, substituting the 5% default when stdDev is nil.
func NewDistributionParameter(mean float64, stdDev *float64) DistributionParameter {
	if stdDev == nil {
		return DistributionParameter{Mean: mean, StdDev: DefaultStdDev(mean)}
	}
	return DistributionParameter{Mean: mean, StdDev: *stdDev}
}

// DefaultStdDev returns 5% of the mean's magnitude.
func DefaultStdDev(mean float64) float64 {
	return math.Abs(mean) * DefaultStdDevFraction
}

// Validate reports whether the parameter can be sampled from.
func (p DistributionParameter) Validate(name string) error {
	if math.IsNaN(p.Mean) || math.IsInf(p.Mean, 0) {
		return fmt.Errorf("%s mean must be finite, got %v", name, p.Mean)
	}
	if math.IsNaN(p.StdDev) || math.IsInf(p.StdDev, 0) {
		return fmt.Errorf("%s standard deviation must be finite, got %v", name, p.StdDev)
	}
	if p.StdDev < 0 {
		return fmt.Errorf("%s standard deviation must be non-negative, got %v", name, p.StdDev)
	}
	return nil
}

func (p DistributionParameter) String() string {
	return fmt.Sprintf("N(%g, %g)", p.Mean, p.StdDev)
}

// LoadDistribution is the applied-load distribution. It is a property of the model, not an input.
var LoadDistribution = DistributionParameter{Mean: LoadMean, StdDev: LoadStdDev}

// Scenario groups the three sampled structural parameters of a run.
type Scenario struct {
	Length   DistributionParameter `json:"length"`
	Width    DistributionParameter `json:"width"`
	Strength DistributionParameter `json:"strength"`
}

// Validate checks every parameter of the scenario.
func (s Scenario) Validate() error {
	if err := s.Length.Validate("length"); err != nil {
		return err
	}
	if err := s.Width.Validate("width"); err != nil {
		return err
	}
	return s.Strength.Validate("strength")
}

// Trial is one independent draw of every random variable and the stress comparison.
type Trial struct {
	Index      int     `json:"index"`
	Length     float64 `json:"length"`
	Width      float64 `json:"width"`
	Strength   float64 `json:"strength"`
	Load       float64 `json:"load"`
	Stress     float64 `json:"stress"`
	Failed     bool    `json:"failed"`
	Degenerate bool    `json:"degenerate"`
}

// Area is the cross-section used by the stress model.
func (t Trial) Area() float64 {
	return t.Length * t.Width
}

// SimulationResult is the aggregate output of one estimator run. It is not modified after return.
type SimulationResult struct {
	TrialCount         int       `json:"trial_count"`
	FailureCount       int       `json:"failure_count"`
	FailureProbability float64   `json:"failure_probability"`
	FailureLoads       []float64 `json:"failure_loads"`
	DegenerateCount    int       `json:"degenerate_count"`

	// Trials is populated only when the caller asked for per-trial records.
	Trials []Trial `json:"trials,omitempty"`
}

// ValidTrials is the number of trials whose area was positive.
func (r *SimulationResult) ValidTrials() int {
	return r.TrialCount - r.DegenerateCount
}

// Safe reports that no trial failed.
func (r *SimulationResult) Safe() bool {
	return r.FailureCount == 0
}

// StressUnit selects how load/area is expressed before comparing against strength.
type StressUnit string

const (
	// StressUnitPascal compares N/m² directly against strength.
	StressUnitPascal StressUnit = "pa"
	// StressUnitMegapascal converts N/m² to MPa so strength can be given in MPa.
	StressUnitMegapascal StressUnit = "mpa"
)

// Scale returns the multiplier applied to load/area.
func (u StressUnit) Scale() (float64, error) {
	switch StressUnit(strings.ToLower(string(u))) {
	case StressUnitPascal, "":
		return 1, nil
	case StressUnitMegapascal:
		return 1e-6, nil
	default:
		return 0, fmt.Errorf("unknown stress unit %q", string(u))
	}
}
