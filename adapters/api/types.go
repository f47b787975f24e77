package api

import (
	"bridgesim/app"
	"bridgesim/domain/reliability"
)

// SimulationRequestBody is the JSON body of POST /api/simulations.
// Omitted standard deviations default to 5% of their mean.
type SimulationRequestBody struct {
	LengthMean     float64  `json:"length_mean"`
	LengthStdDev   *float64 `json:"length_std_dev,omitempty"`
	WidthMean      float64  `json:"width_mean"`
	WidthStdDev    *float64 `json:"width_std_dev,omitempty"`
	StrengthMean   float64  `json:"strength_mean"`
	StrengthStdDev *float64 `json:"strength_std_dev,omitempty"`
	Material       string   `json:"material,omitempty"`
	Trials         *int     `json:"trials,omitempty"`
	Seed           *int64   `json:"seed,omitempty"`
	StressUnit     string   `json:"stress_unit,omitempty"`
	HistogramBins  int      `json:"histogram_bins,omitempty"`
	KeepTrials     bool     `json:"keep_trials,omitempty"`
}

// SweepRequestBody is the JSON body of POST /api/sweeps
type SweepRequestBody struct {
	Trials     *int                `json:"trials,omitempty"`
	Seed       *int64              `json:"seed,omitempty"`
	StressUnit string              `json:"stress_unit,omitempty"`
	Scenarios  []SweepScenarioBody `json:"scenarios"`
}

// SweepScenarioBody names one scenario of a sweep
type SweepScenarioBody struct {
	Name string `json:"name"`
	SimulationRequestBody
}

// StatisticsRequestBody is the JSON body of POST /api/statistics
type StatisticsRequestBody struct {
	Values []float64 `json:"values"`
}

// StatisticsResponse reports the mean and population standard deviation
type StatisticsResponse struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// SweepResponse wraps the ordered sweep entries
type SweepResponse struct {
	Entries []app.SweepEntry `json:"entries"`
}

// MaterialsResponse lists the reference materials
type MaterialsResponse struct {
	Materials []reliability.Material `json:"materials"`
}

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
