// Package input converts user-entered text into the numeric inputs of a
// simulation. Malformed text is reported as a parse error here so the core
// packages only ever see numbers.
package input

import (
	"math"
	"strconv"
	"strings"

	"bridgesim/domain/core"
	"bridgesim/domain/reliability"
)

// ParseFloat parses a finite real number
func ParseFloat(field, text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, core.NewParseError(field, text, strconv.ErrSyntax)
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, core.NewParseError(field, text, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, core.NewParseError(field, text, strconv.ErrRange)
	}
	return v, nil
}

// ParseTrialCount parses a positive integer trial count
func ParseTrialCount(text string) (int, error) {
	trimmed := strings.TrimSpace(text)
	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, core.NewParseError("trial count", text, err)
	}
	if n <= 0 {
		return 0, core.NewInvalidInputError("trial count", "must be a positive integer")
	}
	return n, nil
}

// ParseValues parses a comma separated list such as "1, 2.5, 3".
func ParseValues(text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, core.NewInvalidInputError("values", "must not be empty")
	}
	parts := strings.Split(text, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := ParseFloat("value", part)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// ResolveStdDev returns the parsed standard deviation, or 5% of mean when text is blank.
func ResolveStdDev(field string, mean float64, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return reliability.DefaultStdDev(mean), nil
	}
	return ParseFloat(field, text)
}

// ScenarioText is the raw text of the six distribution fields.
type ScenarioText struct {
	LengthMean     string
	LengthStdDev   string
	WidthMean      string
	WidthStdDev    string
	StrengthMean   string
	StrengthStdDev string
}

// ParseScenario parses every field, applying the 5% default to blank standard deviations.
// Defaults are resolved once here, never per trial.
func ParseScenario(t ScenarioText) (reliability.Scenario, error) {
	length, err := ParseParameter("length", t.LengthMean, t.LengthStdDev)
	if err != nil {
		return reliability.Scenario{}, err
	}
	width, err := ParseParameter("width", t.WidthMean, t.WidthStdDev)
	if err != nil {
		return reliability.Scenario{}, err
	}
	strength, err := ParseParameter("material strength", t.StrengthMean, t.StrengthStdDev)
	if err != nil {
		return reliability.Scenario{}, err
	}
	return reliability.Scenario{Length: length, Width: width, Strength: strength}, nil
}

// ParseParameter parses one mean and its optional standard deviation.
func ParseParameter(name, meanText, stdDevText string) (reliability.DistributionParameter, error) {
	mean, err := ParseFloat(name+" mean", meanText)
	if err != nil {
		return reliability.DistributionParameter{}, err
	}
	sd, err := ResolveStdDev(name+" standard deviation", mean, stdDevText)
	if err != nil {
		return reliability.DistributionParameter{}, err
	}
	return reliability.DistributionParameter{Mean: mean, StdDev: sd}, nil
}
