package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"bridgesim/domain/core"
	"bridgesim/domain/reliability"
	"bridgesim/internal"
	"bridgesim/internal/config"
	"bridgesim/internal/errors"
	"bridgesim/internal/estimator"
	"bridgesim/internal/statistics"
	"bridgesim/ports"

	"golang.org/x/sync/errgroup"
)

// CodeVersion is recorded in every run fingerprint
const CodeVersion = "v0.1.0"

// Confidence level of the reported failure probability interval
const intervalConfidence = 0.95

// runStream names the generator of a single Run; sweeps use the scenario name instead.
const runStream = "estimate"

// SimulationService runs reliability estimates and assembles their reports
type SimulationService struct {
	rngPort  ports.RNGPort
	defaults config.SimulationConfig
	logger   *internal.Logger
}

// SimulationRequest defines the inputs of one estimator run.
// Zero values fall back to the service defaults.
type SimulationRequest struct {
	RunID         core.RunID             `json:"run_id,omitempty"`
	Scenario      reliability.Scenario   `json:"scenario"`
	Trials        int                    `json:"trials"`
	Seed          *int64                 `json:"seed,omitempty"`
	StressUnit    reliability.StressUnit `json:"stress_unit,omitempty"`
	HistogramBins int                    `json:"histogram_bins,omitempty"`
	KeepTrials    bool                   `json:"keep_trials,omitempty"`
}

// SimulationReport is the complete output of a run
type SimulationReport struct {
	RunID       core.RunID                        `json:"run_id"`
	Scenario    reliability.Scenario              `json:"scenario"`
	Load        reliability.DistributionParameter `json:"load"`
	Seed        int64                             `json:"seed"`
	StressUnit  reliability.StressUnit            `json:"stress_unit"`
	Result      *reliability.SimulationResult     `json:"result"`
	Interval    statistics.Interval               `json:"interval"`
	LoadSummary *statistics.Summary               `json:"failure_load_summary,omitempty"`
	Histogram   []statistics.Bin                  `json:"histogram,omitempty"`
	Safe        bool                              `json:"safe"`
	Fingerprint core.Hash                         `json:"fingerprint"`
	RuntimeMs   int64                             `json:"runtime_ms"`
}

// NewSimulationService creates a simulation service
func NewSimulationService(rngPort ports.RNGPort, defaults config.SimulationConfig, logger *internal.Logger) *SimulationService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SimulationService{
		rngPort:  rngPort,
		defaults: defaults,
		logger:   logger,
	}
}

// Run executes a single estimator run and summarises its failure loads
func (s *SimulationService) Run(ctx context.Context, req SimulationRequest) (*SimulationReport, error) {
	req = s.withDefaults(req)

	rng, err := s.rngPort.SeededStream(ctx, runStream, *req.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create random stream")
	}
	return s.execute(ctx, req, runStream, rng)
}

func (s *SimulationService) withDefaults(req SimulationRequest) SimulationRequest {
	if req.RunID.String() == "" {
		req.RunID = core.NewRunID()
	}
	if req.Seed == nil {
		seed := s.defaults.Seed
		req.Seed = &seed
	}
	if req.StressUnit == "" {
		req.StressUnit = s.defaults.StressUnit
	}
	if req.HistogramBins <= 0 {
		req.HistogramBins = s.defaults.HistogramBins
	}
	return req
}

func (s *SimulationService) execute(ctx context.Context, req SimulationRequest, stream string, rng *rand.Rand) (*SimulationReport, error) {
	start := time.Now()
	log := s.logger.With("run_id", req.RunID.String())

	scale, err := req.StressUnit.Scale()
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	opts := []estimator.Option{
		estimator.WithStressScale(scale),
		estimator.WithCancel(func() bool { return ctx.Err() != nil }),
	}
	if req.KeepTrials {
		opts = append(opts, estimator.WithTrialRecords())
	}

	log.Debug("estimating %d trials: length %s, width %s, strength %s, seed %d",
		req.Trials, req.Scenario.Length, req.Scenario.Width, req.Scenario.Strength, *req.Seed)

	result, err := estimator.Estimate(rng, req.Scenario, req.Trials, opts...)
	if err != nil {
		log.Warn("simulation rejected: %v", err)
		return nil, errors.Wrap(err, "simulation failed")
	}

	report := &SimulationReport{
		RunID:       req.RunID,
		Scenario:    req.Scenario,
		Load:        reliability.LoadDistribution,
		Seed:        *req.Seed,
		StressUnit:  req.StressUnit,
		Result:      result,
		Safe:        result.Safe(),
		Fingerprint: fingerprint(req, stream),
	}

	report.Interval, err = statistics.ProportionInterval(result.FailureCount, result.TrialCount, intervalConfidence)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute probability interval")
	}

	if len(result.FailureLoads) > 0 {
		summary, err := statistics.Summarize(result.FailureLoads)
		if err != nil {
			return nil, errors.Wrap(err, "failed to summarise failure loads")
		}
		report.LoadSummary = &summary

		report.Histogram, err = statistics.Histogram(result.FailureLoads, req.HistogramBins)
		if err != nil {
			return nil, errors.Wrap(err, "failed to bin failure loads")
		}
	}

	if result.DegenerateCount > 0 {
		log.Warn("%d of %d trials sampled a non-positive area and were excluded", result.DegenerateCount, result.TrialCount)
	}

	report.RuntimeMs = time.Since(start).Milliseconds()
	log.Info("simulation complete: %d/%d failures, p=%.4f, fingerprint %s",
		result.FailureCount, result.TrialCount, result.FailureProbability, report.Fingerprint.Short())

	return report, nil
}

// Fingerprint hashes every input that determines the outcome of a single Run.
// The run ID is not one of them.
func Fingerprint(req SimulationRequest) core.Hash {
	return fingerprint(req, runStream)
}

// fingerprint includes the stream key, which selects the generator sequence
func fingerprint(req SimulationRequest, stream string) core.Hash {
	seed := int64(0)
	if req.Seed != nil {
		seed = *req.Seed
	}
	return core.ComputeParameterHash(map[string]interface{}{
		"length_mean":      req.Scenario.Length.Mean,
		"length_std_dev":   req.Scenario.Length.StdDev,
		"width_mean":       req.Scenario.Width.Mean,
		"width_std_dev":    req.Scenario.Width.StdDev,
		"strength_mean":    req.Scenario.Strength.Mean,
		"strength_std_dev": req.Scenario.Strength.StdDev,
		"load_mean":        reliability.LoadMean,
		"load_std_dev":     reliability.LoadStdDev,
		"trials":           req.Trials,
		"seed":             seed,
		"stress_unit":      string(req.StressUnit),
		"stream":           stream,
		"code_version":     CodeVersion,
	})
}

// NamedScenario is one entry of a sweep
type NamedScenario struct {
	Name     string               `json:"name"`
	Scenario reliability.Scenario `json:"scenario"`
}

// SweepRequest runs several scenarios that share trial count, seed and unit
type SweepRequest struct {
	Base      SimulationRequest `json:"base"`
	Scenarios []NamedScenario   `json:"scenarios"`
}

// SweepEntry pairs a scenario name with its report
type SweepEntry struct {
	Name   string            `json:"name"`
	Report *SimulationReport `json:"report"`
}

// Sweep runs independent scenarios concurrently. Each scenario draws from its own
// stream derived from the seed and scenario name, so a seeded sweep is reproducible,
// results do not depend on scheduling, and they are returned in request order.
func (s *SimulationService) Sweep(ctx context.Context, req SweepRequest) ([]SweepEntry, error) {
	if len(req.Scenarios) == 0 {
		return nil, errors.InvalidInput("sweep needs at least one scenario")
	}

	base := s.withDefaults(req.Base)
	seen := make(map[string]bool, len(req.Scenarios))
	for _, sc := range req.Scenarios {
		if _, err := core.ParseScenarioID(sc.Name); err != nil {
			return nil, errors.InvalidInput(err.Error())
		}
		if seen[sc.Name] {
			return nil, errors.InvalidInput(fmt.Sprintf("duplicate scenario name %q", sc.Name))
		}
		seen[sc.Name] = true
	}

	entries := make([]SweepEntry, len(req.Scenarios))
	g, gctx := errgroup.WithContext(ctx)
	workers := s.defaults.SweepWorkers
	if workers <= 0 {
		workers = len(req.Scenarios)
	}
	g.SetLimit(workers)

	for i, named := range req.Scenarios {
		i, named := i, named
		g.Go(func() error {
			rng, err := s.rngPort.Stream(gctx, named.Name, *base.Seed)
			if err != nil {
				return errors.Wrapf(err, "scenario %s: failed to create random stream", named.Name)
			}

			scenarioReq := base
			scenarioReq.Scenario = named.Scenario
			report, err := s.execute(gctx, scenarioReq, named.Name, rng)
			if err != nil {
				return errors.Wrapf(err, "scenario %s", named.Name)
			}
			entries[i] = SweepEntry{Name: named.Name, Report: report}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info("sweep %s complete: %d scenarios", base.RunID, len(entries))
	return entries, nil
}
