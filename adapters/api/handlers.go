package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"bridgesim/adapters/excel"
	"bridgesim/app"
	"bridgesim/domain/reliability"
	"bridgesim/internal/errors"
	"bridgesim/internal/report"
	"bridgesim/internal/statistics"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeSimulation(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rep, err := s.service.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleSimulationReport runs a simulation and renders it as ?format=md|html|xlsx
func (s *Server) handleSimulationReport(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "md"
	}
	if format != "md" && format != "html" && format != "xlsx" {
		s.writeError(w, errors.InvalidInput(fmt.Sprintf("unsupported report format %q", format)))
		return
	}

	req, err := s.decodeSimulation(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if format == "xlsx" {
		req.KeepTrials = true
	}

	rep, err := s.service.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	switch format {
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "simulation-"+rep.RunID.String()+".xlsx"))
		if err := excel.NewReportExporter(excel.DefaultExportConfig()).Write(w, rep); err != nil {
			s.logger.Error("xlsx export failed: %v", err)
		}
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := report.Write(w, rep, report.Options{IncludeMaterials: true}, true); err != nil {
			s.logger.Error("html report write failed: %v", err)
		}
	default:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		if err := report.Write(w, rep, report.Options{IncludeMaterials: true}, false); err != nil {
			s.logger.Error("markdown report write failed: %v", err)
		}
	}
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var body SweepRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	req := app.SweepRequest{
		Base: app.SimulationRequest{
			Trials: s.trials(body.Trials),
			Seed:   body.Seed,
		},
	}
	for i, sc := range body.Scenarios {
		scenario, fromMaterial, err := scenarioFromBody(sc.SimulationRequestBody)
		if err != nil {
			s.writeError(w, err)
			return
		}
		requested := sc.StressUnit
		if requested == "" {
			requested = body.StressUnit
		}
		unit := stressUnitFor(requested, fromMaterial)
		if unit == "" {
			unit = s.defaults.StressUnit
		}
		if i > 0 && !strings.EqualFold(string(unit), string(req.Base.StressUnit)) {
			s.writeError(w, errors.InvalidInput(fmt.Sprintf(
				"sweep scenarios mix stress units: %q uses %q, earlier scenarios use %q",
				sc.Name, unit, req.Base.StressUnit)))
			return
		}
		req.Base.StressUnit = unit
		req.Scenarios = append(req.Scenarios, app.NamedScenario{Name: sc.Name, Scenario: scenario})
	}

	entries, err := s.service.Sweep(r.Context(), req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SweepResponse{Entries: entries})
}

func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	var body StatisticsRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}

	mean, err := statistics.Mean(body.Values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sd, err := statistics.StandardDeviation(body.Values)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatisticsResponse{Count: len(body.Values), Mean: mean, StdDev: sd})
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MaterialsResponse{Materials: reliability.Materials()})
}

func (s *Server) handleGetMaterial(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	m, ok := reliability.LookupMaterial(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Code: "NOT_FOUND", Message: fmt.Sprintf("material %q not found", name)})
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) decodeSimulation(w http.ResponseWriter, r *http.Request) (app.SimulationRequest, error) {
	var body SimulationRequestBody
	if err := decodeJSON(w, r, &body); err != nil {
		return app.SimulationRequest{}, err
	}
	scenario, fromMaterial, err := scenarioFromBody(body)
	if err != nil {
		return app.SimulationRequest{}, err
	}
	return app.SimulationRequest{
		Scenario:      scenario,
		Trials:        s.trials(body.Trials),
		Seed:          body.Seed,
		StressUnit:    stressUnitFor(body.StressUnit, fromMaterial),
		HistogramBins: body.HistogramBins,
		KeepTrials:    body.KeepTrials,
	}, nil
}

func (s *Server) trials(v *int) int {
	if v == nil {
		return s.defaults.Trials
	}
	return *v
}

// scenarioFromBody applies the 5% default once, before the run starts. A named
// material supplies the strength mean when none is given; a caller-supplied strength
// std dev still wins. fromMaterial reports that the strength came from the table.
func scenarioFromBody(b SimulationRequestBody) (sc reliability.Scenario, fromMaterial bool, err error) {
	strength := reliability.NewDistributionParameter(b.StrengthMean, b.StrengthStdDev)
	if b.Material != "" {
		m, ok := reliability.LookupMaterial(b.Material)
		if !ok {
			return reliability.Scenario{}, false, errors.InvalidInput(fmt.Sprintf("unknown material %q", b.Material))
		}
		if b.StrengthMean == 0 {
			strength = m.StrengthParameter()
			if b.StrengthStdDev != nil {
				strength.StdDev = *b.StrengthStdDev
			}
			fromMaterial = true
		}
	}
	return reliability.Scenario{
		Length:   reliability.NewDistributionParameter(b.LengthMean, b.LengthStdDev),
		Width:    reliability.NewDistributionParameter(b.WidthMean, b.WidthStdDev),
		Strength: strength,
	}, fromMaterial, nil
}

// stressUnitFor keeps an explicit unit. Otherwise a strength taken from the material
// table, which is in MPa, selects mpa, and anything else leaves the service default.
func stressUnitFor(requested string, fromMaterial bool) reliability.StressUnit {
	if requested != "" {
		return reliability.StressUnit(strings.ToLower(requested))
	}
	if fromMaterial {
		return reliability.StressUnitMegapascal
	}
	return ""
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.ParseError(fmt.Sprintf("malformed request body: %v", err))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.CodeInvalidInput, errors.CodeParseError:
		status = http.StatusBadRequest
	case errors.CodeCancelled:
		status = http.StatusServiceUnavailable
	default:
		s.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}
