package excel

import (
	"fmt"
	"io"

	"bridgesim/app"
	"bridgesim/internal/errors"

	"github.com/xuri/excelize/v2"
)

// ReportExporter writes a simulation report to an .xlsx workbook
type ReportExporter struct {
	config ExportConfig
}

// NewReportExporter creates an exporter
func NewReportExporter(config ExportConfig) *ReportExporter {
	return &ReportExporter{config: config}
}

// Save writes the workbook to config.FilePath
func (e *ReportExporter) Save(r *app.SimulationReport) error {
	if e.config.FilePath == "" {
		return errors.InvalidInput("export file path is required")
	}
	f, err := e.build(r)
	if err != nil {
		return errors.ExportFailed("xlsx", err)
	}
	defer f.Close()

	if err := f.SaveAs(e.config.FilePath); err != nil {
		return errors.ExportFailed("xlsx", err)
	}
	return nil
}

// Write streams the workbook to w
func (e *ReportExporter) Write(w io.Writer, r *app.SimulationReport) error {
	f, err := e.build(r)
	if err != nil {
		return errors.ExportFailed("xlsx", err)
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return errors.ExportFailed("xlsx", err)
	}
	return nil
}

func (e *ReportExporter) build(r *app.SimulationReport) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, r); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeFailureLoads(f, r); err != nil {
		f.Close()
		return nil, err
	}
	if len(r.Histogram) > 0 {
		if err := writeHistogram(f, r); err != nil {
			f.Close()
			return nil, err
		}
	}
	if e.config.IncludeTrials && len(r.Result.Trials) > 0 {
		if err := e.writeTrials(f, r); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, r *app.SimulationReport) error {
	res := r.Result
	rows := [][]interface{}{
		{"Field", "Value"},
		{"Run ID", r.RunID.String()},
		{"Fingerprint", r.Fingerprint.String()},
		{"Seed", r.Seed},
		{"Stress unit", string(r.StressUnit)},
		{"Length mean (m)", r.Scenario.Length.Mean},
		{"Length std. deviation (m)", r.Scenario.Length.StdDev},
		{"Width mean (m)", r.Scenario.Width.Mean},
		{"Width std. deviation (m)", r.Scenario.Width.StdDev},
		{"Material strength mean", r.Scenario.Strength.Mean},
		{"Material strength std. deviation", r.Scenario.Strength.StdDev},
		{"Load mean (N)", r.Load.Mean},
		{"Load std. deviation (N)", r.Load.StdDev},
		{"Number of iterations", res.TrialCount},
		{"Number of failures", res.FailureCount},
		{"Excluded trials", res.DegenerateCount},
		{"Probability of failure", res.FailureProbability},
		{"Interval lower", r.Interval.Lower},
		{"Interval upper", r.Interval.Upper},
		{"Safe", r.Safe},
	}
	return writeRows(f, SheetSummary, rows)
}

func writeFailureLoads(f *excelize.File, r *app.SimulationReport) error {
	if _, err := f.NewSheet(SheetFailureLoads); err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(r.Result.FailureLoads)+1)
	rows = append(rows, []interface{}{"Failure", "Load (N)"})
	for i, load := range r.Result.FailureLoads {
		rows = append(rows, []interface{}{i + 1, load})
	}
	return writeRows(f, SheetFailureLoads, rows)
}

func writeHistogram(f *excelize.File, r *app.SimulationReport) error {
	if _, err := f.NewSheet(SheetHistogram); err != nil {
		return err
	}
	rows := make([][]interface{}, 0, len(r.Histogram)+1)
	rows = append(rows, []interface{}{"Load from (N)", "Load to (N)", "Frequency"})
	for _, b := range r.Histogram {
		rows = append(rows, []interface{}{b.Lower, b.Upper, b.Count})
	}
	return writeRows(f, SheetHistogram, rows)
}

func (e *ReportExporter) writeTrials(f *excelize.File, r *app.SimulationReport) error {
	if _, err := f.NewSheet(SheetTrials); err != nil {
		return err
	}
	trials := r.Result.Trials
	if e.config.MaxTrialRows > 0 && len(trials) > e.config.MaxTrialRows {
		trials = trials[:e.config.MaxTrialRows]
	}

	rows := make([][]interface{}, 0, len(trials)+1)
	rows = append(rows, []interface{}{"Iteration", "Length (m)", "Width (m)", "Strength", "Load (N)", "Stress", "Failed", "Excluded"})
	for _, t := range trials {
		rows = append(rows, []interface{}{t.Index, t.Length, t.Width, t.Strength, t.Load, t.Stress, t.Failed, t.Degenerate})
	}
	return writeRows(f, SheetTrials, rows)
}
