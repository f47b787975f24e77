package excel

// ExportConfig controls what the workbook exporter writes
type ExportConfig struct {
	FilePath      string `json:"file_path"`
	IncludeTrials bool   `json:"include_trials"`
	// MaxTrialRows caps the Trials sheet; zero means no cap.
	MaxTrialRows int `json:"max_trial_rows"`
}

// DefaultExportConfig returns sensible defaults for workbook export
func DefaultExportConfig() ExportConfig {
	return ExportConfig{
		IncludeTrials: true,
		MaxTrialRows:  1_000_000,
	}
}
