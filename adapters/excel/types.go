package excel

// RawRowData represents a row of raw spreadsheet data as header/value pairs
type RawRowData map[string]string

// ExcelData represents a complete sheet read from an Excel or CSV file
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}

// Sheet names written by the exporter
const (
	SheetSummary      = "Summary"
	SheetTrials       = "Trials"
	SheetFailureLoads = "FailureLoads"
	SheetHistogram    = "Histogram"
)
