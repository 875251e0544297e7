package models

// ImportResult reports the outcome of a file import. Transactions holds only
// the rows parsed from this file, and Insights is computed over them alone.
type ImportResult struct {
	Format       string        `json:"format"`
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Errors       []string      `json:"errors,omitempty"`
	Transactions []Transaction `json:"transactions"`
	Insights     *Insights     `json:"insights,omitempty"`
	Message      string        `json:"message"`
}

// Import formats
const (
	ImportFormatCSV = "csv"
	ImportFormatOFX = "ofx"
)
