package models

// Default values for summary fields that no report line matched
const (
	DefaultUnknown      = "Unknown"
	DefaultNoMedicines  = "None mentioned"
	DefaultOtherDetails = ""
)

// Summary is the structured excerpt parsed out of a report's text
type Summary struct {
	Date      string `json:"date"`
	Diagnosis string `json:"diagnosis"`
	Medicines string `json:"medicines"`
	Other     string `json:"other"`
}

// ReportSummary is one entry of the summary index. Filename matches a raw
// report file stored next to the index.
type ReportSummary struct {
	Filename string  `json:"filename"`
	Summary  Summary `json:"summary"`
}

// DefaultSummary returns a summary with every field at its default
func DefaultSummary() Summary {
	return Summary{
		Date:      DefaultUnknown,
		Diagnosis: DefaultUnknown,
		Medicines: DefaultNoMedicines,
		Other:     DefaultOtherDetails,
	}
}

// CheckupAnalysis projects recent summaries into parallel histories
type CheckupAnalysis struct {
	ReportsAnalyzed  int      `json:"reports_analyzed"`
	DiagnosesHistory []string `json:"diagnoses_history"`
	SymptomsHistory  []string `json:"symptoms_history"`
	MedicinesHistory []string `json:"medicines_history"`
	Message          string   `json:"message"`
}
