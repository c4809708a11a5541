package domain

import "time"

// MatrixResultsMeta contains metadata about a matrix run
type MatrixResultsMeta struct {
	DriverType      string  `json:"driver_type"`
	TotalVersions   int     `json:"total_versions"`
	PassedVersions  int     `json:"passed_versions"`
	FailedVersions  int     `json:"failed_versions"`
	FailedTestCases int     `json:"failed_test_cases"`
	Duration        string  `json:"duration"`
	DurationSeconds float64 `json:"duration_seconds"`
	Status          int     `json:"status"`
	Timestamp       string  `json:"timestamp"`
}

// MatrixResultsOutput is the complete output structure of a matrix run
type MatrixResultsOutput struct {
	Meta     MatrixResultsMeta `json:"meta"`
	Entries  []MatrixEntry     `json:"entries"`
	Failures []TestFailure     `json:"failures"`
}

// NewMatrixResultsOutput builds the saved form of a report
func NewMatrixResultsOutput(report *MatrixReport, duration time.Duration, now time.Time) *MatrixResultsOutput {
	failures := Failures(report)
	failedVersions := len(report.FailedEntries())
	return &MatrixResultsOutput{
		Meta: MatrixResultsMeta{
			DriverType:      report.DriverType,
			TotalVersions:   report.Len(),
			PassedVersions:  report.Len() - failedVersions,
			FailedVersions:  failedVersions,
			FailedTestCases: len(failures),
			Duration:        duration.String(),
			DurationSeconds: duration.Seconds(),
			Status:          report.Status(),
			Timestamp:       now.Format(time.RFC3339),
		},
		Entries:  report.Entries,
		Failures: failures,
	}
}

// Report rebuilds the matrix report from the saved entries
func (o *MatrixResultsOutput) Report() *MatrixReport {
	report := NewMatrixReport(o.Meta.DriverType)
	for _, e := range o.Entries {
		report.Record(e.Version, e.Outcome)
	}
	return report
}
