package domain

// TestFailure is one failing test, or one version that could not be tested
type TestFailure struct {
	Version  string `json:"version"`
	TestName string `json:"test_name"` // Empty when the whole version failed without a named test
	Message  string `json:"message"`
	ExitCode int    `json:"exit_code"`
	Resolved bool   `json:"resolved,omitempty"` // Track if the failure is marked as resolved
}

// Label returns the test name, or a description of the version failure
func (f TestFailure) Label() string {
	if f.TestName != "" {
		return f.TestName
	}
	if f.Message != "" {
		return "(version failed) " + firstLine(f.Message)
	}
	return "(version failed)"
}

// Failures flattens the failing versions of a report: one entry per failed
// test name, or a single entry for a version that failed without any
func Failures(report *MatrixReport) []TestFailure {
	var failures []TestFailure
	for _, e := range report.FailedEntries() {
		if len(e.Outcome.FailedTests) == 0 {
			failures = append(failures, TestFailure{
				Version:  e.Version,
				Message:  e.Outcome.Error,
				ExitCode: e.Outcome.ExitCode,
			})
			continue
		}
		for _, name := range e.Outcome.FailedTests {
			failures = append(failures, TestFailure{
				Version:  e.Version,
				TestName: name,
				Message:  e.Outcome.Error,
				ExitCode: e.Outcome.ExitCode,
			})
		}
	}
	return failures
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
