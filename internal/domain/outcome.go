package domain

// AnomalyExitCode marks an outcome whose pipeline aborted before the test
// binary ran
const AnomalyExitCode = -1

// TestOutcome is the result of running the integration tests for one version
type TestOutcome struct {
	Planned     int      `json:"planned"`      // Tests the binary announced it would run
	Ran         int      `json:"ran"`          // Tests the binary reported as run
	Passed      int      `json:"passed"`       // From the PASSED marker
	Failed      int      `json:"failed"`       // From the FAILED summary marker
	FailedTests []string `json:"failed_tests"` // Distinct failing test names, may differ in length from Failed
	ExitCode    int      `json:"exit_code"`    // Exit status of the test binary
	Error       string   `json:"error,omitempty"`
}

// NewAnomaly returns the zero-count outcome recorded when a version could not
// be tested at all
func NewAnomaly(reason string) TestOutcome {
	if reason == "" {
		reason = "error"
	}
	return TestOutcome{ExitCode: AnomalyExitCode, Error: reason}
}

// IsAnomaly reports whether the outcome was recorded without running tests
func (o TestOutcome) IsAnomaly() bool {
	return o.ExitCode == AnomalyExitCode && o.Planned == 0 && o.Ran == 0 &&
		o.Passed == 0 && o.Failed == 0 && o.Error != ""
}

// Consistent reports whether passed and failed add up to the number of tests ran
func (o TestOutcome) Consistent() bool {
	return o.Passed+o.Failed == o.Ran
}

// Succeeded reports whether the outcome counts as a passing version: nothing
// failed, the binary exited cleanly, at least one test ran and the counts agree.
func (o TestOutcome) Succeeded() bool {
	if o.Failed > 0 || o.ExitCode > 0 || o.Ran == 0 {
		return false
	}
	return o.Consistent()
}
