package domain

import (
	"fmt"
	"strings"
)

// SummaryTitle returns the header written above the summary of a version
func SummaryTitle(driverType, version string) string {
	return fmt.Sprintf("%s CPP DRIVER VERSION %s", strings.ToUpper(driverType), version)
}

// Summary renders the plain text summary of an outcome
func Summary(outcome TestOutcome) string {
	failedTests := ""
	if outcome.Failed > 0 {
		failedTests = "Failed tests:\n\t" + strings.Join(outcome.FailedTests, "\n\t") + "\n"
	}
	return fmt.Sprintf("\nRunning tests: %d\nRan tests: %d\nPassed: %d\nFailed: %d\n%sReturned code: %d\n\n",
		outcome.Planned, outcome.Ran, outcome.Passed, outcome.Failed, failedTests, outcome.ExitCode)
}
