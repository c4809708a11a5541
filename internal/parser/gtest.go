package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/acarl005/stripansi"

	"drivermatrix/internal/domain"
	"drivermatrix/internal/execution"
)

var (
	// Running 12 tests from 3 test cases.
	plannedPattern = regexp.MustCompile(`Running (\d+) tests? from (\d+) test (?:cases?|suites?)`)
	// [  PASSED  ] 10 tests.
	passedPattern = regexp.MustCompile(`\[ {2}PASSED {2}\] (\d+) test`)
	// [  FAILED  ] 2 tests, listed below:
	failedPattern = regexp.MustCompile(`\[ {2}FAILED {2}\] (\d+) test`)
	// [==========] 12 tests from 3 test cases ran. (1234 ms total)
	ranPattern = regexp.MustCompile(`\[==========\] (\d+) tests? from (\d+) test (?:cases?|suites?) ran`)
	// [  FAILED  ] Suite.testX (12 ms)
	failedTestPattern = regexp.MustCompile(`(?m)^\s*\[ {2}FAILED {2}\] ([A-Za-z_][\w/]*\.[\w/]+)`)
)

// GTestParser parses GoogleTest console output
type GTestParser struct{}

// NewGTestParser creates a new GTestParser
func NewGTestParser() *GTestParser {
	return &GTestParser{}
}

// Parse extracts the planned, ran, passed and failed counts from stdout.
// Every marker is optional and a missing one leaves its count at zero. The
// diagnostic stream is kept only when the process exited non-zero.
func (p *GTestParser) Parse(stdout, stderr string, exitCode int) domain.TestOutcome {
	output := normalize(stdout)

	outcome := domain.TestOutcome{
		Planned:  firstCount(plannedPattern, output),
		Passed:   firstCount(passedPattern, output),
		Failed:   firstCount(failedPattern, output),
		Ran:      firstCount(ranPattern, output),
		ExitCode: exitCode,
	}

	if outcome.Failed > 0 {
		outcome.FailedTests = p.FailedTests(output)
	}

	if exitCode != 0 {
		outcome.Error = stderr
	}
	return outcome
}

// ParseProcess parses the result of running the test binary. When the binary
// could not be started the start error stands in for the empty stderr.
func (p *GTestParser) ParseProcess(res execution.ProcessResult) domain.TestOutcome {
	outcome := p.Parse(res.Stdout, res.Stderr, res.ExitCode)
	if res.ExitCode != 0 && strings.TrimSpace(outcome.Error) == "" && res.Err != nil {
		outcome.Error = res.Err.Error()
	}
	return outcome
}

// FailedTests returns the distinct names of failed tests, in the order they
// first appear
func (p *GTestParser) FailedTests(output string) []string {
	output = normalize(output)
	seen := make(map[string]bool)
	var names []string
	for _, match := range failedTestPattern.FindAllStringSubmatch(output, -1) {
		name := match[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

func normalize(s string) string {
	s = stripansi.Strip(s)
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func firstCount(pattern *regexp.Regexp, output string) int {
	match := pattern.FindStringSubmatch(output)
	if len(match) < 2 {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}
