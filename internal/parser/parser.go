package parser

import "drivermatrix/internal/domain"

// Parser turns the console output of a test binary into an outcome
type Parser interface {
	Parse(stdout, stderr string, exitCode int) domain.TestOutcome
}
