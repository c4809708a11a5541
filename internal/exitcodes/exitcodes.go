// Package exitcodes defines the exit codes of drivermatrix.
package exitcodes

// Every failure, whether a failing version, a configuration error or a broken
// build, exits with Failure.
const (
	Success = 0 // Every version passed
	Failure = 1 // At least one version failed, or the run could not complete
)
