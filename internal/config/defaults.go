package config

const (
	// DefaultDriverType is the driver flavour tested when none is given
	DefaultDriverType = "scylla"
	// DefaultVersionsRoot holds one directory per driver type with per-version configuration
	DefaultVersionsRoot = "versions"
	// DefaultBuildDir is the build directory inside the driver checkout
	DefaultBuildDir = "build"
	// DefaultTestBinary is the integration test binary produced by the build
	DefaultTestBinary = "cassandra-integration-tests"
	// DefaultOutputJSONFile is the default output JSON file name
	DefaultOutputJSONFile = "matrix-results.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultEnvFile is loaded before reading environment variables
	DefaultEnvFile = ".env"
	// DefaultLogLevel is the zerolog level used when none is given
	DefaultLogLevel = "info"
	// DefaultSMTPPort is used when SMTP_PORT is unset
	DefaultSMTPPort = 25
)

// DefaultVersions are tested when no --versions flag is given
var DefaultVersions = []string{"master"}
