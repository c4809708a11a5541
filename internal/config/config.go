package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// CheckoutPolicy decides what happens to a version whose git checkout fails
type CheckoutPolicy string

const (
	// CheckoutContinue logs the failure and tests whatever the working tree holds
	CheckoutContinue CheckoutPolicy = "continue"
	// CheckoutAbort records an anomaly for the version and moves on
	CheckoutAbort CheckoutPolicy = "abort"
)

// ParseCheckoutPolicy validates a policy name
func ParseCheckoutPolicy(s string) (CheckoutPolicy, error) {
	switch p := CheckoutPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CheckoutContinue, nil
	case CheckoutContinue, CheckoutAbort:
		return p, nil
	default:
		return "", fmt.Errorf("unknown checkout policy %q (expected %q or %q)", s, CheckoutContinue, CheckoutAbort)
	}
}

// MailConfig holds SMTP settings for the matrix report email
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

// Enabled reports whether a report email should be sent
func (m MailConfig) Enabled() bool {
	return m.Host != "" && len(m.To) > 0
}

// Config holds all configuration for the application
type Config struct {
	// Driver checkout and server under test
	DriverDir        string
	ServerInstallDir string
	DriverType       string

	// Versions to test and where their configuration lives
	Versions     []string
	VersionsRoot string

	// Relocatable server version; when set the test binary finds the server
	// through SCYLLA_VERSION instead of --install-dir
	ServerVersion string
	// CQLVersion overrides the --version argument given to the test binary
	CQLVersion string

	// Build layout inside the driver checkout
	BuildDir   string
	TestBinary string

	// Output settings
	OutputJSONFile string
	OutputJSONDir  string
	SummaryFile    string
	JUnitDir       string

	// Pipeline behaviour
	CheckoutPolicy CheckoutPolicy

	// Integrations
	HistoryDSN string
	Mail       MailConfig

	// Console
	LogLevel   string
	NoProgress bool

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	DriverType     string
	Versions       []string
	VersionsRoot   string
	ServerVersion  string
	CQLVersion     string
	SummaryFile    string
	JUnitDir       string
	CheckoutPolicy string
	HistoryDSN     string
	EmailTo        []string
	EnvFile        string
	LogLevel       string
	NoProgress     bool
	OpenFaills     bool
	NameFilter     string
	Limit          int
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		DriverType:     DefaultDriverType,
		VersionsRoot:   DefaultVersionsRoot,
		BuildDir:       DefaultBuildDir,
		TestBinary:     DefaultTestBinary,
		OutputJSONFile: DefaultOutputJSONFile,
		OutputJSONDir:  DefaultOutputJSONDir,
		CheckoutPolicy: CheckoutContinue,
		LogLevel:       DefaultLogLevel,
		Mail:           MailConfig{Port: DefaultSMTPPort},
	}
	cfg.Versions = make([]string, len(DefaultVersions))
	copy(cfg.Versions, DefaultVersions)
	return cfg
}

// Load creates a config from the environment (after loading the env file)
// and applies flags on top
func Load(flags Flags) (*Config, error) {
	cfg := New()
	if err := cfg.Apply(flags); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Apply loads the env file, reads environment variables and applies flag
// overrides. Flags win over the environment.
func (c *Config) Apply(flags Flags) error {
	envFile := flags.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := LoadEnvFile(envFile); err != nil {
		return err
	}
	if err := c.applyEnv(); err != nil {
		return err
	}

	c.Flags = flags
	if flags.DriverType != "" {
		c.DriverType = flags.DriverType
	}
	if versions := SplitList(flags.Versions); len(versions) > 0 {
		c.Versions = versions
	}
	if flags.VersionsRoot != "" {
		c.VersionsRoot = flags.VersionsRoot
	}
	if flags.ServerVersion != "" {
		c.ServerVersion = flags.ServerVersion
	}
	if flags.CQLVersion != "" {
		c.CQLVersion = flags.CQLVersion
	}
	if flags.SummaryFile != "" {
		c.SummaryFile = flags.SummaryFile
	}
	if flags.JUnitDir != "" {
		c.JUnitDir = flags.JUnitDir
	}
	if flags.HistoryDSN != "" {
		c.HistoryDSN = flags.HistoryDSN
	}
	if to := SplitList(flags.EmailTo); len(to) > 0 {
		c.Mail.To = to
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	c.NoProgress = c.NoProgress || flags.NoProgress
	if flags.CheckoutPolicy != "" {
		policy, err := ParseCheckoutPolicy(flags.CheckoutPolicy)
		if err != nil {
			return err
		}
		c.CheckoutPolicy = policy
	}
	return nil
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment. A missing file is not an error. Variables already set in the
// environment are kept.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SCYLLA_VERSION"); v != "" {
		c.ServerVersion = v
	}
	if v := os.Getenv("CQL_CASSANDRA_VERSION"); v != "" {
		c.CQLVersion = v
	}
	if v := os.Getenv("DRIVERMATRIX_VERSIONS_ROOT"); v != "" {
		c.VersionsRoot = v
	}
	if v := os.Getenv("DRIVERMATRIX_HISTORY_DSN"); v != "" {
		c.HistoryDSN = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		c.Mail.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SMTP_PORT %q: %w", v, err)
		}
		c.Mail.Port = port
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.Mail.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		c.Mail.From = v
	}
	return nil
}

// SplitList splits comma separated values, trimming blanks and dropping empty
// entries. Both "a,b" and ["a", "b"] style inputs are accepted.
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GetVersionsRoot returns the absolute configuration root for the driver type
func (c *Config) GetVersionsRoot() string {
	p := filepath.Join(c.VersionsRoot, c.DriverType)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetBuildDir returns the build directory inside the driver checkout
func (c *Config) GetBuildDir() string {
	if filepath.IsAbs(c.BuildDir) {
		return c.BuildDir
	}
	return filepath.Join(c.DriverDir, c.BuildDir)
}

// GetTestBinaryPath returns the path to the integration test binary
func (c *Config) GetTestBinaryPath() string {
	return filepath.Join(c.GetBuildDir(), c.TestBinary)
}

// GetOutputPath returns the full path to the output JSON file.
// Resolves to an absolute path so run and faills always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetJUnitPath returns where the test binary writes its XML report for a
// version, or "" when JUnit output is disabled
func (c *Config) GetJUnitPath(version string) string {
	if c.JUnitDir == "" {
		return ""
	}
	name := strings.NewReplacer("/", "_", string(filepath.Separator), "_").Replace(version)
	return filepath.Join(c.JUnitDir, fmt.Sprintf("%s-%s.xml", c.DriverType, name))
}
