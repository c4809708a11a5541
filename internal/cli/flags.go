package cli

import "drivermatrix/internal/config"

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		DriverType:     f.DriverType,
		Versions:       f.Versions,
		VersionsRoot:   f.VersionsRoot,
		ServerVersion:  f.ServerVersion,
		CQLVersion:     f.CQLVersion,
		SummaryFile:    f.SummaryFile,
		JUnitDir:       f.JUnitDir,
		CheckoutPolicy: f.CheckoutPolicy,
		HistoryDSN:     f.HistoryDSN,
		EmailTo:        f.EmailTo,
		EnvFile:        f.EnvFile,
		LogLevel:       f.LogLevel,
		NoProgress:     f.NoProgress,
		OpenFaills:     f.OpenFaills,
		NameFilter:     f.NameFilter,
		Limit:          f.Limit,
	}
}
