package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DriverType describes a flavour of the C++ driver under test
type DriverType struct {
	Name         string // Name used on the command line and as configuration root
	Category     string // Value passed to --category of the integration test binary
	BranchSuffix string // Suffix appended to a version tag to get the git ref
}

// Branch returns the git ref to check out for a version tag
func (d DriverType) Branch(tag string) string {
	return tag + d.BranchSuffix
}

// Title returns the upper-cased name used in report headers
func (d DriverType) Title() string {
	return strings.ToUpper(d.Name)
}

var driverTypes = map[string]DriverType{
	// The CASSANDRA category of the integration tests is adapted to run against scylla
	"scylla":   {Name: "scylla", Category: "CASSANDRA"},
	"datastax": {Name: "datastax", Category: "DSE", BranchSuffix: "-dse"},
}

// LookupDriverType returns the DriverType registered under name
func LookupDriverType(name string) (DriverType, error) {
	d, ok := driverTypes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return DriverType{}, fmt.Errorf("unknown driver type %q (expected one of: %s)", name, strings.Join(DriverTypeNames(), ", "))
	}
	return d, nil
}

// DriverTypeNames returns the known driver type names, sorted
func DriverTypeNames() []string {
	names := make([]string, 0, len(driverTypes))
	for name := range driverTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
