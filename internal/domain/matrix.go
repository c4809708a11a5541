package domain

// MatrixEntry pairs a requested version with its outcome
type MatrixEntry struct {
	Version string      `json:"version"`
	Outcome TestOutcome `json:"outcome"`
}

// MatrixReport holds one outcome per requested version, in request order
type MatrixReport struct {
	DriverType string        `json:"driver_type"`
	Entries    []MatrixEntry `json:"entries"`

	index map[string]int
}

// NewMatrixReport creates an empty report for a driver type
func NewMatrixReport(driverType string) *MatrixReport {
	return &MatrixReport{
		DriverType: driverType,
		Entries:    make([]MatrixEntry, 0),
		index:      make(map[string]int),
	}
}

// Record stores the outcome of a version. Recording a version twice replaces
// the earlier outcome and keeps its original position.
func (r *MatrixReport) Record(version string, outcome TestOutcome) {
	if r.index == nil {
		r.reindex()
	}
	if i, ok := r.index[version]; ok {
		r.Entries[i].Outcome = outcome
		return
	}
	r.index[version] = len(r.Entries)
	r.Entries = append(r.Entries, MatrixEntry{Version: version, Outcome: outcome})
}

func (r *MatrixReport) reindex() {
	r.index = make(map[string]int, len(r.Entries))
	for i, e := range r.Entries {
		r.index[e.Version] = i
	}
}

// Get returns the outcome recorded for a version
func (r *MatrixReport) Get(version string) (TestOutcome, bool) {
	if r.index == nil {
		r.reindex()
	}
	i, ok := r.index[version]
	if !ok {
		return TestOutcome{}, false
	}
	return r.Entries[i].Outcome, true
}

// Versions returns the recorded versions in request order
func (r *MatrixReport) Versions() []string {
	versions := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		versions[i] = e.Version
	}
	return versions
}

// Len returns the number of recorded versions
func (r *MatrixReport) Len() int {
	return len(r.Entries)
}

// FailedEntries returns the entries that did not succeed
func (r *MatrixReport) FailedEntries() []MatrixEntry {
	var failed []MatrixEntry
	for _, e := range r.Entries {
		if !e.Outcome.Succeeded() {
			failed = append(failed, e)
		}
	}
	return failed
}

// Status returns 0 when every version succeeded and 1 otherwise. An empty
// report is a failure.
func (r *MatrixReport) Status() int {
	if len(r.Entries) == 0 {
		return 1
	}
	if len(r.FailedEntries()) > 0 {
		return 1
	}
	return 0
}
