package matrix

import "fmt"

// State is a step of the per-version pipeline
type State int

const (
	NotStarted State = iota
	Checkout
	Patch
	Compile
	Execute
	Parsed
	Recorded
	Aborted
)

var stateNames = map[State]string{
	NotStarted: "not-started",
	Checkout:   "checkout",
	Patch:      "patch",
	Compile:    "compile",
	Execute:    "execute",
	Parsed:     "parsed",
	Recorded:   "recorded",
	Aborted:    "aborted",
}

// String implements fmt.Stringer
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no step follows s
func (s State) Terminal() bool {
	return s == Recorded || s == Aborted
}
