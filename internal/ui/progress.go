package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"drivermatrix/internal/domain"
)

// ProgressBar shows the progress of a matrix run across versions. It
// implements matrix.Observer.
type ProgressBar struct {
	bar     *progressbar.ProgressBar
	out     io.Writer
	passed  int
	failed  int
	current string
}

// NewProgressBar creates a new progress bar for count versions
func NewProgressBar(count int) *ProgressBar {
	return newProgressBar(count, os.Stderr)
}

func newProgressBar(count int, out io.Writer) *ProgressBar {
	p := &ProgressBar{out: out}
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetDescription(p.description()),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
	return p
}

// VersionStarted shows which version is being tested
func (p *ProgressBar) VersionStarted(version string, index, total int) {
	p.current = version
	p.bar.Describe(p.description())
}

// VersionFinished counts the outcome of a version and advances the bar
func (p *ProgressBar) VersionFinished(version string, outcome domain.TestOutcome) {
	if outcome.Succeeded() {
		p.passed++
	} else {
		p.failed++
	}
	p.current = ""
	p.bar.Describe(p.description())
	p.bar.Add(1)
}

// Counts returns the number of passed and failed versions so far
func (p *ProgressBar) Counts() (passed, failed int) {
	return p.passed, p.failed
}

// Finish completes the progress bar
func (p *ProgressBar) Finish() {
	p.bar.Finish()
}

func (p *ProgressBar) description() string {
	desc := color.CyanString("Testing versions: ") +
		color.GreenString("[passed: %d", p.passed) +
		" | " +
		color.RedString("failed: %d]", p.failed)
	if p.current != "" {
		desc += " " + color.YellowString(p.current)
	}
	return desc
}
