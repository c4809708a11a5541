package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"drivermatrix/internal/domain"
	"drivermatrix/internal/storage"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// PrintBanner prints the header of a matrix run
func (f *Formatter) PrintBanner(driverType string, versions []string, versionsRoot string) {
	cyan := color.New(color.FgCyan)
	cyan.Fprintln(f.out, "╔═══════════════════════════════════════════════════════════════╗")
	cyan.Fprintf(f.out, "║ %-61s ║\n", strings.ToUpper(driverType)+" CPP DRIVER MATRIX")
	cyan.Fprintln(f.out, "╚═══════════════════════════════════════════════════════════════╝")
	fmt.Fprintf(f.out, "Versions: %s\n", color.YellowString(strings.Join(versions, ", ")))
	fmt.Fprintf(f.out, "Configurations: %s\n\n", versionsRoot)
}

// statusLabel names the outcome of a version in the matrix table
func statusLabel(outcome domain.TestOutcome) string {
	switch {
	case outcome.IsAnomaly():
		return "ERROR"
	case outcome.Succeeded():
		return "PASS"
	default:
		return "FAIL"
	}
}

// MatrixTable renders the report as an ASCII table
func (f *Formatter) MatrixTable(report *domain.MatrixReport) string {
	var buf strings.Builder

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(fmt.Sprintf("%s CPP DRIVER MATRIX RESULTS", strings.ToUpper(report.DriverType)))
	t.AppendHeader(table.Row{"VERSION", "PLANNED", "RAN", "PASSED", "FAILED", "EXIT", "STATUS"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "VERSION", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
		{Name: "PLANNED", Align: text.AlignRight},
		{Name: "RAN", Align: text.AlignRight},
		{Name: "PASSED", Align: text.AlignRight},
		{Name: "FAILED", Align: text.AlignRight},
		{Name: "EXIT", Align: text.AlignRight},
	})

	var planned, ran, passed, failed int
	for _, e := range report.Entries {
		o := e.Outcome
		t.AppendRow(table.Row{e.Version, o.Planned, o.Ran, o.Passed, o.Failed, o.ExitCode, statusLabel(o)})
		planned += o.Planned
		ran += o.Ran
		passed += o.Passed
		failed += o.Failed
	}

	overall := "PASS"
	if report.Status() != 0 {
		overall = "FAIL"
	}
	t.AppendFooter(table.Row{"TOTAL", planned, ran, passed, failed, "", overall})
	t.SetStyle(table.StyleLight)
	t.Render()
	return buf.String()
}

// PrintReport prints the matrix table followed by the summary of every
// version
func (f *Formatter) PrintReport(report *domain.MatrixReport) {
	fmt.Fprintln(f.out)
	fmt.Fprint(f.out, f.MatrixTable(report))

	for _, e := range report.Entries {
		title := domain.SummaryTitle(report.DriverType, e.Version)
		if e.Outcome.Succeeded() {
			color.New(color.FgGreen).Fprint(f.out, "\n✓ "+title)
		} else {
			color.New(color.FgRed).Fprint(f.out, "\n✗ "+title)
		}
		fmt.Fprint(f.out, domain.Summary(e.Outcome))
		if e.Outcome.Error != "" && !e.Outcome.Succeeded() {
			color.New(color.FgYellow).Fprintf(f.out, "Error: %s\n\n", strings.TrimSpace(e.Outcome.Error))
		}
	}

	f.PrintStatus(report)
}

// PrintStatus prints the one-line verdict of a report
func (f *Formatter) PrintStatus(report *domain.MatrixReport) {
	failed := len(report.FailedEntries())
	switch {
	case report.Len() == 0:
		color.New(color.FgRed).Fprintln(f.out, "✗ No version was tested")
	case failed == 0:
		color.New(color.FgGreen).Fprintf(f.out, "✓ All %d version(s) passed!\n", report.Len())
	default:
		color.New(color.FgRed).Fprintf(f.out, "✗ %d of %d version(s) failed\n", failed, report.Len())
	}
}

// PrintMetaStats displays the statistics of a saved matrix run
func (f *Formatter) PrintMetaStats(output *domain.MatrixResultsOutput) {
	meta := output.Meta

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle("Matrix Execution Statistics")
	t.AppendRows([]table.Row{
		{"Driver Type", meta.DriverType},
		{"Total Versions", meta.TotalVersions},
		{"Passed Versions", color.GreenString("%d", meta.PassedVersions)},
		{"Failed Versions", color.RedString("%d", meta.FailedVersions)},
		{"Failed Test Cases", color.RedString("%d", meta.FailedTestCases)},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds)},
		{"Timestamp", meta.Timestamp},
	})
	t.SetStyle(table.StyleLight)
	t.Render()
	fmt.Fprintln(f.out)

	f.PrintStatus(output.Report())
	f.printFailureTree(output.Failures)
}

// printFailureTree prints failing tests grouped by version
func (f *Formatter) printFailureTree(failures []domain.TestFailure) {
	var versions []string
	byVersion := make(map[string][]domain.TestFailure)
	for _, failure := range failures {
		if _, ok := byVersion[failure.Version]; !ok {
			versions = append(versions, failure.Version)
		}
		byVersion[failure.Version] = append(byVersion[failure.Version], failure)
	}

	for i, version := range versions {
		lastVersion := i == len(versions)-1
		branch, indent := "├── ", "│   "
		if lastVersion {
			branch, indent = "└── ", "    "
		}
		color.New(color.FgCyan).Fprintf(f.out, "%s%s\n", branch, version)

		cases := byVersion[version]
		for j, failure := range cases {
			leaf := "├── "
			if j == len(cases)-1 {
				leaf = "└── "
			}
			label := failure.Label()
			if failure.Resolved {
				label += " (resolved)"
			}
			fmt.Fprintf(f.out, "%s%s%s\n", indent, leaf, color.RedString(label))
		}
	}
}

// ConfigDirRow is one configuration directory shown by PrintConfigDirs
type ConfigDirRow struct {
	Name     string
	Numeric  bool
	Patches  int
	Excluded int
}

// PrintConfigDirs prints the configuration directories of a driver type
func (f *Formatter) PrintConfigDirs(root string, rows []ConfigDirRow) {
	color.New(color.FgGreen).Fprintf(f.out, "Found %d configuration(s) in %s:\n", len(rows), root)
	for i, row := range rows {
		branch := "├── "
		if i == len(rows)-1 {
			branch = "└── "
		}
		kind := "literal"
		if row.Numeric {
			kind = "numeric"
		}
		details := fmt.Sprintf("%s, %d patch file(s), %d excluded test(s)", kind, row.Patches, row.Excluded)
		fmt.Fprintf(f.out, "%s%s %s\n", branch, color.CyanString(row.Name), color.New(color.Faint).Sprint("("+details+")"))
	}
}

// Resolution is the configuration picked for a requested version
type Resolution struct {
	Version string
	Dir     string
	Err     error
}

// PrintResolutions prints which configuration serves each requested version
func (f *Formatter) PrintResolutions(rows []Resolution) {
	for _, row := range rows {
		if row.Err != nil {
			fmt.Fprintf(f.out, "%s %s\n", color.YellowString("%-20s", row.Version), color.RedString(row.Err.Error()))
			continue
		}
		fmt.Fprintf(f.out, "%s -> %s\n", color.YellowString("%-20s", row.Version), color.CyanString(row.Dir))
	}
}

// PrintHistory prints the recorded runs
func (f *Formatter) PrintHistory(runs []storage.HistoryRun) {
	if len(runs) == 0 {
		color.New(color.FgYellow).Fprintln(f.out, "No recorded runs")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.AppendHeader(table.Row{"STARTED", "RUN", "DRIVER", "VERSION", "RAN", "PASSED", "FAILED", "EXIT", "STATUS"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "RUN", AutoMerge: true},
		{Name: "RAN", Align: text.AlignRight},
		{Name: "PASSED", Align: text.AlignRight},
		{Name: "FAILED", Align: text.AlignRight},
		{Name: "EXIT", Align: text.AlignRight},
	})
	for _, run := range runs {
		o := run.Outcome
		t.AppendRow(table.Row{
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.RunID,
			run.DriverType,
			run.Version,
			o.Ran, o.Passed, o.Failed, o.ExitCode,
			statusLabel(o),
		})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
