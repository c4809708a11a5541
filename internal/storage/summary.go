package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"drivermatrix/internal/domain"
)

// SummaryFile appends the plain text summary of every version to a file
// shared by several matrix runs
type SummaryFile struct {
	path string
}

// NewSummaryFile creates a SummaryFile writing to path
func NewSummaryFile(path string) *SummaryFile {
	return &SummaryFile{path: path}
}

// Append writes one titled summary per version of the report
func (s *SummaryFile) Append(report *domain.MatrixReport) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create summary dir: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open summary file: %w", err)
	}
	defer f.Close()

	for _, e := range report.Entries {
		title := domain.SummaryTitle(report.DriverType, e.Version)
		if _, err := f.WriteString(title + domain.Summary(e.Outcome)); err != nil {
			return fmt.Errorf("write summary of %s: %w", e.Version, err)
		}
	}
	return nil
}
