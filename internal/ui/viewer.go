package ui

import "drivermatrix/internal/domain"

// Viewer displays matrix failures in an interactive TUI
type Viewer interface {
	View(results *domain.MatrixResultsOutput) error
}
