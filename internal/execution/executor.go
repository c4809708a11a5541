package execution

import (
	"context"

	"drivermatrix/internal/domain"
)

// Executor runs the test matrix for a list of versions
type Executor interface {
	Execute(ctx context.Context, versions []string) (*domain.MatrixReport, error)
}
