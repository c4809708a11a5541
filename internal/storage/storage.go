package storage

import (
	"time"

	"drivermatrix/internal/config"
	"drivermatrix/internal/domain"
)

// Storage persists and loads matrix reports (e.g. for the faills viewer).
type Storage interface {
	Save(report *domain.MatrixReport, duration time.Duration) error
	Load() (*domain.MatrixResultsOutput, error)
	// SaveOutput writes the full output (e.g. after marking failures resolved).
	SaveOutput(output *domain.MatrixResultsOutput) error
}

// JSONStorage stores reports in a JSON file under the configured output path.
type JSONStorage struct {
	cfg *config.Config
	now func() time.Time
}

// NewJSONStorage returns a Storage that reads/writes the config's output JSON path.
func NewJSONStorage(cfg *config.Config) *JSONStorage {
	return &JSONStorage{cfg: cfg, now: time.Now}
}
