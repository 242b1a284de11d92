package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yourusername/chase-predictor/internal/model"
)

// Counts tallies rows through the pipeline stages
type Counts struct {
	Matches         int `yaml:"matches"`
	EligibleMatches int `yaml:"eligible_matches"`
	Deliveries      int `yaml:"deliveries"`
	ChaseDeliveries int `yaml:"chase_deliveries"`
	FeatureRows     int `yaml:"feature_rows"`
	CatalogTuples   int `yaml:"catalog_tuples"`
	TrainRows       int `yaml:"train_rows,omitempty"`
	TestRows        int `yaml:"test_rows,omitempty"`
}

// Manifest records one pipeline run
type Manifest struct {
	RunID        string                 `yaml:"run_id"`
	Mode         string                 `yaml:"mode"`
	StartedAt    time.Time              `yaml:"started_at"`
	FinishedAt   time.Time              `yaml:"finished_at"`
	ModelVersion string                 `yaml:"model_version,omitempty"`
	Counts       Counts                 `yaml:"counts"`
	Holdout      *model.Metrics         `yaml:"holdout,omitempty"`
	Training     *model.TrainingOptions `yaml:"training,omitempty"`
	Converged    *bool                  `yaml:"converged,omitempty"`
	Iterations   int                    `yaml:"iterations,omitempty"`
	Features     []string               `yaml:"features,omitempty"`
	Artifacts    ArtifactPaths          `yaml:"artifacts"`
}

// SaveManifest writes the manifest as YAML
func SaveManifest(m *Manifest, path string) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadManifest reads a manifest written by SaveManifest
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}
