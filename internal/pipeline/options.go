package pipeline

import (
	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/model"
)

// ArtifactPaths are the files a run writes
type ArtifactPaths struct {
	FeatureTable string `yaml:"feature_table"`
	Catalog      string `yaml:"catalog"`
	Encoder      string `yaml:"encoder"`
	Model        string `yaml:"model"`
	Manifest     string `yaml:"manifest"`
}

// Options configures a pipeline run
type Options struct {
	MatchesLocation    string
	DeliveriesLocation string
	Artifacts          ArtifactPaths
	TestFraction       float64
	Seed               int64
	Stratify           bool
	Training           model.TrainingOptions
	MetricsTextfile    string
}

// OptionsFromConfig builds run options from the application config
func OptionsFromConfig(cfg *config.Config) Options {
	textfile := ""
	if cfg.Metrics.Enabled {
		textfile = cfg.Metrics.TextfilePath
	}
	return Options{
		MatchesLocation:    cfg.Data.Matches,
		DeliveriesLocation: cfg.Data.Deliveries,
		Artifacts:          ArtifactPathsFromConfig(cfg),
		TestFraction:       cfg.Training.TestFraction,
		Seed:               cfg.Training.Seed,
		Stratify:           cfg.Training.Stratify,
		Training:           cfg.TrainingOptions(),
		MetricsTextfile:    textfile,
	}
}

// ArtifactPathsFromConfig resolves the artifact file names against the output directory
func ArtifactPathsFromConfig(cfg *config.Config) ArtifactPaths {
	return ArtifactPaths{
		FeatureTable: cfg.ArtifactPath(cfg.Artifacts.FeatureTable),
		Catalog:      cfg.ArtifactPath(cfg.Artifacts.Catalog),
		Encoder:      cfg.ArtifactPath(cfg.Artifacts.Encoder),
		Model:        cfg.ArtifactPath(cfg.Artifacts.Model),
		Manifest:     cfg.ArtifactPath(cfg.Artifacts.Manifest),
	}
}
