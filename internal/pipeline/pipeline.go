// Package pipeline runs the batch pass from raw tables to persisted artifacts.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/dataset"
	"github.com/yourusername/chase-predictor/internal/encoder"
	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/models"
)

// Run modes
const (
	ModeFeatures = "features"
	ModeTrain    = "train"
)

// TableReader loads the raw tables
type TableReader interface {
	ReadMatches(ctx context.Context, location string) ([]models.MatchRecord, error)
	ReadDeliveries(ctx context.Context, location string) ([]models.DeliveryRecord, error)
}

// Pipeline turns raw tables into a feature table, catalog, encoder and model
type Pipeline struct {
	reader TableReader
	opts   Options
	logger *logger.PipelineLogger
	now    func() time.Time
}

// New creates a pipeline
func New(reader TableReader, opts Options, log *logrus.Logger) *Pipeline {
	return &Pipeline{
		reader: reader,
		opts:   opts,
		logger: logger.NewPipelineLogger(log),
		now:    time.Now,
	}
}

// built carries the intermediate results of the feature stage
type built struct {
	table   *dataset.FeatureTable
	catalog *dataset.Catalog
}

// BuildFeatures loads, replays and writes the feature table and catalog
func (p *Pipeline) BuildFeatures(ctx context.Context) (*Manifest, error) {
	manifest, log := p.start(ModeFeatures)

	if _, err := p.features(ctx, manifest, log); err != nil {
		return nil, p.fail(manifest, log, err)
	}
	return p.finish(manifest, log)
}

// Run executes the full training pass
func (p *Pipeline) Run(ctx context.Context) (*Manifest, error) {
	manifest, log := p.start(ModeTrain)

	b, err := p.features(ctx, manifest, log)
	if err != nil {
		return nil, p.fail(manifest, log, err)
	}
	if err := p.train(ctx, b, manifest, log); err != nil {
		return nil, p.fail(manifest, log, err)
	}
	return p.finish(manifest, log)
}

func (p *Pipeline) start(mode string) (*Manifest, *logger.PipelineLogger) {
	runID := uuid.New()
	manifest := &Manifest{
		RunID:     runID.String(),
		Mode:      mode,
		StartedAt: p.now().UTC(),
		Artifacts: p.opts.Artifacts,
	}
	if mode == ModeFeatures {
		manifest.Artifacts.Encoder = ""
		manifest.Artifacts.Model = ""
	}
	return manifest, p.logger.WithRun(runID)
}

// stageError tags an error with the stage that produced it
type stageError struct {
	stage string
	err   error
}

func (e *stageError) Error() string { return e.stage + ": " + e.err.Error() }
func (e *stageError) Unwrap() error { return e.err }

func stage(name string, err error) error {
	return &stageError{stage: name, err: err}
}

func (p *Pipeline) fail(manifest *Manifest, log *logger.PipelineLogger, err error) error {
	name := "unknown"
	var se *stageError
	if errors.As(err, &se) {
		name = se.stage
	}
	log.LogRunFailed(name, err)
	metrics.RecordPipelineRun(manifest.Mode, "failure", p.now().Sub(manifest.StartedAt).Seconds())
	p.writeTextfile()
	return fmt.Errorf("pipeline %s run failed: %w", manifest.Mode, err)
}

func (p *Pipeline) finish(manifest *Manifest, log *logger.PipelineLogger) (*Manifest, error) {
	manifest.FinishedAt = p.now().UTC()
	if err := SaveManifest(manifest, p.opts.Artifacts.Manifest); err != nil {
		return nil, p.fail(manifest, log, stage("manifest", err))
	}

	duration := manifest.FinishedAt.Sub(manifest.StartedAt).Seconds()
	metrics.RecordPipelineRun(manifest.Mode, "success", duration)
	p.writeTextfile()

	log.WithFields(logrus.Fields{
		"mode":         manifest.Mode,
		"feature_rows": manifest.Counts.FeatureRows,
		"duration":     duration,
	}).Info("Pipeline run completed")
	return manifest, nil
}

func (p *Pipeline) writeTextfile() {
	if err := metrics.WriteTextfile(p.opts.MetricsTextfile); err != nil {
		p.logger.WithError(err).Warn("Failed to write metrics textfile")
	}
}

func (p *Pipeline) features(ctx context.Context, manifest *Manifest, log *logger.PipelineLogger) (*built, error) {
	matches, err := p.reader.ReadMatches(ctx, p.opts.MatchesLocation)
	if err != nil {
		return nil, stage("load_matches", err)
	}
	log.LogSourceLoaded("matches", p.opts.MatchesLocation, len(matches))

	deliveries, err := p.reader.ReadDeliveries(ctx, p.opts.DeliveriesLocation)
	if err != nil {
		return nil, stage("load_deliveries", err)
	}
	log.LogSourceLoaded("deliveries", p.opts.DeliveriesLocation, len(deliveries))

	if err := ctx.Err(); err != nil {
		return nil, stage("replay", err)
	}

	eligible := features.SelectEligible(matches)
	chase := features.SelectChaseDeliveries(deliveries, eligible)
	features.SortForReplay(chase)
	log.LogEligibility(len(matches), len(eligible), len(chase))
	metrics.RecordLoad(len(matches), len(eligible))

	rows := features.NewEngine(log).Build(chase)
	table := &dataset.FeatureTable{Rows: rows}
	if err := dataset.SaveFeatureTable(table, p.opts.Artifacts.FeatureTable); err != nil {
		return nil, stage("write_features", err)
	}
	log.LogFeatureTable(p.opts.Artifacts.FeatureTable, table.Len(), table.Matches())

	catalog := dataset.BuildCatalog(rows)
	if err := dataset.SaveCatalog(catalog, p.opts.Artifacts.Catalog); err != nil {
		return nil, stage("write_catalog", err)
	}
	log.LogCatalog(p.opts.Artifacts.Catalog, catalog.Len())

	manifest.Counts = Counts{
		Matches:         len(matches),
		EligibleMatches: len(eligible),
		Deliveries:      len(deliveries),
		ChaseDeliveries: len(chase),
		FeatureRows:     table.Len(),
		CatalogTuples:   catalog.Len(),
	}
	return &built{table: table, catalog: catalog}, nil
}

func (p *Pipeline) train(ctx context.Context, b *built, manifest *Manifest, log *logger.PipelineLogger) error {
	started := p.now()

	enc := encoder.New()
	if err := enc.Fit(b.table.Rows); err != nil {
		return stage("fit_encoder", err)
	}
	X, err := enc.TransformAll(b.table.Rows)
	if err != nil {
		return stage("encode", err)
	}
	y := b.table.Labels()

	trainIdx, testIdx, err := model.Split(y, p.opts.TestFraction, p.opts.Seed, p.opts.Stratify)
	if err != nil {
		return stage("split", err)
	}
	trainX, trainY := model.Subset(X, y, trainIdx)
	testX, testY := model.Subset(X, y, testIdx)

	if err := ctx.Err(); err != nil {
		return stage("fit_model", err)
	}
	clf, err := model.Fit(trainX, trainY, p.opts.Training)
	if err != nil {
		return stage("fit_model", err)
	}
	clf.FeatureNames = enc.FeatureNames()
	clf.Version = ModelVersion(clf.FeatureNames, len(trainIdx), p.opts.Seed).String()

	holdout, err := clf.Evaluate(testX, testY)
	if err != nil {
		return stage("evaluate", err)
	}
	metrics.UpdateHoldoutMetrics(holdout.Accuracy, holdout.LogLoss)

	if err := enc.Save(p.opts.Artifacts.Encoder); err != nil {
		return stage("write_encoder", err)
	}
	if err := clf.Save(p.opts.Artifacts.Model); err != nil {
		return stage("write_model", err)
	}

	log.LogModelTraining(clf.Version, p.now().Sub(started).Seconds(),
		map[string]float64{
			"accuracy": holdout.Accuracy,
			"log_loss": holdout.LogLoss,
			"brier":    holdout.Brier,
		},
		map[string]interface{}{
			"max_iter":      clf.Options.MaxIter,
			"learning_rate": clf.Options.LearningRate,
			"l2":            clf.Options.L2,
			"tolerance":     clf.Options.Tolerance,
			"iterations":    clf.Iterations,
			"converged":     clf.Converged,
		})

	converged := clf.Converged
	manifest.ModelVersion = clf.Version
	manifest.Counts.TrainRows = len(trainIdx)
	manifest.Counts.TestRows = len(testIdx)
	manifest.Holdout = &holdout
	manifest.Training = &clf.Options
	manifest.Converged = &converged
	manifest.Iterations = clf.Iterations
	manifest.Features = clf.FeatureNames
	return nil
}

// ModelVersion derives a stable identifier from the encoded layout and training size
func ModelVersion(featureNames []string, trainRows int, seed int64) uuid.UUID {
	name := fmt.Sprintf("%s|%d|%d", strings.Join(featureNames, ","), trainRows, seed)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}
