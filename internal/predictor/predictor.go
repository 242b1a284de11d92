// Package predictor serves win probabilities for a live chase from the
// artifacts written by the training pipeline.
package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/chase-predictor/internal/dataset"
	"github.com/yourusername/chase-predictor/internal/encoder"
	"github.com/yourusername/chase-predictor/internal/features"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/models"
)

// Prediction statuses recorded in metrics
const (
	StatusSuccess         = "success"
	StatusRejected        = "rejected"
	StatusOutOfCatalog    = "out_of_catalog"
	StatusUnknownCategory = "unknown_category"
)

// ArtifactPaths locates the files the predictor loads
type ArtifactPaths struct {
	Catalog string
	Encoder string
	Model   string
}

// Options configures a predictor
type Options struct {
	// StrictCatalog rejects any categorical value absent from the catalog
	StrictCatalog bool
	CacheTTL      time.Duration
	CacheMaxSize  int
}

// Choices are the selectable values for each categorical input
type Choices struct {
	BattingTeams []string `json:"batting_teams"`
	BowlingTeams []string `json:"bowling_teams"`
	Venues       []string `json:"venues"`
	Seasons      []string `json:"seasons"`
}

// Predictor is loaded once and then answers predictions. Apart from its
// cache it is never mutated.
type Predictor struct {
	catalog  *dataset.Catalog
	choices  Choices
	allowed  map[string]map[string]struct{}
	encoder  *encoder.OneHotEncoder
	model    *model.LogisticRegression
	cache    *PredictionCache
	validate *validator.Validate
	strict   bool
	logger   *logger.PredictionLogger
}

// Load reads the catalog, encoder and model from disk
func Load(paths ArtifactPaths, opts Options, log *logrus.Logger) (*Predictor, error) {
	catalog, err := dataset.LoadCatalog(paths.Catalog)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	enc, err := encoder.Load(paths.Encoder)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoder: %w", err)
	}
	clf, err := model.Load(paths.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	return New(catalog, enc, clf, opts, log)
}

// New assembles a predictor from loaded artifacts
func New(catalog *dataset.Catalog, enc *encoder.OneHotEncoder, clf *model.LogisticRegression, opts Options, log *logrus.Logger) (*Predictor, error) {
	if !enc.Fitted() {
		return nil, encoder.ErrNotFitted
	}
	if enc.Width() != clf.Width() {
		return nil, fmt.Errorf("%w: encoder emits %d columns, model expects %d", model.ErrDimensionMismatch, enc.Width(), clf.Width())
	}

	p := &Predictor{
		catalog:  catalog,
		allowed:  make(map[string]map[string]struct{}, len(models.CategoricalColumns)),
		encoder:  enc,
		model:    clf,
		validate: validator.New(),
		strict:   opts.StrictCatalog,
		logger:   logger.NewPredictionLogger(log),
	}
	if opts.CacheTTL > 0 && opts.CacheMaxSize > 0 {
		p.cache = NewPredictionCache(opts.CacheTTL, opts.CacheMaxSize)
	}

	lists := make([][]string, len(models.CategoricalColumns))
	for i, column := range models.CategoricalColumns {
		values, err := catalog.Values(column)
		if err != nil {
			return nil, err
		}
		lists[i] = values
		set := make(map[string]struct{}, len(values))
		for _, v := range values {
			set[v] = struct{}{}
		}
		p.allowed[column] = set
	}
	p.choices = Choices{BattingTeams: lists[0], BowlingTeams: lists[1], Venues: lists[2], Seasons: lists[3]}

	p.logger.LogArtifactsLoaded(clf.Version, catalog.Len(), enc.Width())
	return p, nil
}

// Choices returns the sorted selectable values of every categorical input
func (p *Predictor) Choices() Choices {
	return p.choices
}

// BowlingChoices returns the bowling teams selectable against battingTeam
func (p *Predictor) BowlingChoices(battingTeam string) []string {
	out := make([]string, 0, len(p.choices.BowlingTeams))
	for _, team := range p.choices.BowlingTeams {
		if team != battingTeam {
			out = append(out, team)
		}
	}
	return out
}

// ModelVersion returns the version of the loaded model
func (p *Predictor) ModelVersion() string {
	return p.model.Version
}

// checkCatalog returns the columns whose value was never seen in training
func (p *Predictor) checkCatalog(in Input) []string {
	var missing []string
	for i, v := range in.Entry().Values() {
		column := models.CategoricalColumns[i]
		if _, ok := p.allowed[column][v]; !ok {
			missing = append(missing, column)
		}
	}
	return missing
}

// Predict estimates the chasing side's win probability
func (p *Predictor) Predict(ctx context.Context, in Input) (*Result, error) {
	start := time.Now()
	observe := func(status string) {
		metrics.RecordPrediction(status, time.Since(start).Seconds())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := validateInput(p.validate, in); err != nil {
		p.logger.LogPredictionRejected(err.Error())
		observe(StatusRejected)
		return nil, err
	}

	if missing := p.checkCatalog(in); len(missing) > 0 && p.strict {
		err := fmt.Errorf("%w: %v", ErrOutOfCatalog, missing)
		p.logger.LogPredictionRejected(err.Error())
		observe(StatusOutOfCatalog)
		return nil, err
	}

	key := CacheKey{Input: in, ModelVersion: p.model.Version}
	if p.cache != nil {
		if cached, ok := p.cache.Get(key); ok {
			result := *cached
			result.Cached = true
			metrics.RecordPredictionCacheHit()
			observe(StatusSuccess)
			p.logger.LogPrediction(in.BattingTeam, in.BowlingTeam, result.WinProbability, true, msSince(start))
			return &result, nil
		}
	}

	runRate, requiredRunRate := features.DeriveRates(in.TotalRuns, in.BallsBowled(), in.RunsLeft, in.BallsLeft)
	row := models.FeatureRow{
		BattingTeam:     in.BattingTeam,
		BowlingTeam:     in.BowlingTeam,
		Venue:           in.Venue,
		Season:          in.Season,
		RunsLeft:        in.RunsLeft,
		BallsLeft:       in.BallsLeft,
		WicketsLeft:     in.WicketsLeft,
		TotalRuns:       in.TotalRuns,
		RunRate:         runRate,
		RequiredRunRate: requiredRunRate,
	}

	x, unknown, err := p.encoder.Transform(&row)
	if err != nil {
		return nil, err
	}
	win, err := p.model.PredictProba(x)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Input:           in,
		RunRate:         runRate,
		RequiredRunRate: requiredRunRate,
		WinProbability:  win,
		LoseProbability: 1 - win,
		WinOdds:         fairOdds(win),
		LoseOdds:        fairOdds(1 - win),
		SeenCombination: p.catalog.Contains(in.Entry()),
		Unknown:         unknown,
		ModelVersion:    p.model.Version,
	}

	status := StatusSuccess
	if len(unknown) > 0 {
		columns := make([]string, len(unknown))
		for i, u := range unknown {
			columns[i] = u.Column
		}
		p.logger.LogUnknownCategories(columns)
		status = StatusUnknownCategory
	}

	if p.cache != nil {
		p.cache.Set(key, result)
	}
	observe(status)
	p.logger.LogPrediction(in.BattingTeam, in.BowlingTeam, win, false, msSince(start))

	out := *result
	return &out, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
