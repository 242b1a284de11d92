package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/datasource"
	"github.com/yourusername/chase-predictor/internal/dataset"
	"github.com/yourusername/chase-predictor/internal/encoder"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/models"
)

const (
	mi  = "Mumbai Indians"
	csk = "Chennai Super Kings"
)

// writeFixtures writes six eligible matches and one rain-affected match.
// Each innings has twelve balls; the chasing side wins unless id is a multiple of three.
func writeFixtures(t *testing.T, dir string) (string, string) {
	t.Helper()

	var matches, deliveries strings.Builder
	matches.WriteString("id,Season,team1,team2,result,dl_applied,winner,venue\n")
	deliveries.WriteString("match_id,inning,batting_team,bowling_team,over,ball,total_runs,player_dismissed\n")

	for id := 1; id <= 7; id++ {
		chasing, defending := mi, csk
		if id%2 == 0 {
			chasing, defending = csk, mi
		}
		season := "2017"
		if id > 3 {
			season = "2018"
		}
		winner := chasing
		if id%3 == 0 {
			winner = defending
		}
		dl := 0
		if id == 7 {
			dl = 1
		}
		fmt.Fprintf(&matches, "%d,%s,%s,%s,normal,%d,%s,Wankhede Stadium\n", id, season, defending, chasing, dl, winner)

		fmt.Fprintf(&deliveries, "%d,1,%s,%s,1,1,6,\n", id, defending, chasing)
		fmt.Fprintf(&deliveries, "%d,1,%s,%s,1,2,1,\n", id, defending, chasing)
		for over := 1; over <= 2; over++ {
			for ball := 1; ball <= 6; ball++ {
				runs, dismissed := 2, ""
				if winner != chasing {
					runs = 1
					if ball%3 == 0 {
						dismissed = "Batter"
					}
				}
				fmt.Fprintf(&deliveries, "%d,2,%s,%s,%d,%d,%d,%s\n", id, chasing, defending, over, ball, runs, dismissed)
			}
		}
	}

	matchesPath := filepath.Join(dir, "matches.csv")
	deliveriesPath := filepath.Join(dir, "deliveries.csv")
	require.NoError(t, os.WriteFile(matchesPath, []byte(matches.String()), 0o644))
	require.NoError(t, os.WriteFile(deliveriesPath, []byte(deliveries.String()), 0o644))
	return matchesPath, deliveriesPath
}

func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	matchesPath, deliveriesPath := writeFixtures(t, dir)
	out := filepath.Join(dir, "artifacts")

	return Options{
		MatchesLocation:    matchesPath,
		DeliveriesLocation: deliveriesPath,
		Artifacts: ArtifactPaths{
			FeatureTable: filepath.Join(out, "model_data.csv"),
			Catalog:      filepath.Join(out, "model_input_template.csv"),
			Encoder:      filepath.Join(out, "transformer.json"),
			Model:        filepath.Join(out, "ipl_model.json"),
			Manifest:     filepath.Join(out, "manifest.yaml"),
		},
		TestFraction:    0.2,
		Seed:            42,
		Stratify:        true,
		Training:        model.TrainingOptions{MaxIter: 200},
		MetricsTextfile: filepath.Join(out, "metrics.prom"),
	}
}

func newTestPipeline(opts Options) *Pipeline {
	factory := datasource.NewFactory(datasource.DefaultHTTPClientConfig(), logger.Discard())
	return New(datasource.NewTableReader(factory), opts, logger.Discard())
}

func TestRunWritesAllArtifacts(t *testing.T) {
	opts := testOptions(t)
	before := testutil.ToFloat64(metrics.PipelineRunsTotal.WithLabelValues(ModeTrain, "success"))

	manifest, err := newTestPipeline(opts).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PipelineRunsTotal.WithLabelValues(ModeTrain, "success")))
	assert.Equal(t, ModeTrain, manifest.Mode)
	assert.NotEmpty(t, manifest.RunID)
	assert.Equal(t, Counts{
		Matches:         7,
		EligibleMatches: 6,
		Deliveries:      98,
		ChaseDeliveries: 72,
		FeatureRows:     72,
		CatalogTuples:   4,
		TrainRows:       57,
		TestRows:        15,
	}, manifest.Counts)
	require.NotNil(t, manifest.Holdout)
	assert.Equal(t, 15, manifest.Holdout.Samples)

	table, err := dataset.LoadFeatureTable(opts.Artifacts.FeatureTable)
	require.NoError(t, err)
	assert.Equal(t, 72, table.Len())
	assert.Equal(t, 6, table.Matches())

	catalog, err := dataset.LoadCatalog(opts.Artifacts.Catalog)
	require.NoError(t, err)
	assert.Equal(t, 4, catalog.Len())

	enc, err := encoder.Load(opts.Artifacts.Encoder)
	require.NoError(t, err)

	clf, err := model.Load(opts.Artifacts.Model)
	require.NoError(t, err)
	assert.Equal(t, manifest.ModelVersion, clf.Version)
	assert.Equal(t, enc.FeatureNames(), clf.FeatureNames)
	assert.Equal(t, enc.Width(), clf.Width())

	saved, err := LoadManifest(opts.Artifacts.Manifest)
	require.NoError(t, err)
	assert.Equal(t, manifest.RunID, saved.RunID)
	assert.Equal(t, manifest.Counts, saved.Counts)

	_, err = os.Stat(opts.MetricsTextfile)
	assert.NoError(t, err)
}

func TestRunLabelsFollowWinner(t *testing.T) {
	opts := testOptions(t)

	_, err := newTestPipeline(opts).BuildFeatures(context.Background())
	require.NoError(t, err)

	table, err := dataset.LoadFeatureTable(opts.Artifacts.FeatureTable)
	require.NoError(t, err)

	for _, row := range table.Rows {
		want := 1
		if row.MatchID%3 == 0 {
			want = 0
		}
		assert.Equal(t, want, row.Result, "match %d", row.MatchID)
		assert.NotEqual(t, int64(7), row.MatchID)
	}

	// match 1 chases 24 in twelve balls of two
	first := table.Rows[0]
	assert.Equal(t, int64(1), first.MatchID)
	assert.Equal(t, mi, first.BattingTeam)
	assert.Equal(t, 22, first.RunsLeft)
	assert.Equal(t, 119, first.BallsLeft)
}

func TestBuildFeaturesSkipsModel(t *testing.T) {
	opts := testOptions(t)

	manifest, err := newTestPipeline(opts).BuildFeatures(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ModeFeatures, manifest.Mode)
	assert.Empty(t, manifest.ModelVersion)
	assert.Empty(t, manifest.Artifacts.Model)
	assert.Nil(t, manifest.Holdout)

	_, err = os.Stat(opts.Artifacts.Catalog)
	assert.NoError(t, err)
	_, err = os.Stat(opts.Artifacts.Model)
	assert.True(t, os.IsNotExist(err))
}

func TestModelVersionDeterministic(t *testing.T) {
	names := []string{"batting_team_MI", "runs_left"}

	assert.Equal(t, ModelVersion(names, 10, 42), ModelVersion(names, 10, 42))
	assert.NotEqual(t, ModelVersion(names, 10, 42), ModelVersion(names, 11, 42))
	assert.NotEqual(t, ModelVersion(names, 10, 42), ModelVersion(names, 10, 7))
}

type failingReader struct {
	err error
}

func (r failingReader) ReadMatches(ctx context.Context, location string) ([]models.MatchRecord, error) {
	return nil, r.err
}

func (r failingReader) ReadDeliveries(ctx context.Context, location string) ([]models.DeliveryRecord, error) {
	return nil, r.err
}

func TestRunLoadFailure(t *testing.T) {
	opts := testOptions(t)
	boom := errors.New("boom")
	before := testutil.ToFloat64(metrics.PipelineRunsTotal.WithLabelValues(ModeTrain, "failure"))

	_, err := New(failingReader{err: boom}, opts, logger.Discard()).Run(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.Contains(t, err.Error(), "load_matches")
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.PipelineRunsTotal.WithLabelValues(ModeTrain, "failure")))
}

func TestRunSingleClassFails(t *testing.T) {
	opts := testOptions(t)
	rows := strings.Join([]string{
		"id,season,team1,team2,result,dl_applied,winner,venue",
		"1,2017,A,B,normal,0,B,V",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(opts.MatchesLocation, []byte(rows), 0o644))
	deliveries := strings.Join([]string{
		"match_id,inning,batting_team,bowling_team,over,ball,total_runs,player_dismissed",
		"1,2,B,A,1,1,4,",
		"1,2,B,A,1,2,4,",
		"",
	}, "\n")
	require.NoError(t, os.WriteFile(opts.DeliveriesLocation, []byte(deliveries), 0o644))

	_, err := newTestPipeline(opts).Run(context.Background())
	assert.True(t, errors.Is(err, model.ErrSingleClass), "got %v", err)
}

func TestRunCancelled(t *testing.T) {
	opts := testOptions(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestPipeline(opts).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Data:      config.DataConfig{Matches: "m.csv", Deliveries: "d.csv"},
		Artifacts: config.ArtifactsConfig{OutputDir: "out", FeatureTable: "f.csv", Catalog: "c.csv", Encoder: "e.json", Model: "m.json", Manifest: "x.yaml"},
		Training:  config.TrainingConfig{TestFraction: 0.25, Seed: 9, Stratify: true, MaxIter: 50},
		Metrics:   config.MetricsConfig{Enabled: false, TextfilePath: "metrics.prom"},
	}

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, "m.csv", opts.MatchesLocation)
	assert.Equal(t, filepath.Join("out", "m.json"), opts.Artifacts.Model)
	assert.Equal(t, 0.25, opts.TestFraction)
	assert.Equal(t, int64(9), opts.Seed)
	assert.Equal(t, 50, opts.Training.MaxIter)
	assert.Empty(t, opts.MetricsTextfile)
}
