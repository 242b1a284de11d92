package encoder

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/models"
)

func trainingRows() []models.FeatureRow {
	return []models.FeatureRow{
		{BattingTeam: "MI", BowlingTeam: "CSK", Venue: "Wankhede", Season: "2019", RunsLeft: 100, BallsLeft: 60, WicketsLeft: 8, TotalRuns: 50, RunRate: 5, RequiredRunRate: 10},
		{BattingTeam: "CSK", BowlingTeam: "MI", Venue: "Chepauk", Season: "2019", RunsLeft: 20, BallsLeft: 12, WicketsLeft: 4, TotalRuns: 150, RunRate: 8.5, RequiredRunRate: 10},
		{BattingTeam: "RCB", BowlingTeam: "MI", Venue: "Wankhede", Season: "2018", RunsLeft: 5, BallsLeft: 1, WicketsLeft: 1, TotalRuns: 170, RunRate: 8.57, RequiredRunRate: 30},
	}
}

func fitted(t *testing.T) *OneHotEncoder {
	t.Helper()
	e := New()
	require.NoError(t, e.Fit(trainingRows()))
	return e
}

func TestFitSortsCategories(t *testing.T) {
	e := fitted(t)

	assert.Equal(t, []string{"CSK", "MI", "RCB"}, e.Categories[0])
	assert.Equal(t, []string{"CSK", "MI"}, e.Categories[1])
	assert.Equal(t, []string{"Chepauk", "Wankhede"}, e.Categories[2])
	assert.Equal(t, []string{"2018", "2019"}, e.Categories[3])

	// (3-1) + (2-1) + (2-1) + (2-1) categorical slots, then six numerics
	assert.Equal(t, 11, e.Width())
}

func TestFeatureNamesDropFirst(t *testing.T) {
	e := fitted(t)

	assert.Equal(t, []string{
		"batting_team_MI", "batting_team_RCB",
		"bowling_team_MI",
		"venue_Wankhede",
		"season_2019",
		"runs_left", "balls_left", "wickets_left", "total_runs", "run_rate", "required_run_rate",
	}, e.FeatureNames())
}

func TestTransform(t *testing.T) {
	e := fitted(t)
	rows := trainingRows()

	x, unknown, err := e.Transform(&rows[0])
	require.NoError(t, err)
	assert.Empty(t, unknown)
	assert.Equal(t, []float64{1, 0, 0, 1, 1, 100, 60, 8, 50, 5, 10}, x)

	// first category of every column encodes as zeros
	x, _, err = e.Transform(&rows[1])
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 20, 12, 4, 150, 8.5, 10}, x)
}

func TestTransformUnknownCategory(t *testing.T) {
	e := fitted(t)
	row := models.FeatureRow{BattingTeam: "Kochi Tuskers Kerala", BowlingTeam: "MI", Venue: "Nehru Stadium", Season: "2019"}

	x, unknown, err := e.Transform(&row)
	require.NoError(t, err)
	assert.Equal(t, []UnknownCategory{
		{Column: models.ColumnBattingTeam, Value: "Kochi Tuskers Kerala"},
		{Column: models.ColumnVenue, Value: "Nehru Stadium"},
	}, unknown)
	assert.Equal(t, []float64{0, 0, 1, 0, 1, 0, 0, 0, 0, 0, 0}, x)
	assert.Equal(t, `batting_team="Kochi Tuskers Kerala"`, unknown[0].String())
}

func TestTransformNotFitted(t *testing.T) {
	row := trainingRows()[0]
	_, _, err := New().Transform(&row)
	assert.True(t, errors.Is(err, ErrNotFitted))
}

func TestFitEmpty(t *testing.T) {
	assert.True(t, errors.Is(New().Fit(nil), ErrNoRows))
}

func TestTransformAll(t *testing.T) {
	e := fitted(t)

	xs, err := e.TransformAll(trainingRows())
	require.NoError(t, err)
	require.Len(t, xs, 3)
	for _, x := range xs {
		assert.Len(t, x, e.Width())
	}
}

func TestSaveLoad(t *testing.T) {
	e := fitted(t)
	path := filepath.Join(t.TempDir(), "transformer.json")
	require.NoError(t, e.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, e.FeatureNames(), loaded.FeatureNames())

	rows := trainingRows()
	want, _, _ := e.Transform(&rows[2])
	got, _, err := loaded.Transform(&rows[2])
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadColumnMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transformer.json")
	data, err := json.Marshal(OneHotEncoder{
		Categorical: []string{"team"},
		Numeric:     models.NumericColumns,
		Categories:  [][]string{{"MI"}},
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = Load(path)
	assert.True(t, errors.Is(err, ErrColumnMismatch))
}

func TestSaveNotFitted(t *testing.T) {
	err := New().Save(filepath.Join(t.TempDir(), "transformer.json"))
	assert.True(t, errors.Is(err, ErrNotFitted))
}
