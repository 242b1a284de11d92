package models

// Feature column names, in feature table order
const (
	ColumnMatchID         = "match_id"
	ColumnBattingTeam     = "batting_team"
	ColumnBowlingTeam     = "bowling_team"
	ColumnVenue           = "venue"
	ColumnSeason          = "season"
	ColumnRunsLeft        = "runs_left"
	ColumnBallsLeft       = "balls_left"
	ColumnWicketsLeft     = "wickets_left"
	ColumnTotalRuns       = "total_runs"
	ColumnRunRate         = "run_rate"
	ColumnRequiredRunRate = "required_run_rate"
	ColumnResult          = "result"
)

// CategoricalColumns are the columns one-hot encoded before fitting
var CategoricalColumns = []string{ColumnBattingTeam, ColumnBowlingTeam, ColumnVenue, ColumnSeason}

// NumericColumns are passed through to the model unchanged
var NumericColumns = []string{
	ColumnRunsLeft, ColumnBallsLeft, ColumnWicketsLeft, ColumnTotalRuns, ColumnRunRate, ColumnRequiredRunRate,
}

// FeatureRow is one labeled training row, emitted per delivery
type FeatureRow struct {
	MatchID         int64   `json:"match_id"`
	BattingTeam     string  `json:"batting_team"`
	BowlingTeam     string  `json:"bowling_team"`
	Venue           string  `json:"venue"`
	Season          string  `json:"season"`
	RunsLeft        int     `json:"runs_left"`
	BallsLeft       int     `json:"balls_left"`
	WicketsLeft     int     `json:"wickets_left"`
	TotalRuns       int     `json:"total_runs"`
	RunRate         float64 `json:"run_rate"`
	RequiredRunRate float64 `json:"required_run_rate"`
	Result          int     `json:"result"`
}

// Categories returns the categorical values in CategoricalColumns order
func (r *FeatureRow) Categories() []string {
	return []string{r.BattingTeam, r.BowlingTeam, r.Venue, r.Season}
}

// Numerics returns the numeric values in NumericColumns order
func (r *FeatureRow) Numerics() []float64 {
	return []float64{
		float64(r.RunsLeft),
		float64(r.BallsLeft),
		float64(r.WicketsLeft),
		float64(r.TotalRuns),
		r.RunRate,
		r.RequiredRunRate,
	}
}

// CatalogEntry is one allowed combination of categorical values
type CatalogEntry struct {
	BattingTeam string `json:"batting_team"`
	BowlingTeam string `json:"bowling_team"`
	Venue       string `json:"venue"`
	Season      string `json:"season"`
}

// EntryOf returns the catalog tuple of a feature row
func EntryOf(r *FeatureRow) CatalogEntry {
	return CatalogEntry{
		BattingTeam: r.BattingTeam,
		BowlingTeam: r.BowlingTeam,
		Venue:       r.Venue,
		Season:      r.Season,
	}
}

// Values returns the tuple in CategoricalColumns order
func (e CatalogEntry) Values() []string {
	return []string{e.BattingTeam, e.BowlingTeam, e.Venue, e.Season}
}
