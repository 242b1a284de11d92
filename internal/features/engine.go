package features

import (
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/models"
)

// ChaseState is the running state of one match's second innings
type ChaseState struct {
	Runs    int
	Wickets int
}

// MatchContext holds the per-match constants of a replay
type MatchContext struct {
	MatchID     int64
	Target      int
	ChasingTeam string
	BowlingTeam string
	Winner      string
	Venue       string
	Season      string
}

// Label is 1 when the chasing side won the match, 0 otherwise
func (mc MatchContext) Label() int {
	if mc.ChasingTeam == mc.Winner {
		return 1
	}
	return 0
}

// NewMatchContext derives the per-match constants from a sorted, non-empty group.
// The target is the sum of runs over every delivery in the group.
func NewMatchContext(group []models.ChaseDelivery) MatchContext {
	first := group[0]
	target := 0
	for _, d := range group {
		target += d.TotalRuns
	}
	return MatchContext{
		MatchID:     first.MatchID,
		Target:      target,
		ChasingTeam: first.BattingTeam,
		BowlingTeam: first.BowlingTeam,
		Winner:      first.Winner,
		Venue:       first.Venue,
		Season:      first.Season,
	}
}

// Step folds one delivery into the chase state and emits its feature row.
func Step(state ChaseState, mc MatchContext, d models.DeliveryRecord) (ChaseState, models.FeatureRow) {
	state.Runs += d.TotalRuns
	if d.IsWicket() {
		state.Wickets++
	}

	ballsBowled := d.BallsBowled()
	ballsLeft := models.InningsBalls - ballsBowled
	runsLeft := mc.Target - state.Runs
	runRate, requiredRunRate := DeriveRates(state.Runs, ballsBowled, runsLeft, ballsLeft)

	return state, models.FeatureRow{
		MatchID:         mc.MatchID,
		BattingTeam:     mc.ChasingTeam,
		BowlingTeam:     mc.BowlingTeam,
		Venue:           mc.Venue,
		Season:          mc.Season,
		RunsLeft:        runsLeft,
		BallsLeft:       ballsLeft,
		WicketsLeft:     models.MaxWickets - state.Wickets,
		TotalRuns:       state.Runs,
		RunRate:         runRate,
		RequiredRunRate: requiredRunRate,
		Result:          mc.Label(),
	}
}

// ReplayMatch replays one match's deliveries in order, one row per delivery.
func ReplayMatch(group []models.ChaseDelivery) []models.FeatureRow {
	if len(group) == 0 {
		return nil
	}
	_, rows := replay(group)
	return rows
}

func replay(group []models.ChaseDelivery) (MatchContext, []models.FeatureRow) {
	mc := NewMatchContext(group)
	rows := make([]models.FeatureRow, 0, len(group))
	state := ChaseState{}
	for _, d := range group {
		var row models.FeatureRow
		state, row = Step(state, mc, d.DeliveryRecord)
		rows = append(rows, row)
	}
	return mc, rows
}

// Engine replays every match of a prepared delivery set
type Engine struct {
	logger *logger.PipelineLogger
}

// NewEngine creates a feature engine; a nil logger discards output
func NewEngine(log *logger.PipelineLogger) *Engine {
	if log == nil {
		log = logger.NewPipelineLogger(nil)
	}
	return &Engine{logger: log}
}

// Build replays each match group of replay-sorted deliveries and concatenates the rows.
// Out-of-range deliveries are reported but still emitted unchanged.
func (e *Engine) Build(sorted []models.ChaseDelivery) []models.FeatureRow {
	rows := make([]models.FeatureRow, 0, len(sorted))
	for _, group := range GroupByMatch(sorted) {
		for _, d := range group {
			for _, kind := range Audit(d.DeliveryRecord) {
				e.logger.LogDeliveryAnomaly(d.MatchID, d.Over, d.Ball, kind)
				metrics.RecordDeliveryAnomaly(kind)
			}
		}
		mc, matchRows := replay(group)
		e.logger.LogMatchReplay(mc.MatchID, mc.ChasingTeam, len(group), mc.Target, mc.Label())
		metrics.RecordReplay(len(group), len(matchRows))
		rows = append(rows, matchRows...)
	}
	return rows
}
