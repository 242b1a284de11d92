package models

// BallsPerOver is the number of legal balls in an over
const BallsPerOver = 6

// InningsBalls is the length of a full T20 innings in balls
const InningsBalls = 120

// MaxWickets is the number of wickets a side can lose
const MaxWickets = 10

// ChaseInnings is the innings number of the side batting second
const ChaseInnings = 2

// DeliveryRecord represents one ball bowled
type DeliveryRecord struct {
	MatchID         int64   `json:"match_id"`
	Innings         int     `json:"inning"`
	Over            int     `json:"over"`
	Ball            int     `json:"ball"`
	BattingTeam     string  `json:"batting_team"`
	BowlingTeam     string  `json:"bowling_team"`
	TotalRuns       int     `json:"total_runs"`
	PlayerDismissed *string `json:"player_dismissed"`
}

// IsWicket reports whether a player was dismissed on this ball
func (d *DeliveryRecord) IsWicket() bool {
	return d.PlayerDismissed != nil
}

// BallsBowled returns the number of balls bowled in the innings through this delivery.
// No bounds are applied; out-of-range over or ball numbers flow straight through.
func (d *DeliveryRecord) BallsBowled() int {
	return (d.Over-1)*BallsPerOver + d.Ball
}

// ChaseDelivery is a second-innings delivery joined with its match attributes
type ChaseDelivery struct {
	DeliveryRecord
	Team1  string
	Team2  string
	Winner string
	Venue  string
	Season string
}
