package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestMatchRecordIsEligible(t *testing.T) {
	tests := []struct {
		name  string
		match MatchRecord
		want  bool
	}{
		{"normal with winner", MatchRecord{Result: ResultNormal, Winner: strPtr("MI")}, true},
		{"rain rule applied", MatchRecord{Result: ResultNormal, Winner: strPtr("MI"), RainRuleApplied: true}, false},
		{"tie", MatchRecord{Result: ResultTie, Winner: strPtr("MI")}, false},
		{"no result", MatchRecord{Result: ResultNoResult}, false},
		{"missing winner", MatchRecord{Result: ResultNormal}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.match.IsEligible())
		})
	}
}

func TestMatchRecordWinnerName(t *testing.T) {
	m := MatchRecord{}
	assert.Equal(t, "", m.WinnerName())

	m.Winner = strPtr("Chennai Super Kings")
	assert.Equal(t, "Chennai Super Kings", m.WinnerName())
}

func TestDeliveryBallsBowled(t *testing.T) {
	tests := []struct {
		over, ball, want int
	}{
		{1, 1, 1},
		{1, 6, 6},
		{2, 1, 7},
		{20, 6, 120},
		{21, 1, 121},
		{1, 7, 7},
	}

	for _, tt := range tests {
		d := DeliveryRecord{Over: tt.over, Ball: tt.ball}
		assert.Equal(t, tt.want, d.BallsBowled(), "over %d ball %d", tt.over, tt.ball)
	}
}

func TestDeliveryIsWicket(t *testing.T) {
	d := DeliveryRecord{}
	assert.False(t, d.IsWicket())

	d.PlayerDismissed = strPtr("SK Raina")
	assert.True(t, d.IsWicket())
}

func TestFeatureRowColumns(t *testing.T) {
	row := FeatureRow{
		BattingTeam:     "MI",
		BowlingTeam:     "CSK",
		Venue:           "Wankhede Stadium",
		Season:          "2019",
		RunsLeft:        100,
		BallsLeft:       60,
		WicketsLeft:     7,
		TotalRuns:       180,
		RunRate:         8,
		RequiredRunRate: 10,
	}

	assert.Equal(t, []string{"MI", "CSK", "Wankhede Stadium", "2019"}, row.Categories())
	assert.Equal(t, []float64{100, 60, 7, 180, 8, 10}, row.Numerics())
	assert.Len(t, CategoricalColumns, len(row.Categories()))
	assert.Len(t, NumericColumns, len(row.Numerics()))
	assert.Equal(t, CatalogEntry{BattingTeam: "MI", BowlingTeam: "CSK", Venue: "Wankhede Stadium", Season: "2019"}, EntryOf(&row))
	assert.Equal(t, row.Categories(), EntryOf(&row).Values())
}
