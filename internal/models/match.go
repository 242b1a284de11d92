// Package models holds the match, delivery and feature records shared across the pipeline.
package models

// ResultType classifies how a match ended
type ResultType string

const (
	ResultNormal   ResultType = "normal"
	ResultTie      ResultType = "tie"
	ResultNoResult ResultType = "no result"
)

// MatchRecord represents one historical match
type MatchRecord struct {
	ID              int64      `json:"id" validate:"required"`
	Season          string     `json:"season"`
	Team1           string     `json:"team1" validate:"required"`
	Team2           string     `json:"team2" validate:"required"`
	Winner          *string    `json:"winner"`
	Venue           string     `json:"venue"`
	Result          ResultType `json:"result"`
	RainRuleApplied bool       `json:"dl_applied"`
}

// IsEligible reports whether the match can be used for feature extraction:
// a normal result, no rain-rule adjustment and a named winner.
func (m *MatchRecord) IsEligible() bool {
	return m.Result == ResultNormal && !m.RainRuleApplied && m.Winner != nil
}

// WinnerName returns the winner or an empty string when there is none
func (m *MatchRecord) WinnerName() string {
	if m.Winner == nil {
		return ""
	}
	return *m.Winner
}
