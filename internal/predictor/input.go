package predictor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/yourusername/chase-predictor/internal/encoder"
	"github.com/yourusername/chase-predictor/internal/models"
)

var (
	// ErrOutOfCatalog is returned in strict mode for a value never seen in training
	ErrOutOfCatalog = errors.New("value not in allowed-values catalog")
	// ErrUnknownCategory marks a prediction made with categories the encoder could not represent
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidInput is returned when the match state is out of range
	ErrInvalidInput = errors.New("invalid prediction input")
	// ErrSameTeams is returned when a team is asked to bowl at itself
	ErrSameTeams = errors.New("batting and bowling teams must differ")
)

// Input is the live match state of a chase
type Input struct {
	BattingTeam string `json:"batting_team" validate:"required"`
	BowlingTeam string `json:"bowling_team" validate:"required"`
	Venue       string `json:"venue" validate:"required"`
	Season      string `json:"season" validate:"required"`
	RunsLeft    int    `json:"runs_left" validate:"gte=0"`
	BallsLeft   int    `json:"balls_left" validate:"gte=1,lte=120"`
	WicketsLeft int    `json:"wickets_left" validate:"gte=0,lte=10"`
	TotalRuns   int    `json:"total_runs" validate:"gte=0"`
}

// Entry returns the categorical tuple of the input
func (in Input) Entry() models.CatalogEntry {
	return models.CatalogEntry{
		BattingTeam: in.BattingTeam,
		BowlingTeam: in.BowlingTeam,
		Venue:       in.Venue,
		Season:      in.Season,
	}
}

// BallsBowled returns the balls already bowled in the chase
func (in Input) BallsBowled() int {
	return models.InningsBalls - in.BallsLeft
}

// validateInput checks field ranges and that the two teams differ
func validateInput(v *validator.Validate, in Input) error {
	if err := v.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				if fe.Param() != "" {
					msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s, got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value()))
				} else {
					msgs = append(msgs, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
				}
			}
			return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if in.BattingTeam == in.BowlingTeam {
		return fmt.Errorf("%w: %s", ErrSameTeams, in.BattingTeam)
	}
	return nil
}

// Result is one win probability estimate
type Result struct {
	Input           Input                     `json:"input"`
	RunRate         float64                   `json:"run_rate"`
	RequiredRunRate float64                   `json:"required_run_rate"`
	WinProbability  float64                   `json:"win_probability"`
	LoseProbability float64                   `json:"lose_probability"`
	WinOdds         decimal.Decimal           `json:"win_odds"`
	LoseOdds        decimal.Decimal           `json:"lose_odds"`
	SeenCombination bool                      `json:"seen_combination"`
	Unknown         []encoder.UnknownCategory `json:"unknown,omitempty"`
	ModelVersion    string                    `json:"model_version"`
	Cached          bool                      `json:"cached"`
}

// WinPercent returns the chasing side's probability as a percentage to two places
func (r *Result) WinPercent() decimal.Decimal {
	return decimal.NewFromFloat(r.WinProbability * 100).Round(2)
}

// LosePercent returns the defending side's probability as a percentage to two places
func (r *Result) LosePercent() decimal.Decimal {
	return decimal.NewFromFloat(r.LoseProbability * 100).Round(2)
}

// UnknownError reports the unknown categories as an error, or nil when there were none
func (r *Result) UnknownError() error {
	if len(r.Unknown) == 0 {
		return nil
	}
	parts := make([]string, len(r.Unknown))
	for i, u := range r.Unknown {
		parts[i] = u.String()
	}
	return fmt.Errorf("%w: %s", ErrUnknownCategory, strings.Join(parts, ", "))
}

// fairOdds returns decimal odds 1/p to two places; zero when p is zero
func fairOdds(p float64) decimal.Decimal {
	if p <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).DivRound(decimal.NewFromFloat(p), 2)
}
