package features

import "github.com/yourusername/chase-predictor/internal/models"

// SafeDivide returns numerator/denominator, or 0 when the denominator is not
// positive. Both derivation sites go through here so training and inference
// produce the same bits.
func SafeDivide(numerator, denominator float64) float64 {
	if denominator > 0 {
		return numerator / denominator
	}
	return 0
}

// OversDone converts balls bowled to fractional overs
func OversDone(ballsBowled int) float64 {
	return float64(ballsBowled) / models.BallsPerOver
}

// DeriveRates computes the current and required run rates.
// run_rate = runs / overs_done, required_run_rate = runs_left*6 / balls_left,
// each forced to 0 when its denominator is 0.
func DeriveRates(runs, ballsBowled, runsLeft, ballsLeft int) (runRate, requiredRunRate float64) {
	runRate = SafeDivide(float64(runs), OversDone(ballsBowled))
	requiredRunRate = SafeDivide(float64(runsLeft*models.BallsPerOver), float64(ballsLeft))
	return runRate, requiredRunRate
}
