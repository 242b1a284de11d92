package features

import "github.com/yourusername/chase-predictor/internal/models"

// Anomaly kinds reported by Audit
const (
	AnomalyOverBelowOne  = "over_below_one"
	AnomalyBallBelowOne  = "ball_below_one"
	AnomalyBeyondInnings = "beyond_innings"
)

// Audit lists the ways a delivery falls outside a 20-over innings. It never
// alters the delivery; callers decide whether to log or count.
func Audit(d models.DeliveryRecord) []string {
	var kinds []string
	if d.Over < 1 {
		kinds = append(kinds, AnomalyOverBelowOne)
	}
	if d.Ball < 1 {
		kinds = append(kinds, AnomalyBallBelowOne)
	}
	if d.BallsBowled() > models.InningsBalls {
		kinds = append(kinds, AnomalyBeyondInnings)
	}
	return kinds
}
