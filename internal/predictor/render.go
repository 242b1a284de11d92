package predictor

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	barFilled = "█"
	barEmpty  = "░"
)

// RenderBars draws the win and lose percentages as two horizontal bars of the given width
func RenderBars(w io.Writer, r *Result, width int) error {
	if width <= 0 {
		width = 40
	}

	labels := []string{r.Input.BattingTeam, r.Input.BowlingTeam}
	probs := []float64{r.WinProbability, r.LoseProbability}
	pcts := []string{r.WinPercent().StringFixed(2), r.LosePercent().StringFixed(2)}

	pad := 0
	for _, l := range labels {
		pad = max(pad, utf8.RuneCountInString(l))
	}

	if _, err := fmt.Fprintln(w, "Win Probability"); err != nil {
		return err
	}
	for i, label := range labels {
		filled := int(probs[i]*float64(width) + 0.5)
		filled = min(max(filled, 0), width)
		bar := strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, width-filled)
		gap := strings.Repeat(" ", pad-utf8.RuneCountInString(label))
		if _, err := fmt.Fprintf(w, "%s%s  %s  %s%%\n", label, gap, bar, pcts[i]); err != nil {
			return err
		}
	}
	return nil
}
