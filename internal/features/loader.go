// Package features turns raw match and delivery records into labeled per-ball rows.
package features

import (
	"sort"

	"github.com/yourusername/chase-predictor/internal/models"
)

// SelectEligible indexes the matches that pass the eligibility filter by id.
// When an id repeats, the first record wins.
func SelectEligible(matches []models.MatchRecord) map[int64]*models.MatchRecord {
	eligible := make(map[int64]*models.MatchRecord, len(matches))
	for i := range matches {
		m := &matches[i]
		if !m.IsEligible() {
			continue
		}
		if _, seen := eligible[m.ID]; seen {
			continue
		}
		eligible[m.ID] = m
	}
	return eligible
}

// SelectChaseDeliveries keeps second-innings deliveries of eligible matches and
// joins each to its match attributes. Input order is preserved.
func SelectChaseDeliveries(deliveries []models.DeliveryRecord, eligible map[int64]*models.MatchRecord) []models.ChaseDelivery {
	out := make([]models.ChaseDelivery, 0, len(deliveries)/2)
	for _, d := range deliveries {
		if d.Innings != models.ChaseInnings {
			continue
		}
		m, ok := eligible[d.MatchID]
		if !ok {
			continue
		}
		out = append(out, models.ChaseDelivery{
			DeliveryRecord: d,
			Team1:          m.Team1,
			Team2:          m.Team2,
			Winner:         m.WinnerName(),
			Venue:          m.Venue,
			Season:         m.Season,
		})
	}
	return out
}

// SortForReplay orders deliveries by (match id, over, ball). The sort is stable,
// so deliveries sharing an over and ball number keep their source order.
func SortForReplay(deliveries []models.ChaseDelivery) {
	sort.SliceStable(deliveries, func(i, j int) bool {
		a, b := deliveries[i], deliveries[j]
		if a.MatchID != b.MatchID {
			return a.MatchID < b.MatchID
		}
		if a.Over != b.Over {
			return a.Over < b.Over
		}
		return a.Ball < b.Ball
	})
}

// Prepare runs the loader contract end to end: filter, join and sort.
func Prepare(matches []models.MatchRecord, deliveries []models.DeliveryRecord) []models.ChaseDelivery {
	eligible := SelectEligible(matches)
	joined := SelectChaseDeliveries(deliveries, eligible)
	SortForReplay(joined)
	return joined
}

// GroupByMatch splits replay-sorted deliveries into contiguous per-match groups.
func GroupByMatch(sorted []models.ChaseDelivery) [][]models.ChaseDelivery {
	var groups [][]models.ChaseDelivery
	start := 0
	for i := 1; i <= len(sorted); i++ {
		if i == len(sorted) || sorted[i].MatchID != sorted[start].MatchID {
			groups = append(groups, sorted[start:i])
			start = i
		}
	}
	return groups
}
