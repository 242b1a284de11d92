package datasource

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Values read as missing, matching the usual CSV export conventions for nulls
var naValues = map[string]bool{
	"": true, "NA": true, "N/A": true, "n/a": true, "#N/A": true, "NaN": true, "nan": true,
	"NULL": true, "null": true, "None": true, "<NA>": true,
}

// Required columns of the raw match table
var matchColumns = []string{"id", "season", "team1", "team2", "result", "dl_applied", "winner", "venue"}

// Required columns of the raw delivery table
var deliveryColumns = []string{
	"match_id", "inning", "batting_team", "bowling_team", "over", "ball", "total_runs", "player_dismissed",
}

// ParseError locates a malformed cell
type ParseError struct {
	Table  string
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d column %s: %v", e.Table, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// row wraps one CSV record with header lookup
type row struct {
	table  string
	line   int
	index  map[string]int
	record []string
}

func (r row) str(column string) string {
	return strings.TrimSpace(r.record[r.index[column]])
}

func (r row) optional(column string) *string {
	v := r.str(column)
	if naValues[v] {
		return nil
	}
	return &v
}

func (r row) integer(column string) (int, error) {
	v := r.str(column)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &ParseError{Table: r.table, Line: r.line, Column: column, Err: err}
	}
	return n, nil
}

func (r row) boolean(column string) (bool, error) {
	v := r.str(column)
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, &ParseError{Table: r.table, Line: r.line, Column: column, Err: err}
	}
	return b, nil
}

// headerIndex maps lower-cased header names to their positions
func headerIndex(table string, header []string, required []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", table, ErrMissingColumn, strings.Join(missing, ", "))
	}
	return index, nil
}

// readTable streams records to fn after validating the header
func readTable(table string, r io.Reader, required []string, fn func(row) error) error {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%s: %w", table, ErrEmptyTable)
	}
	if err != nil {
		return fmt.Errorf("%s: failed to read header: %w", table, err)
	}

	index, err := headerIndex(table, header, required)
	if err != nil {
		return err
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("%s: %w", table, err)
		}
		if err := fn(row{table: table, line: line, index: index, record: record}); err != nil {
			return err
		}
	}
}

// ParseMatches reads the raw match table
func ParseMatches(r io.Reader) ([]models.MatchRecord, error) {
	var matches []models.MatchRecord

	err := readTable("matches", r, matchColumns, func(rw row) error {
		id, err := rw.integer("id")
		if err != nil {
			return err
		}
		dl, err := rw.boolean("dl_applied")
		if err != nil {
			return err
		}

		matches = append(matches, models.MatchRecord{
			ID:              int64(id),
			Season:          rw.str("season"),
			Team1:           rw.str("team1"),
			Team2:           rw.str("team2"),
			Winner:          rw.optional("winner"),
			Venue:           rw.str("venue"),
			Result:          models.ResultType(strings.ToLower(rw.str("result"))),
			RainRuleApplied: dl,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// ParseDeliveries reads the raw ball-by-ball table
func ParseDeliveries(r io.Reader) ([]models.DeliveryRecord, error) {
	var deliveries []models.DeliveryRecord

	err := readTable("deliveries", r, deliveryColumns, func(rw row) error {
		matchID, err := rw.integer("match_id")
		if err != nil {
			return err
		}
		innings, err := rw.integer("inning")
		if err != nil {
			return err
		}
		over, err := rw.integer("over")
		if err != nil {
			return err
		}
		ball, err := rw.integer("ball")
		if err != nil {
			return err
		}
		runs, err := rw.integer("total_runs")
		if err != nil {
			return err
		}

		deliveries = append(deliveries, models.DeliveryRecord{
			MatchID:         int64(matchID),
			Innings:         innings,
			Over:            over,
			Ball:            ball,
			BattingTeam:     rw.str("batting_team"),
			BowlingTeam:     rw.str("bowling_team"),
			TotalRuns:       runs,
			PlayerDismissed: rw.optional("player_dismissed"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deliveries, nil
}
