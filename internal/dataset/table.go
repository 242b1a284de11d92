// Package dataset persists the engineered feature table and the allowed-values catalog.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourusername/chase-predictor/internal/models"
)

// ErrHeaderMismatch is returned when a persisted table has unexpected columns
var ErrHeaderMismatch = errors.New("unexpected table header")

// FeatureColumns is the persisted column order of the feature table
var FeatureColumns = []string{
	models.ColumnMatchID,
	models.ColumnBattingTeam,
	models.ColumnBowlingTeam,
	models.ColumnVenue,
	models.ColumnSeason,
	models.ColumnRunsLeft,
	models.ColumnBallsLeft,
	models.ColumnWicketsLeft,
	models.ColumnTotalRuns,
	models.ColumnRunRate,
	models.ColumnRequiredRunRate,
	models.ColumnResult,
}

// FeatureTable is the flat training table, one row per replayed delivery
type FeatureTable struct {
	Rows []models.FeatureRow
}

// Len returns the number of rows
func (t *FeatureTable) Len() int {
	return len(t.Rows)
}

// Matches returns the number of distinct matches in the table
func (t *FeatureTable) Matches() int {
	seen := make(map[int64]struct{})
	for i := range t.Rows {
		seen[t.Rows[i].MatchID] = struct{}{}
	}
	return len(seen)
}

// Labels returns the label column as floats
func (t *FeatureTable) Labels() []float64 {
	y := make([]float64, len(t.Rows))
	for i := range t.Rows {
		y[i] = float64(t.Rows[i].Result)
	}
	return y
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteCSV writes the table with a header row
func (t *FeatureTable) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureColumns); err != nil {
		return err
	}

	record := make([]string, len(FeatureColumns))
	for i := range t.Rows {
		r := &t.Rows[i]
		record[0] = strconv.FormatInt(r.MatchID, 10)
		record[1] = r.BattingTeam
		record[2] = r.BowlingTeam
		record[3] = r.Venue
		record[4] = r.Season
		record[5] = strconv.Itoa(r.RunsLeft)
		record[6] = strconv.Itoa(r.BallsLeft)
		record[7] = strconv.Itoa(r.WicketsLeft)
		record[8] = strconv.Itoa(r.TotalRuns)
		record[9] = formatFloat(r.RunRate)
		record[10] = formatFloat(r.RequiredRunRate)
		record[11] = strconv.Itoa(r.Result)
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadFeatureTable parses a table written by WriteCSV
func ReadFeatureTable(r io.Reader) (*FeatureTable, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(FeatureColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read feature table header: %w", err)
	}
	if err := checkHeader(header, FeatureColumns); err != nil {
		return nil, err
	}

	table := &FeatureTable{}
	line := 1
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return table, nil
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("feature table: %w", err)
		}

		row, err := parseFeatureRow(record)
		if err != nil {
			return nil, fmt.Errorf("feature table line %d: %w", line, err)
		}
		table.Rows = append(table.Rows, row)
	}
}

func parseFeatureRow(record []string) (models.FeatureRow, error) {
	var (
		row  models.FeatureRow
		err  error
		ints [5]int
	)

	if row.MatchID, err = strconv.ParseInt(record[0], 10, 64); err != nil {
		return row, fmt.Errorf("%s: %w", models.ColumnMatchID, err)
	}
	for i, idx := range []int{5, 6, 7, 8, 11} {
		if ints[i], err = strconv.Atoi(record[idx]); err != nil {
			return row, fmt.Errorf("%s: %w", FeatureColumns[idx], err)
		}
	}
	if row.RunRate, err = strconv.ParseFloat(record[9], 64); err != nil {
		return row, fmt.Errorf("%s: %w", models.ColumnRunRate, err)
	}
	if row.RequiredRunRate, err = strconv.ParseFloat(record[10], 64); err != nil {
		return row, fmt.Errorf("%s: %w", models.ColumnRequiredRunRate, err)
	}

	row.BattingTeam = record[1]
	row.BowlingTeam = record[2]
	row.Venue = record[3]
	row.Season = record[4]
	row.RunsLeft, row.BallsLeft, row.WicketsLeft, row.TotalRuns, row.Result = ints[0], ints[1], ints[2], ints[3], ints[4]
	return row, nil
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("%w: got %d columns, want %d", ErrHeaderMismatch, len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("%w: column %d is %q, want %q", ErrHeaderMismatch, i+1, got[i], want[i])
		}
	}
	return nil
}

// writeFile creates parent directories and writes via fn
func writeFile(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// SaveFeatureTable writes the table to path
func SaveFeatureTable(t *FeatureTable, path string) error {
	return writeFile(path, t.WriteCSV)
}

// LoadFeatureTable reads the table at path
func LoadFeatureTable(path string) (*FeatureTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFeatureTable(f)
}
