package dataset

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/chase-predictor/internal/models"
)

func sampleRows() []models.FeatureRow {
	return []models.FeatureRow{
		{MatchID: 1, BattingTeam: "RCB", BowlingTeam: "SRH", Venue: "Hyderabad", Season: "2017",
			RunsLeft: 168, BallsLeft: 119, WicketsLeft: 10, TotalRuns: 4, RunRate: 24, RequiredRunRate: 168.0 * 6 / 119, Result: 0},
		{MatchID: 1, BattingTeam: "RCB", BowlingTeam: "SRH", Venue: "Hyderabad", Season: "2017",
			RunsLeft: 167, BallsLeft: 118, WicketsLeft: 9, TotalRuns: 5, RunRate: 15, RequiredRunRate: 167.0 * 6 / 118, Result: 0},
		{MatchID: 2, BattingTeam: "Rising Pune Supergiant", BowlingTeam: "Mumbai Indians", Venue: "Pune, MCA", Season: "2017",
			RunsLeft: -2, BallsLeft: 0, WicketsLeft: 3, TotalRuns: 186, RunRate: 9.3, RequiredRunRate: 0, Result: 1},
	}
}

func TestFeatureTableRoundTrip(t *testing.T) {
	table := &FeatureTable{Rows: sampleRows()}

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	header := strings.SplitN(buf.String(), "\n", 2)[0]
	assert.Equal(t, strings.Join(FeatureColumns, ","), header)

	got, err := ReadFeatureTable(&buf)
	require.NoError(t, err)
	assert.Equal(t, table.Rows, got.Rows)
}

func TestFeatureTableCounts(t *testing.T) {
	table := &FeatureTable{Rows: sampleRows()}

	assert.Equal(t, 3, table.Len())
	assert.Equal(t, 2, table.Matches())
	assert.Equal(t, []float64{0, 0, 1}, table.Labels())
}

func TestReadFeatureTableHeaderMismatch(t *testing.T) {
	_, err := ReadFeatureTable(strings.NewReader("a,b,c,d,e,f,g,h,i,j,k,l\n"))
	assert.True(t, errors.Is(err, ErrHeaderMismatch))
}

func TestReadFeatureTableBadValue(t *testing.T) {
	input := strings.Join(FeatureColumns, ",") + "\n1,A,B,V,2017,x,1,1,1,1,1,1\n"

	_, err := ReadFeatureTable(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), models.ColumnRunsLeft)
}

func TestSaveLoadFeatureTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "model_data.csv")
	table := &FeatureTable{Rows: sampleRows()}

	require.NoError(t, SaveFeatureTable(table, path))
	got, err := LoadFeatureTable(path)
	require.NoError(t, err)
	assert.Equal(t, table.Rows, got.Rows)
}

func TestBuildCatalogIsExactProjection(t *testing.T) {
	rows := sampleRows()
	catalog := BuildCatalog(rows)

	// every row tuple is present
	for i := range rows {
		assert.True(t, catalog.Contains(models.EntryOf(&rows[i])))
	}

	// and nothing else is
	projected := make(map[models.CatalogEntry]bool)
	for i := range rows {
		projected[models.EntryOf(&rows[i])] = true
	}
	for _, e := range catalog.Entries() {
		assert.True(t, projected[e], "catalog entry %+v not in table", e)
	}
	assert.Equal(t, len(projected), catalog.Len())
}

func TestCatalogFirstSeenOrder(t *testing.T) {
	c := NewCatalog()
	a := models.CatalogEntry{BattingTeam: "B", BowlingTeam: "A", Venue: "V", Season: "2018"}
	b := models.CatalogEntry{BattingTeam: "A", BowlingTeam: "B", Venue: "V", Season: "2017"}

	assert.True(t, c.Add(a))
	assert.True(t, c.Add(b))
	assert.False(t, c.Add(a))
	assert.Equal(t, []models.CatalogEntry{a, b}, c.Entries())
	assert.False(t, c.Contains(models.CatalogEntry{BattingTeam: "A"}))
}

func TestCatalogValues(t *testing.T) {
	catalog := BuildCatalog(sampleRows())

	teams, err := catalog.Values(models.ColumnBattingTeam)
	require.NoError(t, err)
	assert.Equal(t, []string{"RCB", "Rising Pune Supergiant"}, teams)

	seasons, err := catalog.Values(models.ColumnSeason)
	require.NoError(t, err)
	assert.Equal(t, []string{"2017"}, seasons)

	_, err = catalog.Values(models.ColumnRunsLeft)
	assert.True(t, errors.Is(err, ErrUnknownColumn))
}

func TestCatalogRoundTrip(t *testing.T) {
	catalog := BuildCatalog(sampleRows())
	path := filepath.Join(t.TempDir(), "model_input_template.csv")

	require.NoError(t, SaveCatalog(catalog, path))
	got, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Equal(t, catalog.Entries(), got.Entries())
}
