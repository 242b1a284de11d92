package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/yourusername/chase-predictor/internal/models"
)

// Catalog holds the de-duplicated categorical tuples seen in training,
// in first-seen order.
type Catalog struct {
	entries []models.CatalogEntry
	index   map[models.CatalogEntry]struct{}
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{index: make(map[models.CatalogEntry]struct{})}
}

// BuildCatalog projects the feature rows onto their categorical tuples
func BuildCatalog(rows []models.FeatureRow) *Catalog {
	c := NewCatalog()
	for i := range rows {
		c.Add(models.EntryOf(&rows[i]))
	}
	return c
}

// Add inserts an entry; duplicates are ignored. Reports whether it was new.
func (c *Catalog) Add(e models.CatalogEntry) bool {
	if _, ok := c.index[e]; ok {
		return false
	}
	c.index[e] = struct{}{}
	c.entries = append(c.entries, e)
	return true
}

// Contains reports whether the tuple was seen in training
func (c *Catalog) Contains(e models.CatalogEntry) bool {
	_, ok := c.index[e]
	return ok
}

// Len returns the number of distinct tuples
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the tuples in first-seen order
func (c *Catalog) Entries() []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Values returns the sorted distinct values of one categorical column
func (c *Catalog) Values(column string) ([]string, error) {
	pick, err := selector(column)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var values []string
	for _, e := range c.entries {
		v := pick(e)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}

// ErrUnknownColumn is returned for a column that is not categorical
var ErrUnknownColumn = errors.New("not a categorical column")

func selector(column string) (func(models.CatalogEntry) string, error) {
	switch column {
	case models.ColumnBattingTeam:
		return func(e models.CatalogEntry) string { return e.BattingTeam }, nil
	case models.ColumnBowlingTeam:
		return func(e models.CatalogEntry) string { return e.BowlingTeam }, nil
	case models.ColumnVenue:
		return func(e models.CatalogEntry) string { return e.Venue }, nil
	case models.ColumnSeason:
		return func(e models.CatalogEntry) string { return e.Season }, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, column)
	}
}

// WriteCSV writes the catalog with a header row
func (c *Catalog) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(models.CategoricalColumns); err != nil {
		return err
	}
	for _, e := range c.entries {
		if err := cw.Write([]string{e.BattingTeam, e.BowlingTeam, e.Venue, e.Season}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCatalog parses a catalog written by WriteCSV
func ReadCatalog(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(models.CategoricalColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	if err := checkHeader(header, models.CategoricalColumns); err != nil {
		return nil, err
	}

	c := NewCatalog()
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return c, nil
		}
		if err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		c.Add(models.CatalogEntry{
			BattingTeam: record[0],
			BowlingTeam: record[1],
			Venue:       record[2],
			Season:      record[3],
		})
	}
}

// SaveCatalog writes the catalog to path
func SaveCatalog(c *Catalog, path string) error {
	return writeFile(path, c.WriteCSV)
}

// LoadCatalog reads the catalog at path
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCatalog(f)
}
