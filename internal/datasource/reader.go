package datasource

import (
	"context"
	"fmt"
	"io"

	"github.com/yourusername/chase-predictor/internal/models"
)

// TableReader resolves locations to sources and parses the raw tables
type TableReader struct {
	factory *Factory
}

// NewTableReader creates a reader backed by the given factory
func NewTableReader(factory *Factory) *TableReader {
	return &TableReader{factory: factory}
}

func (r *TableReader) open(ctx context.Context, location string) (io.ReadCloser, error) {
	source, err := r.factory.ForLocation(location)
	if err != nil {
		return nil, err
	}
	if source.Name() == string(FileSourceType) {
		location = StripFileScheme(location)
	}
	return source.Open(ctx, location)
}

// ReadMatches loads the match table at location
func (r *TableReader) ReadMatches(ctx context.Context, location string) ([]models.MatchRecord, error) {
	body, err := r.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	matches, err := ParseMatches(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}
	return matches, nil
}

// ReadDeliveries loads the delivery table at location
func (r *TableReader) ReadDeliveries(ctx context.Context, location string) ([]models.DeliveryRecord, error) {
	body, err := r.open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	deliveries, err := ParseDeliveries(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", location, err)
	}
	return deliveries, nil
}
