// Package datasource opens and parses the raw match and delivery tables.
package datasource

import (
	"context"
	"errors"
	"io"
)

// Source opens a raw table by location
type Source interface {
	// Open returns a reader over the table's bytes; the caller closes it
	Open(ctx context.Context, location string) (io.ReadCloser, error)

	// Name returns the name of the source
	Name() string
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "not_found")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeNotFound     = "not_found"
	ErrCodeInvalidData  = "invalid_data"
	ErrCodeNetworkError = "network_error"
	ErrCodeServerError  = "server_error"
)

// Sentinel errors
var (
	ErrMissingColumn      = errors.New("missing required column")
	ErrUnsupportedScheme  = errors.New("unsupported location scheme")
	ErrEmptyTable         = errors.New("table has no header row")
	ErrCircuitBreakerOpen = errors.New("circuit breaker open")
)

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
