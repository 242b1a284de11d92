package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
)

// FileSource reads tables from the local filesystem
type FileSource struct{}

// Open opens the file at location
func (FileSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, NewDataSourceError("file", ErrCodeNotFound, fmt.Sprintf("table not found: %s", location), err)
		}
		return nil, NewDataSourceError("file", ErrCodeInvalidData, fmt.Sprintf("failed to open %s", location), err)
	}
	return f, nil
}

// Name returns the data source name
func (FileSource) Name() string {
	return "file"
}

// HTTPSource downloads tables over http or https
type HTTPSource struct {
	client *RateLimitedHTTPClient
}

// NewHTTPSource creates an HTTP-backed source
func NewHTTPSource(client *RateLimitedHTTPClient) *HTTPSource {
	return &HTTPSource{client: client}
}

// Open downloads the table at location
func (s *HTTPSource) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	resp, err := s.client.Get(ctx, location)
	if err != nil {
		return nil, NewDataSourceError("http", ErrCodeNetworkError, "failed to download table", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, nil
	case resp.StatusCode == http.StatusNotFound:
		drain(resp.Body)
		return nil, NewDataSourceError("http", ErrCodeNotFound, fmt.Sprintf("table not found: %s", location), nil)
	default:
		drain(resp.Body)
		return nil, NewDataSourceError("http", ErrCodeServerError, fmt.Sprintf("unexpected status: %d", resp.StatusCode), nil)
	}
}

// Name returns the data source name
func (s *HTTPSource) Name() string {
	return "http"
}
