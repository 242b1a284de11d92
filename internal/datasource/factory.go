package datasource

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// SourceType represents the type of data source
type SourceType string

const (
	// FileSourceType reads local paths
	FileSourceType SourceType = "file"
	// HTTPSourceType downloads http and https URLs
	HTTPSourceType SourceType = "http"
)

// Factory creates Source implementations based on a table location
type Factory struct {
	httpConfig HTTPClientConfig
	httpClient *RateLimitedHTTPClient
	logger     *logrus.Logger
}

// NewFactory creates a new data source factory
func NewFactory(httpConfig HTTPClientConfig, logger *logrus.Logger) *Factory {
	return &Factory{
		httpConfig: httpConfig,
		logger:     logger,
	}
}

// TypeOf classifies a location by its scheme
func TypeOf(location string) (SourceType, error) {
	if !strings.Contains(location, "://") {
		return FileSourceType, nil
	}
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("invalid location %q: %w", location, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "file":
		return FileSourceType, nil
	case "http", "https":
		return HTTPSourceType, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// ForLocation returns the source able to open location
func (f *Factory) ForLocation(location string) (Source, error) {
	sourceType, err := TypeOf(location)
	if err != nil {
		return nil, err
	}

	switch sourceType {
	case HTTPSourceType:
		if f.httpClient == nil {
			f.httpClient = NewRateLimitedHTTPClient(f.httpConfig, f.logger)
		}
		return NewHTTPSource(f.httpClient), nil
	default:
		return FileSource{}, nil
	}
}

// StripFileScheme turns file:// URLs into plain paths
func StripFileScheme(location string) string {
	return strings.TrimPrefix(location, "file://")
}

// Close releases the shared HTTP client, if one was created
func (f *Factory) Close() error {
	if f.httpClient != nil {
		return f.httpClient.Close()
	}
	return nil
}
