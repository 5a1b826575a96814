package datasource

import (
	"fmt"
	"io"

	"github.com/vanderheijden86/orgview/pkg/config"
)

// Open builds the Source selected by cfg. The returned closer releases any
// held resources (the SQLite handle); it is never nil.
func Open(cfg config.SourceConfig) (Source, io.Closer, error) {
	kind := SourceType(cfg.Kind)
	if kind == "" {
		kind = DetectType(cfg.Path)
	}
	switch kind {
	case SourceTypeFile:
		src, err := NewFileSource(cfg.Path)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return src, nopCloser{}, nil
	case SourceTypeSQLite:
		src, err := NewSQLiteSource(cfg.Path)
		if err != nil {
			return nil, nopCloser{}, fmt.Errorf("failed to open SQLite source %s: %w", cfg.Path, err)
		}
		return src, src, nil
	case SourceTypeGraph, "":
		src, err := NewGraphSource(GraphOptions{
			BaseURL:      cfg.Graph.BaseURL,
			TenantID:     cfg.Graph.TenantID,
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret(),
			Timeout:      cfg.Graph.Timeout,
		})
		if err != nil {
			return nil, nopCloser{}, err
		}
		return src, nopCloser{}, nil
	}
	return nil, nopCloser{}, fmt.Errorf("unknown source type: %s", kind)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
