package feed

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"

	"inventory-sync/core/reconcile"

	"gopkg.in/yaml.v3"
)

// FileSource serves the feed from a local YAML or JSON file.
// The file holds either a list of rows or a page document with a "data" list.
type FileSource struct {
	path     string
	keyField string
}

// NewFileSource creates a source reading path on every FetchAll.
func NewFileSource(path, keyField string) *FileSource {
	if keyField == "" {
		keyField = DefaultKeyField
	}
	return &FileSource{path: path, keyField: keyField}
}

func (s *FileSource) FetchAll(ctx context.Context) iter.Seq2[reconcile.Record, error] {
	return func(yield func(reconcile.Record, error) bool) {
		rows, err := s.load()
		if err != nil {
			yield(reconcile.Record{}, unavailable("%s: %w", s.path, err))
			return
		}
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				yield(reconcile.Record{}, err)
				return
			}
			if !yield(toRecord(row, s.keyField), nil) {
				return
			}
		}
	}
}

func (s *FileSource) load() ([]map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}

	// YAML is a superset of JSON, one decoder covers both formats.
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse feed file: %w", err)
	}

	var list []any
	switch v := doc.(type) {
	case nil:
		return nil, nil
	case []any:
		list = v
	case map[string]any:
		items, ok := v["data"].([]any)
		if !ok {
			return nil, errors.New("feed file has no data list")
		}
		list = items
	default:
		return nil, fmt.Errorf("unexpected feed file root %T", doc)
	}

	rows := make([]map[string]any, 0, len(list))
	for i, elem := range list {
		row, ok := elem.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("row %d is %T, expected a mapping", i, elem)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
