package feed

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"inventory-sync/core/reconcile"
	"inventory-sync/core/utils"

	"go.uber.org/zap"
)

// ErrFeedUnavailable is returned when the feed could not be fully read.
var ErrFeedUnavailable = errors.New("feed unavailable")

// DefaultKeyField is the record field used as natural key when none is configured.
const DefaultKeyField = "certificate_number"

// Source produces the full feed as a lazy sequence.
// Every call re-reads the source from the beginning.
type Source interface {
	FetchAll(ctx context.Context) iter.Seq2[reconcile.Record, error]
}

// NewSource builds the source selected by the configuration: a FileSource when a
// file is configured, the HTTP client otherwise.
func NewSource(cfg Config, logger *zap.Logger) (Source, error) {
	if cfg.File != "" {
		return NewFileSource(cfg.File, cfg.KeyField), nil
	}
	client, err := NewHTTPClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// toRecord splits a raw feed row into its natural key and attributes.
// A missing key yields an empty Key; the reconciler reports it as invalid.
func toRecord(row map[string]any, keyField string) reconcile.Record {
	attrs := make(map[string]any, len(row))
	for k, v := range row {
		if k == keyField {
			continue
		}
		attrs[k] = v
	}
	return reconcile.Record{
		Key:        utils.NormalizeKey(row[keyField]),
		Attributes: attrs,
	}
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %w", ErrFeedUnavailable, fmt.Errorf(format, args...))
}
