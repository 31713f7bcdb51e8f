package reconcile

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"strings"
)

// Diff classifies the feed against the catalog's key -> hash index in a single pass.
//
// Keys only in the feed are created, keys in both with differing hashes are updated,
// keys in both with equal hashes are unchanged and keys only in the catalog are removed.
// Records with an empty key, a key already seen earlier in the feed, or attributes that
// cannot be hashed are excluded and reported in ChangeSet.Invalid; the first occurrence
// of a duplicated key keeps its classification. A key whose first record cannot be
// hashed lands in no bucket, so its catalog entry is left as it is.
//
// If the feed yields an error, Diff stops and returns it. A partial change set is never
// returned because removals computed from an incomplete feed would be wrong.
func Diff(ctx context.Context, records iter.Seq2[Record, error], existing map[string]string) (*ChangeSet, error) {
	cs := &ChangeSet{}
	seen := make(map[string]struct{}, len(existing))

	for rec, err := range records {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key := strings.TrimSpace(rec.Key)
		if key == "" {
			cs.Invalid = append(cs.Invalid, Failure{
				Key:       rec.Key,
				ErrorKind: KindInvalidKey,
				Message:   "record has an empty natural key",
			})
			continue
		}
		if _, dup := seen[key]; dup {
			cs.Invalid = append(cs.Invalid, Failure{
				Key:       key,
				ErrorKind: KindInvalidKey,
				Message:   "natural key appears more than once in the feed",
			})
			continue
		}

		// A present key is never removed, even when its record is unusable.
		seen[key] = struct{}{}

		hash, err := ContentHash(rec.Attributes)
		if err != nil {
			cs.Invalid = append(cs.Invalid, Failure{
				Key:       key,
				ErrorKind: KindInvalidKey,
				Message:   fmt.Sprintf("attributes cannot be hashed: %v", err),
			})
			continue
		}

		current, exists := existing[key]
		switch {
		case !exists:
			cs.ToCreate = append(cs.ToCreate, Item{Key: key, Attributes: rec.Attributes, Hash: hash})
		case current != hash:
			cs.ToUpdate = append(cs.ToUpdate, Item{Key: key, Attributes: rec.Attributes, Hash: hash})
		default:
			cs.Unchanged = append(cs.Unchanged, key)
		}
	}

	for key := range existing {
		if _, ok := seen[key]; !ok {
			cs.ToRemove = append(cs.ToRemove, key)
		}
	}

	// Sort buckets by key for deterministic output
	sort.Slice(cs.ToCreate, func(i, j int) bool { return cs.ToCreate[i].Key < cs.ToCreate[j].Key })
	sort.Slice(cs.ToUpdate, func(i, j int) bool { return cs.ToUpdate[i].Key < cs.ToUpdate[j].Key })
	sort.Strings(cs.Unchanged)
	sort.Strings(cs.ToRemove)

	return cs, nil
}

// Size returns the number of classified keys.
func (cs *ChangeSet) Size() int {
	return len(cs.ToCreate) + len(cs.ToUpdate) + len(cs.Unchanged) + len(cs.ToRemove)
}

// IsNoop reports whether applying the change set would only refresh timestamps.
func (cs *ChangeSet) IsNoop() bool {
	return len(cs.ToCreate) == 0 && len(cs.ToUpdate) == 0 && len(cs.ToRemove) == 0
}
