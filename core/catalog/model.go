package catalog

import (
	"encoding/json"
	"time"
)

// TableName is the catalog table shared with the storefront read paths.
const TableName = "catalog_entries"

// Entry is the persisted representation of an inventory item.
// Entries are soft-deleted through Removed and never hard-deleted by the sync engine.
type Entry struct {
	// NaturalKey is the feed's stable identifier (certificate number).
	NaturalKey string `gorm:"column:natural_key;primaryKey;size:191" json:"key"`
	// Attributes is the attribute mapping encoded as JSON.
	Attributes string `gorm:"column:attributes;type:text;not null" json:"-"`
	// ContentHash is the canonical hash of Attributes.
	ContentHash string `gorm:"column:content_hash;size:64;not null" json:"content_hash"`
	// LastSyncedAt is refreshed whenever a run sees the entry in the feed.
	LastSyncedAt time.Time `gorm:"column:last_synced_at" json:"last_synced_at"`
	// Removed marks entries that disappeared from the feed.
	Removed bool `gorm:"column:removed;not null;index" json:"removed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for GORM.
func (Entry) TableName() string {
	return TableName
}

// AttributeMap decodes the stored attribute mapping.
func (e *Entry) AttributeMap() (map[string]any, error) {
	attrs := make(map[string]any)
	if e.Attributes == "" {
		return attrs, nil
	}
	if err := json.Unmarshal([]byte(e.Attributes), &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

// RequiredColumns lists the columns the engine reads or writes.
var RequiredColumns = []string{
	"natural_key", "attributes", "content_hash", "last_synced_at", "removed",
}
