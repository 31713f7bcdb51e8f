package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo describes one column of an existing table.
type ColumnInfo struct {
	Field    string
	Type     string
	Nullable bool
	Primary  bool
}

// GetTableColumns retrieves the column definitions for a given table.
// Field and Type are lowercased so callers can compare them across dialects.
// A missing table is reported as an error.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if !db.Migrator().HasTable(tableName) {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}

	types, err := db.Migrator().ColumnTypes(tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	columns := make([]ColumnInfo, 0, len(types))
	for _, ct := range types {
		info := ColumnInfo{
			Field: strings.ToLower(ct.Name()),
			Type:  strings.ToLower(ct.DatabaseTypeName()),
		}
		if nullable, ok := ct.Nullable(); ok {
			info.Nullable = nullable
		}
		if pk, ok := ct.PrimaryKey(); ok {
			info.Primary = pk
		}
		columns = append(columns, info)
	}
	return columns, nil
}
