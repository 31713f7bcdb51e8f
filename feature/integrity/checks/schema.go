package checks

import (
	"fmt"
	"reflect"
	"strings"

	"inventory-sync/core/database"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema verifies the database schema using GORM models as the source of truth.
// Only fields with an explicit column tag are checked, and types only when the tag names one.
func CheckSchema(db *gorm.DB, models ...any) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
		Matched: true,
	}

	for _, model := range models {
		typ := reflect.TypeOf(model)
		if typ.Kind() != reflect.Struct {
			return nil, fmt.Errorf("model %T is not a struct", model)
		}

		tabler, ok := reflect.New(typ).Interface().(interface{ TableName() string })
		if !ok {
			return nil, fmt.Errorf("model %T does not implement TableName", model)
		}
		tableName := tabler.TableName()

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}

		actualMap := make(map[string]database.ColumnInfo, len(actualCols))
		for _, col := range actualCols {
			actualMap[col.Field] = col
		}

		report.Tables[tableName] = checkTable(typ, actualMap)
		if report.Tables[tableName].Status != "ok" {
			report.Matched = false
		}
	}

	return report, nil
}

func checkTable(typ reflect.Type, actual map[string]database.ColumnInfo) TableReport {
	tbl := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	for i := 0; i < typ.NumField(); i++ {
		gormTag := typ.Field(i).Tag.Get("gorm")

		colName := parseGormSetting(gormTag, "column")
		if colName == "" {
			continue
		}

		col, exists := actual[colName]
		if !exists {
			tbl.MissingColumns = append(tbl.MissingColumns, colName)
			tbl.Status = "error"
			continue
		}

		// Soft check: "text" matches "mediumtext", "varchar" matches "varchar(191)"
		expType := strings.ToLower(parseGormSetting(gormTag, "type"))
		if expType != "" && !strings.Contains(col.Type, expType) {
			tbl.TypeMismatches = append(tbl.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", colName, expType, col.Type))
			tbl.Status = "error"
		}
	}

	return tbl
}

// parseGormSetting returns the value of key in a gorm struct tag.
func parseGormSetting(tag, key string) string {
	for _, p := range strings.Split(tag, ";") {
		if value, ok := strings.CutPrefix(p, key+":"); ok {
			return value
		}
	}
	return ""
}
