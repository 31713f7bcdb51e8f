package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT, price REAL)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "test_items")
	require.NoError(t, err)
	assert.Len(t, columns, 3)

	colMap := make(map[string]string)
	for _, col := range columns {
		colMap[col.Field] = col.Type
	}

	assert.Equal(t, "integer", colMap["id"])
	assert.Equal(t, "text", colMap["name"])
	assert.Equal(t, "real", colMap["price"])

	t.Run("Missing Table", func(t *testing.T) {
		cols, err := GetTableColumns(db, "non_existent")
		assert.Error(t, err)
		assert.Empty(t, cols)
	})
}
