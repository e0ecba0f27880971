package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-class-api/pkg/config"
)

func TestNewSQLiteInMemory(t *testing.T) {
	db, err := NewSQLite(config.SQLiteConfig{})
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(context.Background(), db, "CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY)"))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM t"))
	assert.Equal(t, 0, count)
}
