package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dance-class-api/pkg/config"
	"github.com/noah-isme/dance-class-api/pkg/database"
)

func newSQLStoreMock(t *testing.T) (*SQLStore, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return NewSQLStore(sqlxDB), mock, func() {
		sqlxDB.Close()
	}
}

func TestSQLStoreGet(t *testing.T) {
	store, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM app_kv WHERE key = $1")).
		WithArgs("dance-app:user-preferences:u1").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`{"user_id":"u1"}`))

	value, err := store.Get(context.Background(), "dance-app:user-preferences:u1")
	require.NoError(t, err)
	assert.Equal(t, `{"user_id":"u1"}`, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGetMissing(t *testing.T) {
	store, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT value FROM app_kv")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), "missing")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSQLStoreSet(t *testing.T) {
	store, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO app_kv").
		WithArgs("dance-app:settings:s1", `{"preferred_view":"list"}`, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Set(context.Background(), "dance-app:settings:s1", `{"preferred_view":"list"}`))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreDelete(t *testing.T) {
	store, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM app_kv WHERE key IN ($1, $2)")).
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, store.Delete(context.Background(), "a", "b"))
	require.NoError(t, store.Delete(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreKeys(t *testing.T) {
	store, mock, cleanup := newSQLStoreMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT key FROM app_kv WHERE key LIKE $1")).
		WithArgs(`dance-app:export\_job:%`).
		WillReturnRows(sqlmock.NewRows([]string{"key"}).AddRow("dance-app:export_job:1").AddRow("dance-app:export_job:2"))

	keys, err := store.Keys(context.Background(), "dance-app:export_job:")
	require.NoError(t, err)
	assert.Equal(t, []string{"dance-app:export_job:1", "dance-app:export_job:2"}, keys)
}

func TestSQLStoreOnSQLite(t *testing.T) {
	db, err := database.NewSQLite(config.SQLiteConfig{})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.Migrate(context.Background(), db, SQLiteKVSchema))

	store := NewSQLStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "dance-app:favorites:u1", `["c1"]`))
	require.NoError(t, store.Set(ctx, "dance-app:favorites:u1", `["c1","c2"]`))
	require.NoError(t, store.Set(ctx, "dance-app:favorites:u2", `[]`))
	require.NoError(t, store.Set(ctx, "dance-app:settings:u1", `{}`))

	value, err := store.Get(ctx, "dance-app:favorites:u1")
	require.NoError(t, err)
	assert.Equal(t, `["c1","c2"]`, value)

	keys, err := store.Keys(ctx, "dance-app:favorites:")
	require.NoError(t, err)
	assert.Equal(t, []string{"dance-app:favorites:u1", "dance-app:favorites:u2"}, keys)

	require.NoError(t, store.Delete(ctx, "dance-app:favorites:u1", "dance-app:settings:u1"))
	_, err = store.Get(ctx, "dance-app:favorites:u1")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}
