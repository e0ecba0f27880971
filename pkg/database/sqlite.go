package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/noah-isme/dance-class-api/pkg/config"
)

// SQLiteDriver is the database/sql name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

func init() {
	sqlx.BindDriver(SQLiteDriver, sqlx.QUESTION)
}

// NewSQLite opens a single-connection SQLite database at cfg.Path.
func NewSQLite(cfg config.SQLiteConfig) (*sqlx.DB, error) {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	db, err := sqlx.Open(SQLiteDriver, path)
	if err != nil {
		return nil, err
	}
	// SQLite serialises writers; one connection also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if cfg.BusyTimeout > 0 {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}
