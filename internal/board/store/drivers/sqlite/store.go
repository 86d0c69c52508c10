package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/consultboard/internal/board/store"
	"github.com/aussiebroadwan/consultboard/internal/board/store/sqlrepo"
	_ "modernc.org/sqlite"
)

var _ store.Store = (*Store)(nil)

type Store struct {
	*sqlrepo.Store
	dsn string
}

// NewStore opens a sqlite database. The pool is limited to one connection:
// sqlite serialises writers anyway and ":memory:" databases are per
// connection.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Store: sqlrepo.NewStore(db, sqlrepo.SQLite),
		dsn:   dsn,
	}, nil
}
