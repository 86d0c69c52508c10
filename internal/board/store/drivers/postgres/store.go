package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aussiebroadwan/consultboard/internal/board/store"
	"github.com/aussiebroadwan/consultboard/internal/board/store/sqlrepo"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ store.Store = (*Store)(nil)

const defaultDriver = "pgx"

type Store struct {
	*sqlrepo.Store
}

// NewStore opens a postgres pool through pgx and checks it is reachable.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open(defaultDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Store{Store: sqlrepo.NewStore(db, sqlrepo.Postgres)}, nil
}
