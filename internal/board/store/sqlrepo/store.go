package sqlrepo

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/consultboard/internal/board/store"
)

// Store is the database/sql half of a driver. Drivers embed it and add
// ApplyMigrations.
type Store struct {
	db *sql.DB
	q  *Queries
	d  Dialect
}

func NewStore(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, q: New(db, d), d: d}
}

// DB exposes the underlying pool to the driver.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.d }

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx, s.d), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Clients() store.Clients         { return s.q }
func (s *Store) Projects() store.Projects       { return s.q }
func (s *Store) Consultants() store.Consultants { return s.q }

type txStore struct {
	tx *sql.Tx
	q  *Queries
}

func newTx(tx *sql.Tx, d Dialect) *txStore {
	return &txStore{tx: tx, q: New(tx, d)}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op: the transaction already holds a live connection.
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) Tx(context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Clients() store.Clients         { return t.q }
func (t *txStore) Projects() store.Projects       { return t.q }
func (t *txStore) Consultants() store.Consultants { return t.q }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
