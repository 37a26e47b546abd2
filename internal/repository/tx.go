package repository

import (
    "context"
    "database/sql"
)

// Tx is the handle for an in-flight datastore transaction. Every
// state transition in the service layer runs between a Begin and a
// Commit so that inventory-count mutations and record mutations are
// committed together or not at all. Service tests substitute their
// own Tx implementation; the repositories only ever see the value
// produced by Store.Begin.
type Tx interface {
    Commit() error
    Rollback() error
}

// Store wraps the shared database handle and begins transactions for
// the service layer.
type Store struct {
    db *sql.DB
}

// NewStore returns a Store bound to the given database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Begin starts a new transaction.
func (s *Store) Begin(ctx context.Context) (Tx, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    return sqlTx{tx}, nil
}

type sqlTx struct{ *sql.Tx }

// stx unwraps the *sql.Tx created by Store.Begin. Repository Tx
// methods are only ever called with such a value.
func stx(tx Tx) *sql.Tx { return tx.(sqlTx).Tx }
