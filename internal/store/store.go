package store

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound signals that a referenced row does not exist.
var ErrNotFound = errors.New("store: not found")

// Store provides catalog, order, and user persistence over a shared pool.
type Store struct {
	db *sqlx.DB
}

// New wraps an established database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
