// Package pg persists the access core in PostgreSQL. It is selected when
// MODACCESS_PG_DSN is set; the in-memory store remains the default.
package pg

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"modaccess.io/internal/access"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"
)

// Store implements access.Store on top of database/sql with the pgx stdlib
// driver.
type Store struct {
	db *sql.DB
}

var _ access.Store = (*Store)(nil)

// New wraps an open database handle.
func New(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("pg: database handle is required")
	}
	return &Store{db: db}, nil
}

func (s *Store) Roles() access.RoleStore             { return &roleStore{db: s.db} }
func (s *Store) Assignments() access.AssignmentStore { return &assignmentStore{db: s.db} }
func (s *Store) History() access.HistoryStore        { return &historyStore{db: s.db} }

func maybePgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error) bool {
	pgErr, ok := maybePgError(err)
	return ok && pgErr.Code == pgErrUniqueViolation
}
