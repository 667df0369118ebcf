// Package store is the relational store boundary: typed reads and writes over
// the users, books and reservations tables, plus the borrowed-books
// aggregation the librarian dashboard runs.
package store

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrNoCopiesAvailable = errors.New("no copies available")
)

type Store struct {
	db *gorm.DB
	x  *sqlx.DB
	// goqu dialect name, see queryDialect
	dialect string
}

// New wraps db. The same connection pool serves gorm and the sqlx-backed
// aggregation queries.
func New(db *gorm.DB) (*Store, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	dialect := queryDialect(db.Dialector.Name())
	return &Store{
		db:      db,
		x:       sqlx.NewDb(sqlDB, dialect),
		dialect: dialect,
	}, nil
}

// DB exposes the underlying gorm handle for the identity provider, which
// shares the store's connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func queryDialect(gormName string) string {
	if gormName == "sqlite" {
		return "sqlite3"
	}
	return gormName
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}
