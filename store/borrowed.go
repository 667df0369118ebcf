package store

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"library-api/models"
)

const (
	tableReservations = "reservations"
	tableBooks        = "books"
	tableUsers        = "users"
)

// borrowedStatuses are the statuses of a loan that is still out.
var borrowedStatuses = []any{
	string(models.StatusActive),
	string(models.StatusExtended),
	string(models.StatusOverdue),
}

// GetAllBorrowedBooks is the get_all_borrowed_books procedure: every loan
// without a return date, joined with its reader and book, soonest due first.
func (s *Store) GetAllBorrowedBooks(ctx context.Context) ([]models.BorrowedBook, error) {
	query, args, err := s.borrowedBooksQuery().ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build borrowed books query: %w", err)
	}

	rows := []models.BorrowedBook{}
	if err := s.x.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get_all_borrowed_books: %w", err)
	}
	return rows, nil
}

func (s *Store) borrowedBooksQuery() *goqu.SelectDataset {
	return goqu.Dialect(s.dialect).
		From(goqu.T(tableReservations).As("r")).
		Join(goqu.T(tableBooks).As("b"), goqu.On(goqu.I("b.book_id").Eq(goqu.I("r.book_id")))).
		LeftJoin(goqu.T(tableUsers).As("u"), goqu.On(goqu.I("u.user_id").Eq(goqu.I("r.user_id")))).
		Select(
			goqu.I("r.reservation_id").As("reservation_id"),
			goqu.I("r.user_id").As("user_id"),
			goqu.COALESCE(goqu.I("u.first_name"), "").As("first_name"),
			goqu.COALESCE(goqu.I("u.last_name"), "").As("last_name"),
			goqu.COALESCE(goqu.I("u.email"), "").As("email"),
			goqu.I("b.book_id").As("book_id"),
			goqu.I("b.title").As("title"),
			goqu.I("b.author").As("author"),
			goqu.I("r.reservation_date").As("reservation_date"),
			goqu.I("r.due_date").As("due_date"),
			goqu.I("r.status").As("status"),
			goqu.I("r.extended").As("extended"),
		).
		Where(
			goqu.I("r.status").In(borrowedStatuses...),
			goqu.I("r.return_date").IsNull(),
		).
		Order(goqu.I("r.due_date").Asc(), goqu.I("r.reservation_id").Asc()).
		Prepared(true)
}
