package service

import (
	"context"
	"time"

	"library-api/auth"
	"library-api/models"
	"library-api/store"
)

// Store is the relational store as the workflow uses it. *store.Store
// implements it.
type Store interface {
	ListBooks(ctx context.Context, f store.BookFilter) ([]models.Book, error)
	GetBook(ctx context.Context, id int64) (*models.Book, error)
	CreateBook(ctx context.Context, book *models.Book) error
	AdjustAvailableCopies(ctx context.Context, bookID int64, delta int) error

	CreateUser(ctx context.Context, user *models.User) error
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	DeleteUser(ctx context.Context, userID string) error

	CreateReservation(ctx context.Context, r *models.Reservation) error
	GetReservationWithBook(ctx context.Context, id int64) (*models.Reservation, error)
	UpdateReservation(ctx context.Context, id int64, fields map[string]any) error
	ListReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	ListDueReservations(ctx context.Context, userID string, from, to time.Time) ([]models.Reservation, error)
	GetAllBorrowedBooks(ctx context.Context) ([]models.BorrowedBook, error)
}

// Identity is the identity provider. *auth.Provider implements it.
type Identity interface {
	SignUp(ctx context.Context, email, password string) (string, error)
	SignIn(ctx context.Context, email, password string) (*auth.Session, error)
	SignOut(ctx context.Context, token string) error
	DeleteUser(ctx context.Context, userID string) error
}

var (
	_ Store    = (*store.Store)(nil)
	_ Identity = (*auth.Provider)(nil)
)
