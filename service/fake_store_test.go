package service_test

import (
	"context"
	"errors"
	"time"

	"library-api/models"
	"library-api/service"
	"library-api/store"
)

// fakeStore serves profiles from memory and fails every other call. It
// counts aggregation calls so tests can assert the aggregation never ran.
type fakeStore struct {
	service.Store

	profiles         map[string]*models.User
	borrowed         []models.BorrowedBook
	borrowedErr      error
	borrowedCalls    int
	reservationCalls int
}

func newFakeStore(users ...*models.User) *fakeStore {
	f := &fakeStore{profiles: map[string]*models.User{}}
	for _, u := range users {
		f.profiles[u.ID] = u
	}
	return f
}

func (f *fakeStore) GetProfile(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetAllBorrowedBooks(context.Context) ([]models.BorrowedBook, error) {
	f.borrowedCalls++
	if f.borrowedErr != nil {
		return nil, f.borrowedErr
	}
	return f.borrowed, nil
}

func (f *fakeStore) ListDueReservations(context.Context, string, time.Time, time.Time) ([]models.Reservation, error) {
	return nil, errors.New("connection refused")
}

func (f *fakeStore) GetReservationWithBook(context.Context, int64) (*models.Reservation, error) {
	f.reservationCalls++
	return nil, store.ErrNotFound
}

func (f *fakeStore) UpdateReservation(context.Context, int64, map[string]any) error {
	f.reservationCalls++
	return store.ErrNotFound
}
