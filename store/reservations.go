package store

import (
	"context"
	"time"

	"library-api/models"
)

func (s *Store) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return translate(s.db.WithContext(ctx).Omit("Book").Create(r).Error)
}

// GetReservationWithBook loads a reservation joined with its book.
func (s *Store) GetReservationWithBook(ctx context.Context, id int64) (*models.Reservation, error) {
	var r models.Reservation
	if err := s.db.WithContext(ctx).Preload("Book").First(&r, "reservation_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

// UpdateReservation writes fields to one reservation row.
func (s *Store) UpdateReservation(ctx context.Context, id int64, fields map[string]any) error {
	result := s.db.WithContext(ctx).Model(&models.Reservation{}).
		Where("reservation_id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListReservationsByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := s.db.WithContext(ctx).Preload("Book").
		Where("user_id = ?", userID).
		Order("reservation_date desc").
		Find(&reservations).Error
	if err != nil {
		return nil, translate(err)
	}
	return reservations, nil
}

// ListDueReservations returns the active, not yet reminded reservations of
// userID whose due date falls in [from, to].
func (s *Store) ListDueReservations(ctx context.Context, userID string, from, to time.Time) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := s.db.WithContext(ctx).Preload("Book").
		Where("user_id = ? AND status = ? AND reminder_sent = ?", userID, models.StatusActive, false).
		Where("due_date >= ? AND due_date <= ?", from, to).
		Order("due_date asc").
		Find(&reservations).Error
	if err != nil {
		return nil, translate(err)
	}
	return reservations, nil
}
