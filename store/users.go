package store

import (
	"context"

	"library-api/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "user_id = ?", userID).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// DeleteUser removes the profile row. Reservations of the user are left in
// place.
func (s *Store) DeleteUser(ctx context.Context, userID string) error {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.User{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
