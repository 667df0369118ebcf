package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"library-api/models"
)

// BookFilter narrows ListBooks. Zero values match everything.
type BookFilter struct {
	Search        string
	Category      string
	AvailableOnly bool
}

func (s *Store) ListBooks(ctx context.Context, f BookFilter) ([]models.Book, error) {
	query := s.db.WithContext(ctx).Model(&models.Book{})

	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(author) LIKE ?", like, like)
	}
	if f.Category != "" {
		query = query.Where("category = ?", f.Category)
	}
	if f.AvailableOnly {
		query = query.Where("available_copies > 0")
	}

	books := []models.Book{}
	if err := query.Order("title asc").Find(&books).Error; err != nil {
		return nil, translate(err)
	}
	return books, nil
}

func (s *Store) GetBook(ctx context.Context, id int64) (*models.Book, error) {
	var book models.Book
	if err := s.db.WithContext(ctx).First(&book, "book_id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &book, nil
}

func (s *Store) CreateBook(ctx context.Context, book *models.Book) error {
	return translate(s.db.WithContext(ctx).Create(book).Error)
}

// AdjustAvailableCopies moves available_copies by delta in one conditional
// update. A decrement fails with ErrNoCopiesAvailable instead of going below
// zero; an increment is capped at total_copies.
func (s *Store) AdjustAvailableCopies(ctx context.Context, bookID int64, delta int) error {
	if delta == 0 {
		return nil
	}

	query := s.db.WithContext(ctx).Model(&models.Book{}).Where("book_id = ?", bookID)
	var result *gorm.DB
	if delta < 0 {
		result = query.Where("available_copies >= ?", -delta).
			Update("available_copies", gorm.Expr("available_copies + ?", delta))
	} else {
		result = query.Update("available_copies", gorm.Expr(
			"CASE WHEN available_copies + ? > total_copies THEN total_copies ELSE available_copies + ? END",
			delta, delta,
		))
	}
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := s.GetBook(ctx, bookID); err != nil {
		return err
	}
	if delta < 0 {
		return ErrNoCopiesAvailable
	}
	return nil
}
