package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"library-api/i18n"
	"library-api/models"
	"library-api/store"
)

// Books is the public catalogue plus librarian-only additions.
type Books struct {
	store Store
	log   *zap.Logger
}

func NewBooks(s Store, log *zap.Logger) *Books {
	if log == nil {
		log = zap.NewNop()
	}
	return &Books{store: s, log: log.Named("books")}
}

func (b *Books) ListBooks(ctx context.Context, f store.BookFilter, tr *i18n.Translator) ([]models.Book, error) {
	books, err := b.store.ListBooks(ctx, f)
	if err != nil {
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	return books, nil
}

func (b *Books) GetBook(ctx context.Context, id int64, tr *i18n.Translator) (*models.Book, error) {
	if id <= 0 {
		return nil, fail(KindNotFound, tr, i18n.KeyBookNotFound, nil)
	}
	book, err := b.store.GetBook(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fail(KindNotFound, tr, i18n.KeyBookNotFound, err)
		}
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	return book, nil
}

// NewBook is the librarian's input for CreateBook. A nil AvailableCopies
// means every copy is on the shelf.
type NewBook struct {
	Title           string `json:"title" binding:"required"`
	Author          string `json:"author" binding:"required"`
	Category        string `json:"category"`
	Image           string `json:"image"`
	TotalCopies     int    `json:"total_copies" binding:"required,min=1"`
	AvailableCopies *int   `json:"available_copies" binding:"omitempty,min=0"`
}

func (b *Books) CreateBook(ctx context.Context, viewer string, in NewBook, tr *i18n.Translator) (*models.Book, error) {
	if _, err := requireLibrarian(ctx, b.store, viewer, tr); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" || in.TotalCopies < 1 {
		return nil, fail(KindInvalidArgument, tr, i18n.KeyInvalidField, nil)
	}

	available := in.TotalCopies
	if in.AvailableCopies != nil {
		available = max(0, min(*in.AvailableCopies, in.TotalCopies))
	}
	book := &models.Book{
		Title:           strings.TrimSpace(in.Title),
		Author:          strings.TrimSpace(in.Author),
		Category:        strings.TrimSpace(in.Category),
		Image:           in.Image,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: available,
	}
	if err := b.store.CreateBook(ctx, book); err != nil {
		return nil, fail(KindStore, tr, i18n.KeyStoreError, err)
	}
	b.log.Info("book created", zap.Int64("book_id", book.ID), zap.String("title", book.Title), zap.String("librarian", viewer))
	return book, nil
}
