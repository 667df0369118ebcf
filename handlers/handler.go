package handlers

import (
	"go.uber.org/zap"

	"library-api/service"
)

// Handler carries the workflows behind the HTTP routes.
type Handler struct {
	Accounts     *service.Accounts
	Books        *service.Books
	Reservations *service.Reservations
	Log          *zap.Logger
}

func New(accounts *service.Accounts, books *service.Books, reservations *service.Reservations, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Accounts:     accounts,
		Books:        books,
		Reservations: reservations,
		Log:          log.Named("http"),
	}
}
