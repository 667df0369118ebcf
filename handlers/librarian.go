package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/i18n"
	"library-api/middleware"
	"library-api/models"
	"library-api/service"
)

// GetBorrowedBooks is the librarian dashboard listing. borrowedBooks is null
// when the caller may not see it and an empty list when the listing failed.
func (h *Handler) GetBorrowedBooks(c *gin.Context) {
	rows, err := h.Reservations.GetAllBorrowedBooks(c.Request.Context(), middleware.GetUserID(c), middleware.Translator(c))

	var partial *service.PartialFailure[[]models.BorrowedBook]
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"borrowedBooks": rows, "error": nil})
	case errors.As(err, &partial):
		h.Log.Warn("borrowed books unavailable", zap.Error(partial.Cause))
		c.JSON(http.StatusOK, gin.H{"borrowedBooks": partial.Payload, "error": partial.Message})
	default:
		message := err.Error()
		var svcErr *service.Error
		if errors.As(err, &svcErr) {
			message = svcErr.Message
		}
		c.JSON(statusFor(err), gin.H{"borrowedBooks": nil, "error": message})
	}
}

type UpdateReservationStatusRequest struct {
	Status models.ReservationStatus `json:"status" binding:"required"`
}

// UpdateReservationStatus handles the librarian's state transitions
func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	id, err := service.ParseReservationID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.InvalidReservationIDMessage})
		return
	}

	var req UpdateReservationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr := middleware.Translator(c)
	reservation, err := h.Reservations.UpdateReservationStatus(c.Request.Context(), middleware.GetUserID(c), id, req.Status, tr)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        tr.T(i18n.KeyReservationStatusUpdated),
		"reservation_id": reservation.ID,
		"current_status": reservation.Status,
		"reservation":    reservation,
	})
}

// CreateBook adds a book to the catalogue
func (h *Handler) CreateBook(c *gin.Context) {
	var req service.NewBook
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr := middleware.Translator(c)
	book, err := h.Books.CreateBook(c.Request.Context(), middleware.GetUserID(c), req, tr)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": tr.T(i18n.KeyBookCreated),
		"book":    book,
	})
}
