package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"library-api/i18n"
	"library-api/middleware"
	"library-api/models"
	"library-api/statemachine"
	"library-api/store"
)

// ListBooks returns the catalogue (public). search matches title or author,
// category is exact and available=true hides books with no copies left.
func (h *Handler) ListBooks(c *gin.Context) {
	filter := store.BookFilter{
		Search:        c.Query("search"),
		Category:      c.Query("category"),
		AvailableOnly: c.Query("available") == "true",
	}
	books, err := h.Books.ListBooks(c.Request.Context(), filter, middleware.Translator(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count": len(books),
		"books": books,
	})
}

// GetBook returns a single book
func (h *Handler) GetBook(c *gin.Context) {
	tr := middleware.Translator(c)
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": tr.T(i18n.KeyBookNotFound)})
		return
	}
	book, err := h.Books.GetBook(c.Request.Context(), id, tr)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"book": book})
}

type ReserveBookRequest struct {
	DueDate string `json:"due_date" binding:"required"`
}

// ReserveBook reserves a book for the signed-in user
func (h *Handler) ReserveBook(c *gin.Context) {
	tr := middleware.Translator(c)
	bookID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": tr.T(i18n.KeyBookNotFound)})
		return
	}

	var req ReserveBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.Reservations.ReserveBook(c.Request.Context(), middleware.GetUserID(c), bookID, req.DueDate, tr)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     tr.T(i18n.KeyReservationCreated),
		"reservation": reservation,
	})
}

// GetStateMachineInfo returns the reservation lifecycle for informational
// purposes, along with the policies this instance enforces.
func (h *Handler) GetStateMachineInfo(c *gin.Context) {
	var terminal []models.ReservationStatus
	for _, s := range []models.ReservationStatus{
		models.StatusActive, models.StatusExtended, models.StatusOverdue,
		models.StatusReturned, models.StatusCancelled,
	} {
		if statemachine.IsTerminal(s) {
			terminal = append(terminal, s)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"state_machine":   statemachine.GetAllTransitions(),
		"terminal_states": terminal,
		"policies":        h.Reservations.Policies(),
		"description":     "Library Reservation Lifecycle State Machine",
	})
}
