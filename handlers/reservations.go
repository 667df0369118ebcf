package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/i18n"
	"library-api/middleware"
	"library-api/service"
)

// GetMyReservations returns all reservations of the logged-in user
func (h *Handler) GetMyReservations(c *gin.Context) {
	reservations, err := h.Reservations.ListMyReservations(c.Request.Context(), middleware.GetUserID(c), middleware.Translator(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(reservations),
		"reservations": reservations,
	})
}

const keyReservationID = "reservationID"

// ReservationIDRequired answers 400 {"error": "Invalid reservation ID"} when
// the path parameter param is not a positive integer. Mount it ahead of the
// auth middleware so a malformed id never reaches the store.
func ReservationIDRequired(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := service.ParseReservationID(c.Param(param))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.InvalidReservationIDMessage})
			c.Abort()
			return
		}
		c.Set(keyReservationID, id)
		c.Next()
	}
}

// ExtendReservation moves the due date of a reservation back by a week.
func (h *Handler) ExtendReservation(c *gin.Context) {
	id := c.GetInt64(keyReservationID)
	if id == 0 {
		var err error
		if id, err = service.ParseReservationID(c.Param("reservationId")); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": service.InvalidReservationIDMessage})
			return
		}
	}

	tr := middleware.Translator(c)
	reservation, err := h.Reservations.ExtendReservation(c.Request.Context(), id, tr)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"error":       nil,
		"message":     tr.T(i18n.KeyReservationExtended),
		"reservation": reservation,
	})
}

// GetDueNotifications lists the caller's loans due within the reminder window
func (h *Handler) GetDueNotifications(c *gin.Context) {
	due, err := h.Reservations.GetDueDateNotifications(c.Request.Context(), middleware.GetUserID(c), middleware.Translator(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":         len(due),
		"notifications": due,
	})
}

// GetUpcomingDue lists the caller's loans due within the upcoming window
func (h *Handler) GetUpcomingDue(c *gin.Context) {
	due, err := h.Reservations.ListUpcomingDue(c.Request.Context(), middleware.GetUserID(c), middleware.Translator(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":        len(due),
		"reservations": due,
	})
}

// MarkReminderSent flags a reservation as reminded
func (h *Handler) MarkReminderSent(c *gin.Context) {
	id, err := service.ParseReservationID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": service.InvalidReservationIDMessage})
		return
	}

	tr := middleware.Translator(c)
	if err := h.Reservations.MarkReminderSent(c.Request.Context(), middleware.GetUserID(c), id, tr); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        tr.T(i18n.KeyReminderMarked),
		"reservation_id": id,
	})
}
