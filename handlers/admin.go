package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/i18n"
	"library-api/middleware"
)

// AdminDeleteUser removes a user's identity and profile. Service key only.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	tr := middleware.Translator(c)
	userID := c.Param("id")
	if err := h.Accounts.DeleteUser(c.Request.Context(), userID, tr); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": tr.T(i18n.KeyUserDeleted),
		"user_id": userID,
	})
}
