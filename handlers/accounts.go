package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"library-api/i18n"
	"library-api/middleware"
	"library-api/validation"
)

type SignUpRequest struct {
	validation.RegisterInput
	Language string `json:"language"`
}

// SignUp creates an identity and its customer profile
func (h *Handler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr := middleware.Translator(c)
	res, err := h.Accounts.SignUp(c.Request.Context(), req.RegisterInput, req.Language, tr)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": tr.T(i18n.KeySignupSuccess),
		"session": res.Session,
		"user":    res.User,
	})
}

// SignIn authenticates a user and returns a session
func (h *Handler) SignIn(c *gin.Context) {
	var req validation.SigninInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tr := middleware.Translator(c)
	session, err := h.Accounts.SignIn(c.Request.Context(), req, tr)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": tr.T(i18n.KeySigninSuccess),
		"session": session,
	})
}

// SignOut revokes the caller's session
func (h *Handler) SignOut(c *gin.Context) {
	tr := middleware.Translator(c)
	if err := h.Accounts.SignOut(c.Request.Context(), middleware.GetToken(c), tr); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": tr.T(i18n.KeySignoutSuccess)})
}

// GetProfile returns the authenticated user's profile
func (h *Handler) GetProfile(c *gin.Context) {
	user, err := h.Accounts.Profile(c.Request.Context(), middleware.GetUserID(c), middleware.Translator(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
