package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"library-api/auth"
	"library-api/i18n"
	"library-api/models"
)

const (
	keyUserID   = "userID"
	keyRole     = "role"
	keyLanguage = "language"
	keyToken    = "token"
)

// SessionResolver maps a bearer token to a user id.
type SessionResolver interface {
	CurrentUser(ctx context.Context, token string) (string, error)
}

// ProfileLoader loads the mirrored profile of a user.
type ProfileLoader interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// authenticate puts the caller's id, role and language into the context. A
// missing profile leaves role and language unset.
func authenticate(c *gin.Context, sessions SessionResolver, profiles ProfileLoader) error {
	token := bearerToken(c)
	if token == "" {
		return auth.ErrNoSession
	}
	userID, err := sessions.CurrentUser(c.Request.Context(), token)
	if err != nil {
		return err
	}
	c.Set(keyToken, token)
	c.Set(keyUserID, userID)

	profile, err := profiles.GetProfile(c.Request.Context(), userID)
	if err == nil {
		c.Set(keyRole, string(profile.Role))
		c.Set(keyLanguage, profile.Language)
		resetTranslator(c)
	}
	return nil
}

// AuthRequired rejects requests without a live session.
func AuthRequired(sessions SessionResolver, profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, sessions, profiles); err != nil {
			status := http.StatusUnauthorized
			if !errors.Is(err, auth.ErrNoSession) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": Translator(c).T(i18n.KeyNotAuthenticated)})
			c.Abort()
			return
		}
		c.Next()
	}
}

// SessionOptional resolves the session when there is one and lets the
// request through either way.
func SessionOptional(sessions SessionResolver, profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = authenticate(c, sessions, profiles)
		c.Next()
	}
}

// RoleRequired enforces that caller has one of the allowed roles
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		callerRole := GetRole(c)
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": Translator(c).T(i18n.KeyNotAuthorized)})
		c.Abort()
	}
}

// GetUserID extracts caller user ID from context. It is empty for anonymous
// callers.
func GetUserID(c *gin.Context) string {
	return c.GetString(keyUserID)
}

// GetRole extracts caller role from context
func GetRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(keyRole))
}

// GetToken returns the bearer token of the current session.
func GetToken(c *gin.Context) string {
	if token := c.GetString(keyToken); token != "" {
		return token
	}
	return bearerToken(c)
}
