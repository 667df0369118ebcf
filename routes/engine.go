package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"library-api/handlers"
	"library-api/i18n"
	"library-api/middleware"
)

// NewEngine builds the gin engine with the global middleware, the health
// endpoints and every API route.
func NewEngine(cat *i18n.Catalog, log *zap.Logger, h *handlers.Handler, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(), middleware.Locale(cat))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Library Management API",
			"version": "1.0.0",
		})
	})

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Library Management API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "librarian"},
			"locales": cat.Locales(),
		})
	})

	SetupRoutes(r, h, d)
	return r
}
