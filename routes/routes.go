package routes

import (
	"library-api/handlers"
	"library-api/middleware"
	"library-api/models"

	"github.com/gin-gonic/gin"
)

// Deps is what the routes need besides the handlers.
type Deps struct {
	Sessions   middleware.SessionResolver
	Profiles   middleware.ProfileLoader
	AnonKey    string
	ServiceKey string
}

func SetupRoutes(r *gin.Engine, h *handlers.Handler, d Deps) {
	authRequired := middleware.AuthRequired(d.Sessions, d.Profiles)

	api := r.Group("/api")
	api.Use(middleware.APIKey(d.AnonKey, d.ServiceKey))

	// ── Public routes ──────────────────────────────────────────────
	public := api.Group("")
	{
		// Auth
		public.POST("/auth/signup", h.SignUp)
		public.POST("/auth/signin", h.SignIn)

		// Catalogue (no auth needed)
		public.GET("/books", h.ListBooks)
		public.GET("/books/:id", h.GetBook)

		// State machine info
		public.GET("/state-machine", h.GetStateMachineInfo)
	}

	// ── Authenticated routes ───────────────────────────────────────
	authed := api.Group("")
	authed.Use(authRequired)
	{
		authed.POST("/auth/signout", h.SignOut)
		authed.GET("/profile", h.GetProfile)
		authed.POST("/books/:id/reserve", h.ReserveBook)
	}

	// ── Reader routes ──────────────────────────────────────────────
	reservations := api.Group("/reservations")
	reservations.Use(authRequired)
	{
		reservations.GET("", h.GetMyReservations)
		reservations.GET("/notifications", h.GetDueNotifications)
		reservations.GET("/upcoming", h.GetUpcomingDue)
		reservations.PUT("/:id/reminder", h.MarkReminderSent)
	}

	// Malformed ids are refused before the session is looked up.
	api.POST("/reservations/extend/:reservationId",
		handlers.ReservationIDRequired("reservationId"), authRequired, h.ExtendReservation)

	// ── Librarian routes ───────────────────────────────────────────
	// The borrowed-books listing checks the role itself so that refusals keep
	// the dashboard's response shape.
	api.GET("/librarian/borrowed-books", middleware.SessionOptional(d.Sessions, d.Profiles), h.GetBorrowedBooks)

	librarian := api.Group("/librarian")
	librarian.Use(authRequired, middleware.RoleRequired(models.RoleLibrarian))
	{
		librarian.PUT("/reservations/:id/status", h.UpdateReservationStatus)
		librarian.POST("/books", h.CreateBook)
	}

	// ── Admin routes ───────────────────────────────────────────────
	admin := api.Group("/admin")
	admin.Use(middleware.ServiceKeyRequired(d.ServiceKey))
	{
		admin.DELETE("/users/:id", h.AdminDeleteUser)
	}
}
