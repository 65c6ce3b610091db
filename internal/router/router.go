package router // route registration for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/lodgio/room-booking/internal/handler"
	"github.com/lodgio/room-booking/internal/middleware"
	"github.com/lodgio/room-booking/internal/model"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently this is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes. Unauthenticated
// operations live under /v1/auth; the identity endpoint and the
// administrative user-delete endpoint require a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)

	admin := e.Group("/v1/auth/users")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.DELETE("/:id", a.DeleteUser)
}

// RegisterRooms registers the room catalog. The listing is public and
// sits behind the response cache; create/update/delete require the
// administrator role. Each path is bound to exactly one handler.
func RegisterRooms(e *echo.Echo, h *handler.RoomHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/v1/rooms", h.ListRooms, cache)

	admin := e.Group("/v1/rooms")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("", h.CreateRoom)
	admin.PUT("/:id", h.UpdateRoom)
	admin.DELETE("/:id", h.DeleteRoom)
}

// RegisterBookings registers booking routes. All of them require an
// authenticated actor; ownership and role branching happen inside the
// handlers.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleCustomer, model.RoleAdmin))
	g.POST("", h.CreateBooking)
	g.GET("", h.ListBookings)
	g.PUT("/cancel/:id", h.CancelBooking)
	g.DELETE("/:id", h.DeleteBooking)
}
