package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-storefront/internal/handler"
)

// RegisterBooking registers the visitor-scoped endpoints under /v1.  All
// routes run behind the session cookie middleware.  limit guards the
// routes that write bookings or probe booking codes.
func RegisterBooking(e *echo.Echo, w *handler.WidgetHandler, b *handler.BookingHandler, sessions, limit echo.MiddlewareFunc) {
	g := e.Group("/v1", sessions)

	// booking widget on the home page
	g.GET("/widget", w.Get)
	g.POST("/widget/confirm", w.Confirm)
	g.PUT("/widget/:slot", w.Select)

	// seat selection for one showtime
	g.GET("/booking/:showtimeId", b.Page)
	g.POST("/booking/:showtimeId/seats/:seat", b.ToggleSeat)
	g.DELETE("/booking/:showtimeId/seats", b.ClearSeats)
	g.POST("/booking/:showtimeId/submit", b.Submit, limit)

	// confirmation, cancel and lookup
	g.GET("/booking-confirmation/:bookingId", b.Confirmation)
	g.POST("/booking-confirmation/:bookingId/cancel", b.Cancel, limit)
	g.GET("/lookup", b.Lookup, limit)
}
